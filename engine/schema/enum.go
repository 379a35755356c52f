package schema

import "slices"

// Choice is one code/label pair of an enumeration.
type Choice struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Enum is a closed set of allowed codes. Codes are compared against the
// display encoding of a field's scalar, so integer schemes use "8", not 8.
type Enum struct {
	Name    string   `json:"name"`
	Choices []Choice `json:"choices"`
}

func newEnum(name string, choices ...Choice) *Enum {
	return &Enum{Name: name, Choices: choices}
}

// Label returns the human label of code.
func (e *Enum) Label(code string) (string, bool) {
	for _, c := range e.Choices {
		if c.Code == code {
			return c.Label, true
		}
	}
	return "", false
}

// Contains reports whether code is a member of the enumeration.
func (e *Enum) Contains(code string) bool {
	_, ok := e.Label(code)
	return ok
}

// Codes returns the member codes in declaration order.
func (e *Enum) Codes() []string {
	codes := make([]string, len(e.Choices))
	for i, c := range e.Choices {
		codes[i] = c.Code
	}
	return codes
}

// Describe renders code with its label, falling back to the bare code.
func (e *Enum) Describe(code string) string {
	if label, ok := e.Label(code); ok {
		return label
	}
	return code
}

var (
	DataSources = newEnum("data_source",
		Choice{"GFS", "NCEP Global Forecast System"},
		Choice{"ERA5", "ECMWF ERA5 Reanalysis"},
		Choice{"FNL", "NCEP Final Analysis"},
		Choice{"NARR", "North American Regional Reanalysis"},
	)
	IOForms = newEnum("io_form",
		Choice{"1", "Binary"},
		Choice{"2", "NetCDF"},
		Choice{"11", "Parallel NetCDF"},
		Choice{"102", "Split NetCDF (one file per process)"},
	)
	Projections = newEnum("map_proj",
		Choice{"lambert", "Lambert Conformal"},
		Choice{"polar", "Polar Stereographic"},
		Choice{"mercator", "Mercator"},
		Choice{"lat-lon", "Lat-Lon (including global)"},
	)
	Microphysics = newEnum("mp_physics",
		Choice{"0", "No microphysics"},
		Choice{"1", "Kessler scheme"},
		Choice{"2", "Lin et al. scheme"},
		Choice{"3", "WSM3 scheme"},
		Choice{"4", "WSM5 scheme"},
		Choice{"6", "WSM6 scheme"},
		Choice{"8", "Thompson scheme"},
		Choice{"10", "Morrison 2-moment scheme"},
	)
	LongwaveRadiation = newEnum("ra_lw_physics",
		Choice{"0", "No longwave radiation"},
		Choice{"1", "RRTM scheme"},
		Choice{"3", "CAM scheme"},
		Choice{"4", "RRTMG scheme"},
	)
	ShortwaveRadiation = newEnum("ra_sw_physics",
		Choice{"0", "No shortwave radiation"},
		Choice{"1", "Dudhia scheme"},
		Choice{"2", "Goddard shortwave"},
		Choice{"3", "CAM scheme"},
		Choice{"4", "RRTMG scheme"},
	)
	SurfaceLayer = newEnum("sf_sfclay_physics",
		Choice{"0", "No surface layer"},
		Choice{"1", "Revised MM5 Monin-Obukhov scheme"},
		Choice{"2", "Monin-Obukhov (Janjic Eta) scheme"},
		Choice{"5", "MYNN surface layer"},
	)
	LandSurface = newEnum("sf_surface_physics",
		Choice{"0", "No land surface model"},
		Choice{"1", "Thermal diffusion scheme"},
		Choice{"2", "Noah Land Surface Model"},
		Choice{"3", "RUC Land Surface Model"},
		Choice{"4", "Noah-MP Land Surface Model"},
	)
	BoundaryLayer = newEnum("bl_pbl_physics",
		Choice{"0", "No boundary layer"},
		Choice{"1", "YSU scheme"},
		Choice{"2", "Mellor-Yamada-Janjic scheme"},
		Choice{"4", "QNSE scheme"},
		Choice{"5", "MYNN2 scheme"},
		Choice{"6", "MYNN3 scheme"},
	)
	Cumulus = newEnum("cu_physics",
		Choice{"0", "No cumulus"},
		Choice{"1", "Kain-Fritsch scheme"},
		Choice{"2", "Betts-Miller-Janjic scheme"},
		Choice{"3", "Grell-Freitas scheme"},
		Choice{"5", "Grell-3D scheme"},
	)
	SoilLayers = newEnum("num_soil_layers",
		Choice{"4", "4 layers (Noah)"},
		Choice{"5", "5 layers (thermal diffusion)"},
		Choice{"6", "6 layers (RUC)"},
		Choice{"9", "9 layers (RUC)"},
	)
	SurfaceInputSource = newEnum("surface_input_source",
		Choice{"1", "WPS/geogrid with metgrid fallback"},
		Choice{"2", "GRIB data from another model"},
		Choice{"3", "Use dominant land and soil categories from metgrid"},
	)
	Switch = newEnum("switch",
		Choice{"0", "Off"},
		Choice{"1", "On"},
	)
	DiffusionOptions = newEnum("diff_opt",
		Choice{"0", "No turbulence or mixing"},
		Choice{"1", "Evaluate second-order diffusion term on coordinate surfaces"},
		Choice{"2", "Evaluate second-order diffusion term on model levels"},
	)
	EddyCoefficients = newEnum("km_opt",
		Choice{"1", "Constant coefficient"},
		Choice{"2", "1.5-order TKE closure"},
		Choice{"3", "Smagorinsky first-order closure"},
		Choice{"4", "Horizontal Smagorinsky first-order closure"},
	)
	DampingOptions = newEnum("damp_opt",
		Choice{"0", "No upper-level damping"},
		Choice{"1", "Diffusive damping"},
		Choice{"2", "Rayleigh damping"},
		Choice{"3", "Implicit gravity-wave damping"},
	)
	RungeKuttaOrders = newEnum("rk_ord",
		Choice{"2", "Runge-Kutta 2nd order"},
		Choice{"3", "Runge-Kutta 3rd order"},
	)
)

// Enumerations returns every enumeration the schema references, keyed by name.
func Enumerations() map[string]*Enum {
	all := []*Enum{
		DataSources, IOForms, Projections, Microphysics, LongwaveRadiation,
		ShortwaveRadiation, SurfaceLayer, LandSurface, BoundaryLayer, Cumulus,
		SoilLayers, SurfaceInputSource, Switch, DiffusionOptions, EddyCoefficients,
		DampingOptions, RungeKuttaOrders,
	}
	out := make(map[string]*Enum, len(all))
	for _, e := range all {
		out[e.Name] = e
	}
	return out
}

// EnumerationNames returns the sorted names of Enumerations.
func EnumerationNames() []string {
	names := make([]string, 0)
	for name := range Enumerations() {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
