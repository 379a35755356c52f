package schema

import "github.com/compozy/wrfconf/engine/field"

// projections whose map factors depend on the true latitudes.
var trueLatProjections = []string{"lambert", "polar", "mercator"}

func intSeq(v ...int64) field.Value {
	s := make([]field.Scalar, len(v))
	for i, x := range v {
		s[i] = field.Int(x)
	}
	return field.Seq(s...)
}

func floatSeq(v ...float64) field.Value {
	s := make([]field.Scalar, len(v))
	for i, x := range v {
		s[i] = field.Float(x)
	}
	return field.Seq(s...)
}

func boolSeq(v ...bool) field.Value {
	s := make([]field.Scalar, len(v))
	for i, x := range v {
		s[i] = field.Bool(x)
	}
	return field.Seq(s...)
}

func intOf(v int64) field.Value     { return field.Of(field.Int(v)) }
func floatOf(v float64) field.Value { return field.Of(field.Float(v)) }
func boolOf(v bool) field.Value     { return field.Of(field.Bool(v)) }
func strOf(v string) field.Value    { return field.Of(field.String(v)) }

func builtinSections() []*Section {
	return []*Section{
		timeControlSection(),
		domainSetupSection(),
		physicsSection(),
		dynamicsSection(),
		boundaryControlSection(),
		quiltControlSection(),
	}
}

func timeControlSection() *Section {
	return &Section{
		Name:        TimeControl,
		Title:       "Time control",
		Minimal:     []string{"start_date_str", "end_date_str", "data_source"},
		Substantive: true,
		Fields: []Field{
			{
				Name: "start_date_str", Label: "Start date", Description: "Simulation start (YYYY-MM-DD_HH:MM:SS)",
				Type: field.TypeDate, Seq: true, Default: field.Seq(field.DateString("2001-10-25_00:00:00")),
				Constraints: Constraints{Required: true, Pattern: field.DatePattern},
			},
			{
				Name: "end_date_str", Label: "End date", Description: "Simulation end (YYYY-MM-DD_HH:MM:SS)",
				Type: field.TypeDate, Seq: true, Default: field.Seq(field.DateString("2001-10-26_00:00:00")),
				Constraints: Constraints{Required: true, Pattern: field.DatePattern},
			},
			{
				Name: "data_source", Label: "Data source", Description: "Initial and boundary condition data set",
				Type: field.TypeString, Default: strOf("GFS"),
				Constraints: Constraints{Required: true, Enum: DataSources},
			},
			{
				Name: "interval_seconds", Label: "Boundary interval", Description: "Seconds between boundary updates",
				Type: field.TypeInt, Default: intOf(21600), Unit: "s",
				Constraints: Constraints{Required: true, Min: bound(1)},
			},
			{
				Name: "history_interval", Label: "History interval", Description: "Time between history outputs",
				Type: field.TypeInt, Seq: true, Default: intSeq(180), Unit: "min", EditUnit: "h", EditScale: 60,
				Constraints: Constraints{Required: true, Min: bound(1)},
			},
			{
				Name: "frames_per_outfile", Label: "Frames per file", Type: field.TypeInt, Seq: true,
				Default: intSeq(1), Constraints: Constraints{Required: true, Min: bound(1)},
			},
			{
				Name: "input_from_file", Label: "Read input from file", Type: field.TypeBool, Seq: true,
				Default: boolSeq(true), Constraints: Constraints{Required: true},
			},
			{
				Name: "restart", Label: "Restart run", Type: field.TypeBool, Default: boolOf(false),
				Constraints: Constraints{Required: true},
			},
			{
				Name: "restart_interval", Label: "Restart interval", Description: "Time between restart files",
				Type: field.TypeInt, Default: intOf(360), Unit: "min", EditUnit: "h", EditScale: 60,
				Constraints: Constraints{Required: true, Min: bound(1)},
			},
			{
				Name: "io_form_history", Label: "History format", Type: field.TypeInt, Default: intOf(2),
				Constraints: Constraints{Required: true, Enum: IOForms},
			},
			{
				Name: "io_form_restart", Label: "Restart format", Type: field.TypeInt, Default: intOf(2),
				Constraints: Constraints{Required: true, Enum: IOForms},
			},
			{
				Name: "io_form_input", Label: "Input format", Type: field.TypeInt, Default: intOf(2),
				Constraints: Constraints{Required: true, Enum: IOForms},
			},
			{
				Name: "io_form_boundary", Label: "Boundary format", Type: field.TypeInt, Default: intOf(2),
				Constraints: Constraints{Required: true, Enum: IOForms},
			},
			{
				Name: "debug_level", Label: "Debug level", Type: field.TypeInt, Default: intOf(0),
				Constraints: Constraints{Required: true, Min: bound(0), Max: bound(1000)},
			},
			{
				Name: "nocolons", Label: "Replace colons in file names", Type: field.TypeBool, Default: boolOf(true),
				Constraints: Constraints{Required: true},
			},
		},
	}
}

func domainSetupSection() *Section {
	trueLat := &Condition{Field: "map_proj", In: trueLatProjections}
	return &Section{
		Name:        DomainSetup,
		Title:       "Domain setup",
		Minimal:     []string{"e_we", "dx", "map_proj"},
		Substantive: true,
		Fields: []Field{
			{
				Name: "max_dom", Label: "Domains", Description: "Number of domains",
				Type: field.TypeInt, Default: intOf(1),
				Constraints: Constraints{Required: true, Min: bound(1), Max: bound(10)},
			},
			{
				Name: "e_we", Label: "West-east grid points", Type: field.TypeInt, Seq: true, Default: intSeq(100),
				Constraints: Constraints{Required: true, Min: bound(3)},
			},
			{
				Name: "e_sn", Label: "South-north grid points", Type: field.TypeInt, Seq: true, Default: intSeq(100),
				Constraints: Constraints{Required: true, Min: bound(3)},
			},
			{
				Name: "e_vert", Label: "Vertical levels", Type: field.TypeInt, Seq: true, Default: intSeq(35),
				Constraints: Constraints{Required: true, Min: bound(3)},
			},
			{
				Name: "dx", Label: "Grid spacing X", Type: field.TypeFloat, Seq: true, Default: floatSeq(30000),
				Unit: "m", EditUnit: "km", EditScale: 1000,
				Constraints: Constraints{Required: true, Min: bound(0), ExclusiveMin: true},
			},
			{
				Name: "dy", Label: "Grid spacing Y", Type: field.TypeFloat, Seq: true, Default: floatSeq(30000),
				Unit: "m", EditUnit: "km", EditScale: 1000,
				Constraints: Constraints{Required: true, Min: bound(0), ExclusiveMin: true},
			},
			{
				Name: "map_proj", Label: "Map projection", Type: field.TypeString,
				Constraints: Constraints{Required: true, Enum: Projections},
			},
			{
				Name: "ref_lat", Label: "Reference latitude", Type: field.TypeFloat, Default: floatOf(34), Unit: "deg",
				Constraints: Constraints{Required: true, Min: bound(-90), Max: bound(90)},
			},
			{
				Name: "ref_lon", Label: "Reference longitude", Type: field.TypeFloat, Default: floatOf(118), Unit: "deg",
				Constraints: Constraints{Required: true, Min: bound(-180), Max: bound(180)},
			},
			{
				Name: "truelat1", Label: "True latitude 1", Type: field.TypeFloat, Default: floatOf(30), Unit: "deg",
				Constraints: Constraints{Min: bound(-90), Max: bound(90)}, When: trueLat,
			},
			{
				Name: "truelat2", Label: "True latitude 2", Type: field.TypeFloat, Default: floatOf(60), Unit: "deg",
				Constraints: Constraints{Min: bound(-90), Max: bound(90)}, When: trueLat,
			},
			{
				Name: "stand_lon", Label: "Standard longitude", Type: field.TypeFloat, Default: floatOf(118), Unit: "deg",
				Constraints: Constraints{Required: true, Min: bound(-180), Max: bound(180)},
			},
			{
				Name: "time_step", Label: "Time step", Description: "Integration step, about 6 x dx in km",
				Type: field.TypeInt, Default: intOf(180), Unit: "s",
				Constraints: Constraints{Required: true, Min: bound(1)},
			},
			{
				Name: "geog_data_path", Label: "Static geography path", Type: field.TypeString,
			},
			{
				Name: "parent_id", Label: "Parent domain", Type: field.TypeInt, Seq: true, Default: intSeq(1),
				Constraints: Constraints{Required: true, Min: bound(0)},
			},
			{
				Name: "parent_grid_ratio", Label: "Parent grid ratio", Type: field.TypeInt, Seq: true, Default: intSeq(1),
				Constraints: Constraints{Required: true, Min: bound(1)},
			},
			{
				Name: "i_parent_start", Label: "Parent start I", Type: field.TypeInt, Seq: true, Default: intSeq(1),
				Constraints: Constraints{Required: true, Min: bound(1)},
			},
			{
				Name: "j_parent_start", Label: "Parent start J", Type: field.TypeInt, Seq: true, Default: intSeq(1),
				Constraints: Constraints{Required: true, Min: bound(1)},
			},
			{
				Name: "parent_time_step_ratio", Label: "Parent time step ratio", Type: field.TypeInt, Seq: true,
				Default: intSeq(1), Constraints: Constraints{Required: true, Min: bound(1)},
			},
		},
	}
}

func physicsSection() *Section {
	scheme := func(name, label string, def int64, enum *Enum) Field {
		return Field{
			Name: name, Label: label, Type: field.TypeInt, Seq: true, Default: intSeq(def),
			Constraints: Constraints{Required: true, Enum: enum},
		}
	}
	minutes := func(name, label string, def int64) Field {
		return Field{
			Name: name, Label: label, Type: field.TypeInt, Seq: true, Default: intSeq(def), Unit: "min",
			Constraints: Constraints{Required: true, Min: bound(0)},
		}
	}
	return &Section{
		Name:        Physics,
		Title:       "Physics",
		Minimal:     []string{"mp_physics"},
		Substantive: true,
		Fields: []Field{
			scheme("mp_physics", "Microphysics", 8, Microphysics),
			scheme("ra_lw_physics", "Longwave radiation", 1, LongwaveRadiation),
			scheme("ra_sw_physics", "Shortwave radiation", 1, ShortwaveRadiation),
			scheme("sf_sfclay_physics", "Surface layer", 1, SurfaceLayer),
			scheme("sf_surface_physics", "Land surface", 2, LandSurface),
			scheme("bl_pbl_physics", "Boundary layer", 1, BoundaryLayer),
			scheme("cu_physics", "Cumulus", 1, Cumulus),
			minutes("radt", "Radiation step", 30),
			minutes("bldt", "Boundary layer step", 0),
			minutes("cudt", "Cumulus step", 5),
			{
				Name: "isfflx", Label: "Surface fluxes", Type: field.TypeInt, Default: intOf(1),
				Constraints: Constraints{Required: true, Enum: Switch},
			},
			{
				Name: "ifsnow", Label: "Snow cover effects", Type: field.TypeInt, Default: intOf(0),
				Constraints: Constraints{Required: true, Enum: Switch},
			},
			{
				Name: "icloud", Label: "Cloud effect on radiation", Type: field.TypeInt, Default: intOf(1),
				Constraints: Constraints{Required: true, Enum: Switch},
			},
			{
				Name: "surface_input_source", Label: "Surface input source", Type: field.TypeInt, Default: intOf(1),
				Constraints: Constraints{Required: true, Enum: SurfaceInputSource},
			},
			{
				Name: "num_soil_layers", Label: "Soil layers", Type: field.TypeInt, Default: intOf(4),
				Constraints: Constraints{Required: true, Enum: SoilLayers},
			},
		},
	}
}

func dynamicsSection() *Section {
	return &Section{
		Name:        Dynamics,
		Title:       "Dynamics",
		Minimal:     []string{"diff_opt"},
		Substantive: true,
		Fields: []Field{
			{
				Name: "diff_opt", Label: "Diffusion", Type: field.TypeInt, Seq: true, Default: intSeq(1),
				Constraints: Constraints{Required: true, Enum: DiffusionOptions},
			},
			{
				Name: "km_opt", Label: "Eddy coefficient", Type: field.TypeInt, Seq: true, Default: intSeq(4),
				Constraints: Constraints{Required: true, Enum: EddyCoefficients},
			},
			{
				Name: "non_hydrostatic", Label: "Non-hydrostatic", Type: field.TypeBool, Seq: true,
				Default: boolSeq(true), Constraints: Constraints{Required: true},
			},
			{
				Name: "w_damping", Label: "Vertical velocity damping", Type: field.TypeInt, Seq: true,
				Default: intSeq(0), Constraints: Constraints{Required: true, Enum: Switch},
			},
			{
				Name: "damp_opt", Label: "Upper damping", Type: field.TypeInt, Default: intOf(0),
				Constraints: Constraints{Required: true, Enum: DampingOptions},
			},
			{
				Name: "zdamp", Label: "Damping depth", Type: field.TypeFloat, Seq: true, Default: floatSeq(5000),
				Unit: "m", Constraints: Constraints{Required: true, Min: bound(0)},
			},
			{
				Name: "dampcoef", Label: "Damping coefficient", Type: field.TypeFloat, Seq: true,
				Default: floatSeq(0.2), Constraints: Constraints{Required: true, Min: bound(0), Max: bound(1)},
			},
			{
				Name: "khdif", Label: "Horizontal diffusion", Type: field.TypeFloat, Seq: true, Default: floatSeq(0),
				Unit: "m2/s", Constraints: Constraints{Required: true, Min: bound(0)},
			},
			{
				Name: "kvdif", Label: "Vertical diffusion", Type: field.TypeFloat, Seq: true, Default: floatSeq(0),
				Unit: "m2/s", Constraints: Constraints{Required: true, Min: bound(0)},
			},
			{
				Name: "rk_ord", Label: "Time integration order", Type: field.TypeInt, Default: intOf(3),
				Constraints: Constraints{Required: true, Enum: RungeKuttaOrders},
			},
		},
	}
}

func boundaryControlSection() *Section {
	return &Section{
		Name:  BoundaryControl,
		Title: "Boundary control",
		Fields: []Field{
			{
				Name: "spec_bdy_width", Label: "Boundary zone width", Type: field.TypeInt, Default: intOf(5),
				Constraints: Constraints{Required: true, Min: bound(1)},
			},
			{
				Name: "spec_zone", Label: "Specified zone", Type: field.TypeInt, Default: intOf(1),
				Constraints: Constraints{Required: true, Min: bound(1)},
			},
			{
				Name: "relax_zone", Label: "Relaxation zone", Type: field.TypeInt, Default: intOf(4),
				Constraints: Constraints{Required: true, Min: bound(1)},
			},
			{
				Name: "specified", Label: "Specified boundaries", Type: field.TypeBool, Seq: true,
				Default: boolSeq(true), Constraints: Constraints{Required: true},
			},
			{
				Name: "nested", Label: "Nested boundaries", Type: field.TypeBool, Seq: true,
				Default: boolSeq(false), Constraints: Constraints{Required: true},
			},
		},
	}
}

func quiltControlSection() *Section {
	return &Section{
		Name:  QuiltControl,
		Title: "I/O quilting",
		Fields: []Field{
			{
				Name: "nio_tasks_per_group", Label: "I/O tasks per group", Type: field.TypeInt, Default: intOf(0),
				Constraints: Constraints{Required: true, Min: bound(0)},
			},
			{
				Name: "nio_groups", Label: "I/O groups", Type: field.TypeInt, Default: intOf(1),
				Constraints: Constraints{Required: true, Min: bound(1)},
			},
		},
	}
}
