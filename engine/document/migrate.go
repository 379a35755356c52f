package document

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/compozy/wrfconf/engine/field"
	"github.com/compozy/wrfconf/engine/schema"
)

var sectionAliases = map[string]schema.SectionName{
	"physics_options":  schema.Physics,
	"dynamics_options": schema.Dynamics,
	"bdy_control":      schema.BoundaryControl,
	"namelist_quilt":   schema.QuiltControl,
	"domain":           schema.DomainSetup,
	"domains":          schema.DomainSetup,
}

var fieldAliases = map[string]string{
	"interval_seconds_wps": "interval_seconds",
	"restart_enabled":      "restart",
	"restart_interval_h":   "restart_interval",
	"start_date":           "start_date_str",
	"end_date":             "end_date_str",
}

// Flat keys older exports kept outside any section.
var flatKeys = map[string]schema.SectionName{
	"start_date":  schema.TimeControl,
	"end_date":    schema.TimeControl,
	"data_source": schema.TimeControl,
	"projection":  schema.DomainSetup,
}

var ignoredKeys = map[string]bool{
	"_lastUpdated": true,
	"revision":     true,
	"updated_at":   true,
	"output_dir":   true,
}

var projectionCodes = map[int64]string{
	1: "lambert",
	2: "polar",
	3: "mercator",
	6: "lat-lon",
}

// Migrate rewrites older document shapes into canonical section maps. Fields
// that have no canonical home are dropped and reported in the returned warnings.
// Canonical input comes back unchanged.
func Migrate(reg *schema.Registry, raw map[string]any) (map[string]map[string]any, []string) {
	m := &migration{
		reg: reg,
		out: make(map[string]map[string]any),
	}
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		m.top(key, raw[key])
	}
	return m.out, m.warnings
}

type migration struct {
	reg      *schema.Registry
	out      map[string]map[string]any
	warnings []string
}

func (m *migration) warn(format string, args ...any) {
	m.warnings = append(m.warnings, fmt.Sprintf(format, args...))
}

func (m *migration) section(name schema.SectionName) map[string]any {
	sec, ok := m.out[string(name)]
	if !ok {
		sec = make(map[string]any)
		m.out[string(name)] = sec
	}
	return sec
}

func (m *migration) top(key string, value any) {
	switch {
	case ignoredKeys[key]:
		return
	case key == "user_settings":
		m.userSettings(value)
		return
	}
	if name, ok := flatKeys[key]; ok {
		m.put(name, key, value)
		return
	}
	name, alias := sectionAliases[key]
	if !alias {
		parsed, err := schema.ParseSectionName(key)
		if err != nil {
			m.warn("dropped unknown section %q", key)
			return
		}
		name = parsed
	}
	fields, ok := value.(map[string]any)
	if !ok {
		m.warn("dropped section %q: not an object", key)
		return
	}
	// The flat export kept grid spacing in kilometres.
	km := key == "domain"
	unit := historyUnit(fields)
	for _, fieldKey := range slices.Sorted(maps.Keys(fields)) {
		v := fields[fieldKey]
		switch strings.TrimSuffix(fieldKey, "_arr") {
		case "history_interval_unit":
			continue
		case "history_interval":
			v = scaleValue(v, unit)
		case "dx", "dy":
			if km {
				v = scaleValue(v, 1000)
			}
		}
		m.put(name, fieldKey, v)
	}
}

func (m *migration) userSettings(value any) {
	settings, ok := value.(map[string]any)
	if !ok {
		return
	}
	if path, ok := settings["geog_data_path"].(string); ok && path != "" {
		m.section(schema.DomainSetup)["geog_data_path"] = path
	}
}

// put stores a field under its canonical name. A field that belongs to a
// different section is moved there.
func (m *migration) put(name schema.SectionName, key string, value any) {
	canonical := strings.TrimSuffix(key, "_arr")
	if alias, ok := fieldAliases[canonical]; ok {
		canonical = alias
	}
	switch canonical {
	case "projection", "map_proj":
		canonical = "map_proj"
		value = projectionValue(value)
	case "restart_interval":
		if strings.HasPrefix(key, "restart_interval_h") {
			value = scaleValue(value, 60)
		}
	}
	target, ok := m.home(name, canonical)
	if !ok {
		m.warn("dropped unknown field %q in section %q", key, name)
		return
	}
	if target != name {
		if _, taken := m.out[string(target)][canonical]; taken {
			m.warn("dropped duplicate field %q in section %q", key, name)
			return
		}
	}
	m.section(target)[canonical] = value
}

func (m *migration) home(name schema.SectionName, fieldName string) (schema.SectionName, bool) {
	if _, ok := m.reg.MustSection(name).Field(fieldName); ok {
		return name, true
	}
	for _, sec := range m.reg.Sections() {
		if _, ok := sec.Field(fieldName); ok {
			return sec.Name, true
		}
	}
	return "", false
}

func historyUnit(fields map[string]any) float64 {
	raw, ok := fields["history_interval_unit_arr"]
	if !ok {
		raw, ok = fields["history_interval_unit"]
	}
	if !ok {
		return 1
	}
	if list, isList := raw.([]any); isList && len(list) > 0 {
		raw = list[0]
	}
	switch raw {
	case "h":
		return 60
	case "d":
		return 1440
	default:
		return 1
	}
}

func projectionValue(v any) any {
	n, ok := number(v)
	if !ok {
		return v
	}
	if code, known := projectionCodes[int64(n)]; known && n == math.Trunc(n) {
		return code
	}
	return v
}

func scaleValue(v any, factor float64) any {
	if factor == 1 {
		return v
	}
	if list, ok := v.([]any); ok {
		out := make([]any, len(list))
		for i, el := range list {
			out[i] = scaleValue(el, factor)
		}
		return out
	}
	n, ok := number(v)
	if !ok {
		return v
	}
	return schema.Scale(field.Float(n), factor, field.TypeFloat)
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
