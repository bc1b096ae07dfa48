package scenario

import "github.com/wise-sim/firesim/internal/query"

// metersPerMinuteToFeetPerMinute converts ROS/FROS/BROS from this module's
// native m/min units to ft/min for export tables that expect imperial
// units (ScenarioExportRules.cpp's configurable unit column).
const metersPerMinuteToFeetPerMinute = 3.28084

// ExportRule names one stat to carry into a GIS export record, under what
// field name, and what unit transform to apply before writing it.
type ExportRule struct {
	Stat      query.StatID
	FieldName string
	Transform func(float64) float64
}

// ExportRules is the ordered rule table an exporter walks per vertex,
// building one field per rule from the raw query.Vertex values.
type ExportRules []ExportRule

func identity(v float64) float64 { return v }

func toFeetPerMinute(v float64) float64 { return v * metersPerMinuteToFeetPerMinute }

// DefaultExportRules is the sane default table: every stat the vertex
// carries, named the way GIS attribute tables conventionally spell fire
// behaviour fields, ROS left in its native m/min.
func DefaultExportRules() ExportRules {
	return ExportRules{
		{Stat: query.StatROS, FieldName: "ROS_MPM", Transform: identity},
		{Stat: query.StatCFB, FieldName: "CFB", Transform: identity},
		{Stat: query.StatCFC, FieldName: "CFC", Transform: identity},
		{Stat: query.StatSFC, FieldName: "SFC", Transform: identity},
		{Stat: query.StatTFC, FieldName: "TFC", Transform: identity},
		{Stat: query.StatFI, FieldName: "FI", Transform: identity},
		{Stat: query.StatFlameLength, FieldName: "FLAME_LEN", Transform: identity},
		{Stat: query.StatRAZ, FieldName: "RAZ", Transform: identity},
	}
}

// ImperialExportRules mirrors DefaultExportRules but reports ROS in
// ft/min, for exporters targeting an imperial-unit GIS schema.
func ImperialExportRules() ExportRules {
	rules := DefaultExportRules()
	for i := range rules {
		if rules[i].Stat == query.StatROS {
			rules[i].FieldName = "ROS_FPM"
			rules[i].Transform = toFeetPerMinute
		}
	}
	return rules
}

// Apply runs every rule against vertex, skipping stats the vertex doesn't
// carry, and returns one value per matched field name.
func (rules ExportRules) Apply(vertex query.Vertex) map[string]float64 {
	out := make(map[string]float64, len(rules))
	for _, rule := range rules {
		val, ok := vertex.Values[rule.Stat]
		if !ok {
			continue
		}
		transform := rule.Transform
		if transform == nil {
			transform = identity
		}
		out[rule.FieldName] = transform(val)
	}
	return out
}
