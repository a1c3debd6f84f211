package chart

import (
	"maps"
	"math"
)

// truthy mirrors the loose truthiness model output is written against:
// nil, false, zero, NaN and "" are false; objects and arrays, even empty
// ones, are true.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case float32:
		return x != 0 && !math.IsNaN(float64(x))
	case int:
		return x != 0
	case int64:
		return x != 0
	case int32:
		return x != 0
	default:
		return true
	}
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok && m != nil
}

// seriesList views a series field as a list: nil is empty, a single entry is
// wrapped.
func seriesList(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		return x
	case []map[string]any:
		out := make([]any, len(x))
		for i, m := range x {
			out[i] = m
		}
		return out
	default:
		return []any{x}
	}
}

// seriesType returns the canonical type of a series entry, or "".
func seriesType(entry any) string {
	m, ok := asObject(entry)
	if !ok {
		return ""
	}
	t, _ := m["type"].(string)
	return NormalizeSeriesType(t)
}

func cloneObject(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return maps.Clone(m)
}
