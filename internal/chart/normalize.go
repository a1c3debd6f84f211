package chart

import (
	"strings"

	"github.com/spf13/cast"
)

// Field aliases in priority order.
var (
	optionKeys    = []string{"option", "config", "optionConfig"}
	chartTypeKeys = []string{"chartType", "type"}
	insightKeys   = []string{"insight"}
	reasonKeys    = []string{"reason", "explanation"}
)

// aiResponse is the typed view of an untrusted model payload. Every field has
// already been resolved through its alias list.
type aiResponse struct {
	Option    map[string]any
	ChartType string
	Insight   string
	Reason    string
	// AreaHint is set when the payload asked for an area chart by name.
	AreaHint bool
}

func parseAIResponse(raw any) aiResponse {
	obj, _ := asObject(raw)
	resp := aiResponse{
		ChartType: firstString(obj, chartTypeKeys),
		Insight:   firstString(obj, insightKeys),
		Reason:    firstString(obj, reasonKeys),
	}
	for _, k := range optionKeys {
		if m, ok := asObject(obj[k]); ok {
			resp.Option = m
			break
		}
	}
	if ct, ok := obj["chartType"].(string); ok && strings.EqualFold(ct, "area") {
		resp.AreaHint = true
	}
	return resp
}

// firstString returns the first truthy scalar among keys, rendered as text.
// Objects and arrays are skipped.
func firstString(obj map[string]any, keys []string) string {
	for _, k := range keys {
		v := obj[k]
		if !truthy(v) {
			continue
		}
		switch x := v.(type) {
		case string:
			return x
		case map[string]any, []any:
			continue
		}
		if s, err := cast.ToStringE(v); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// NormalizeAIResponse converts an arbitrary decoded model payload into a
// ChartSpec. It never fails and never mutates raw: missing or malformed
// fields fall back to empty values and an empty option.
func NormalizeAIResponse(raw any) ChartSpec {
	resp := parseAIResponse(raw)
	option := normalizeOption(resp.Option, resp.AreaHint)
	spec := ChartSpec{
		Option:    option,
		ChartType: resp.ChartType,
		Insight:   resp.Insight,
		Reason:    resp.Reason,
	}
	if spec.ChartType == "" {
		if list, ok := option["series"].([]any); ok && len(list) > 0 {
			if first, ok := asObject(list[0]); ok {
				spec.ChartType, _ = first["type"].(string)
			}
		}
	}
	return spec
}

// NormalizeOption canonicalizes series types and injects the structural
// defaults the renderer needs. Applying it to its own output is a no-op.
func NormalizeOption(option map[string]any) map[string]any {
	return normalizeOption(option, false)
}

func normalizeOption(src map[string]any, area bool) map[string]any {
	option := cloneObject(src)
	if truthy(option["series"]) {
		list := seriesList(option["series"])
		out := make([]any, 0, len(list))
		for _, s := range list {
			orig, _ := asObject(s)
			ss := cloneObject(orig)
			if t, ok := ss["type"].(string); ok {
				ss["type"] = NormalizeSeriesType(t)
			}
			if ss["type"] == SeriesLine && (area || truthy(orig["areaStyle"])) && !truthy(ss["areaStyle"]) {
				ss["areaStyle"] = map[string]any{}
			}
			out = append(out, ss)
		}
		option["series"] = out
	}
	applyDefaults(option)
	return option
}

func applyDefaults(option map[string]any) {
	if !truthy(option["tooltip"]) {
		option["tooltip"] = map[string]any{"trigger": "item"}
	}
	list := seriesList(option["series"])
	if len(list) > 1 && !truthy(option["legend"]) {
		option["legend"] = map[string]any{}
	}

	var cartesian, radar bool
	for _, s := range list {
		t := seriesType(s)
		cartesian = cartesian || IsCartesian(t)
		radar = radar || t == SeriesRadar
	}
	if cartesian {
		if !truthy(option["grid"]) {
			option["grid"] = map[string]any{"containLabel": true}
		}
		if !truthy(option["xAxis"]) {
			option["xAxis"] = map[string]any{}
		}
		if !truthy(option["yAxis"]) {
			option["yAxis"] = map[string]any{}
		}
	}
	if radar && !truthy(option["radar"]) {
		option["radar"] = map[string]any{"indicator": []any{}}
	}
}

// HasContent reports whether option carries anything to draw: at least one
// series entry or a dataset.
func HasContent(option map[string]any) bool {
	return len(seriesList(option["series"])) > 0 || truthy(option["dataset"])
}
