// Package chart turns tabular data or loosely shaped model output into a
// renderer-ready ECharts option. Every function here is total: malformed input
// degrades to documented defaults instead of failing.
package chart

// ChartPoint is one reduced {category, value} pair of the heuristic series.
type ChartPoint struct {
	Category any     `json:"category"`
	Value    float64 `json:"value"`
}

// ChartSpec is the canonical output of both the heuristic and the
// model-normalization paths. Option is consumed directly by the renderer.
type ChartSpec struct {
	Option    map[string]any `json:"option"`
	ChartType string         `json:"chartType"`
	Insight   string         `json:"insight"`
	Reason    string         `json:"reason"`

	// Set by the heuristic path only.
	Dimension string       `json:"dimension,omitempty"`
	Measure   string       `json:"measure,omitempty"`
	Data      []ChartPoint `json:"data,omitempty"`
	Question  string       `json:"question,omitempty"`
}
