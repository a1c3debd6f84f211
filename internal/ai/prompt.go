package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KaramelBytes/chartloom-cli/internal/dataset"
)

// MaxPromptSamples caps the sample rows sent to the model.
const MaxPromptSamples = 5

const analysisSystemPrompt = `You are a data visualization assistant. Given a question and a table, choose a suitable ECharts chart and reply with exactly one JSON object with the fields: option, chartType, insight, reason.

Chart families (use one only when the data fits): line, bar (incl. stacked), pie (incl. rose), scatter (incl. bubble), geo/map (map, lines, scatter or effectScatter on geo), candlestick, radar, boxplot, heatmap (grid, geo or cartesian), graph, lines, tree, treemap, sunburst, parallel (with parallelAxis), sankey, funnel, gauge, pictorialBar.

Requirements:
1) option: a valid ECharts option usable with setOption as is.
   - Every series[].type must be a real ECharts type.
   - Prefer dataset plus encode for field mapping, or give series.data directly.
   - Include legend, tooltip, grid, xAxis/yAxis (cartesian charts), visualMap (heat or map gradients), geo/map (maps), radar, parallel/parallelAxis when needed.
   - Maps using series.type "map" or coordinateSystem "geo" must name geo.map or series.map (e.g. "china", "world").
   - boxplot and candlestick data must follow the ECharts data layout.
2) chartType: a short identifier such as bar, line, pie, scatter, map or radar.
3) insight: a short summary of what the data shows.
4) reason: why this chart type was chosen.

Output nothing but that JSON object: no prose, no Markdown code fences.`

// BuildAnalysisPrompt returns the system and user messages asking the model
// for a chart. At most MaxPromptSamples rows are included.
func BuildAnalysisPrompt(columns []dataset.Column, samples []dataset.Row, question string) []Message {
	schema := make([]string, len(columns))
	for i, c := range columns {
		schema[i] = fmt.Sprintf("%s:%s", c.Key, c.Type)
	}
	if len(samples) > MaxPromptSamples {
		samples = samples[:MaxPromptSamples]
	}
	lines := make([]string, 0, len(samples))
	for _, r := range samples {
		b, err := json.Marshal(r)
		if err != nil {
			continue
		}
		lines = append(lines, string(b))
	}
	user := fmt.Sprintf("Question: %s\nSchema: %s\nSamples:\n%s", question, strings.Join(schema, ", "), strings.Join(lines, "\n"))
	return []Message{
		{Role: "system", Content: analysisSystemPrompt},
		{Role: "user", Content: user},
	}
}
