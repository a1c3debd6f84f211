package chart

import "strings"

// Canonical series types understood by the renderer.
const (
	SeriesBar          = "bar"
	SeriesLine         = "line"
	SeriesPie          = "pie"
	SeriesScatter      = "scatter"
	SeriesHeatmap      = "heatmap"
	SeriesRadar        = "radar"
	SeriesBoxplot      = "boxplot"
	SeriesCandlestick  = "candlestick"
	SeriesMap          = "map"
	SeriesGraph        = "graph"
	SeriesLines        = "lines"
	SeriesTree         = "tree"
	SeriesTreemap      = "treemap"
	SeriesSunburst     = "sunburst"
	SeriesParallel     = "parallel"
	SeriesSankey       = "sankey"
	SeriesFunnel       = "funnel"
	SeriesGauge        = "gauge"
	SeriesPictorialBar = "pictorialBar"
)

// seriesAliases maps a lower-cased type name to its canonical series type.
// Read-only after init.
var seriesAliases = map[string]string{
	"column":       SeriesBar,
	"bar":          SeriesBar,
	"line":         SeriesLine,
	"area":         SeriesLine,
	"pie":          SeriesPie,
	"donut":        SeriesPie,
	"ring":         SeriesPie,
	"scatter":      SeriesScatter,
	"bubble":       SeriesScatter,
	"heat":         SeriesHeatmap,
	"heatmap":      SeriesHeatmap,
	"radar":        SeriesRadar,
	"box":          SeriesBoxplot,
	"boxplot":      SeriesBoxplot,
	"k":            SeriesCandlestick,
	"kline":        SeriesCandlestick,
	"candlestick":  SeriesCandlestick,
	"map":          SeriesMap,
	"geo":          SeriesMap,
	"graph":        SeriesGraph,
	"network":      SeriesGraph,
	"relation":     SeriesGraph,
	"lines":        SeriesLines,
	"tree":         SeriesTree,
	"treemap":      SeriesTreemap,
	"sunburst":     SeriesSunburst,
	"parallel":     SeriesParallel,
	"sankey":       SeriesSankey,
	"funnel":       SeriesFunnel,
	"gauge":        SeriesGauge,
	"pictorial":    SeriesPictorialBar,
	"pictorialbar": SeriesPictorialBar,
}

var cartesianTypes = map[string]bool{
	SeriesBar:          true,
	SeriesLine:         true,
	SeriesScatter:      true,
	SeriesPictorialBar: true,
}

// NormalizeSeriesType resolves a loosely specified type name to its canonical
// series type. Lookup is case-insensitive; unknown names are returned as given.
func NormalizeSeriesType(t string) string {
	if t == "" {
		return t
	}
	if c, ok := seriesAliases[strings.ToLower(strings.TrimSpace(t))]; ok {
		return c
	}
	return t
}

// IsCartesian reports whether a canonical series type needs an x/y grid.
func IsCartesian(t string) bool { return cartesianTypes[t] }
