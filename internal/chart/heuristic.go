package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/KaramelBytes/chartloom-cli/internal/dataset"
)

const (
	// Pie is chosen when the dimension has at most this many distinct values.
	pieMaxCategories = 8
	// and the dataset has at most this many rows.
	pieMaxRows = 200
)

var reasons = map[string]string{
	SeriesLine: "The dimension is a continuous time axis, so a line chart shows the trend best.",
	SeriesPie:  "There are few categories and the question is about shares, so a pie chart fits.",
	SeriesBar:  "There are many categories with clear values to compare, so a bar chart fits.",
}

// AutoChart picks a dimension, a measure and a chart type for ds without any
// model call. Degenerate datasets yield a spec with no data points.
func AutoChart(ds dataset.Dataset, question string) ChartSpec {
	dim := pickDimension(ds.Columns)
	measure := pickMeasure(ds.Columns)

	chartType := SeriesBar
	if dim.Type == dataset.TypeDate {
		chartType = SeriesLine
	}
	// Evaluated after the date rule and takes precedence over it.
	if n := distinctCategories(ds.Rows, dim.Key); n > 0 && n <= pieMaxCategories && len(ds.Rows) <= pieMaxRows {
		chartType = SeriesPie
	}

	data := chartPoints(ds.Rows, dim.Key, measure.Key)
	return ChartSpec{
		Option:    NormalizeOption(heuristicOption(chartType, measure.Key, data)),
		ChartType: chartType,
		Insight:   insight(data),
		Reason:    reasons[chartType],
		Dimension: dim.Key,
		Measure:   measure.Key,
		Data:      data,
		Question:  question,
	}
}

func pickDimension(cols []dataset.Column) dataset.Column {
	for _, t := range []dataset.ColumnType{dataset.TypeString, dataset.TypeDate} {
		for _, c := range cols {
			if c.Type == t {
				return c
			}
		}
	}
	if len(cols) > 0 {
		return cols[0]
	}
	return dataset.Column{}
}

func pickMeasure(cols []dataset.Column) dataset.Column {
	for _, c := range cols {
		if c.Type == dataset.TypeNumber {
			return c
		}
	}
	switch {
	case len(cols) > 1:
		return cols[1]
	case len(cols) == 1:
		return cols[0]
	}
	return dataset.Column{}
}

func distinctCategories(rows []dataset.Row, key string) int {
	if key == "" {
		return 0
	}
	seen := make(map[any]bool)
	for _, r := range rows {
		v, ok := r[key]
		if !ok || v == nil || v == "" {
			continue
		}
		seen[categoryKey(v)] = true
	}
	return len(seen)
}

type nanKey struct{}

// categoryKey makes v usable as a map key while keeping "1" and 1 apart.
// All numeric kinds share one key space, and NaN equals itself.
func categoryKey(v any) any {
	switch x := v.(type) {
	case string, bool:
		return v
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		f := cast.ToFloat64(x)
		if math.IsNaN(f) {
			return nanKey{}
		}
		return f
	}
	return fmt.Sprintf("%T:%v", v, v)
}

func chartPoints(rows []dataset.Row, dimKey, measureKey string) []ChartPoint {
	data := []ChartPoint{}
	if dimKey == "" {
		return data
	}
	for _, r := range rows {
		cat, ok := r[dimKey]
		if !ok || cat == nil {
			continue
		}
		raw, ok := r[measureKey]
		if !ok {
			continue
		}
		v := dataset.ToNumber(raw)
		if math.IsNaN(v) {
			continue
		}
		data = append(data, ChartPoint{Category: cat, Value: v})
	}
	return data
}

func heuristicOption(chartType, measure string, data []ChartPoint) map[string]any {
	source := make([]any, len(data))
	for i, p := range data {
		source[i] = map[string]any{"category": p.Category, "value": p.Value}
	}
	option := map[string]any{
		"dataset": map[string]any{"source": source},
	}
	series := map[string]any{"type": chartType, "name": measure}
	switch chartType {
	case SeriesPie:
		series["radius"] = "90%"
		series["encode"] = map[string]any{"itemName": "category", "value": "value"}
		series["label"] = map[string]any{"position": "inside", "formatter": "{d}%"}
		option["tooltip"] = map[string]any{"trigger": "item"}
	default:
		series["encode"] = map[string]any{"x": "category", "y": "value"}
		if chartType == SeriesLine {
			series["smooth"] = true
		}
		option["xAxis"] = map[string]any{"type": "category", "axisLabel": map[string]any{"hideOverlap": true}}
		option["yAxis"] = map[string]any{"type": "value"}
		option["tooltip"] = map[string]any{"trigger": "axis"}
	}
	option["series"] = []any{series}
	return option
}

func insight(data []ChartPoint) string {
	var mean float64
	if len(data) > 0 {
		var sum float64
		for _, p := range data {
			sum += p.Value
		}
		mean = sum / float64(len(data))
	}
	hi, lo := "-", "-"
	if len(data) > 0 {
		maxIdx, minIdx := 0, 0
		for i, p := range data {
			if p.Value > data[maxIdx].Value {
				maxIdx = i
			}
			if p.Value < data[minIdx].Value {
				minIdx = i
			}
		}
		hi = formatPoint(data[maxIdx])
		lo = formatPoint(data[minIdx])
	}
	return fmt.Sprintf("Mean is about %s; highest is %s; lowest is %s", fixed2(mean), hi, lo)
}

func formatPoint(p ChartPoint) string {
	cat := fmt.Sprint(p.Category)
	if f, ok := p.Category.(float64); ok {
		cat = numberString(f)
	}
	return cat + "=" + numberString(p.Value)
}

// numberString renders f the way a script engine prints numbers: plain
// decimals between 1e-6 and 1e21, exponent form outside that range.
func numberString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	e, _ := strconv.Atoi(exp)
	if e < 0 {
		return mant + "e-" + strconv.Itoa(-e)
	}
	return mant + "e+" + strconv.Itoa(e)
}

// fixed2 prints two decimals, switching to numberString from 1e21 up.
func fixed2(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 1e21 {
		return numberString(f)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
