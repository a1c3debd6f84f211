package chart

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/chartloom-cli/internal/dataset"
)

func rowsOf(keys []string, values ...[]any) []dataset.Row {
	rows := make([]dataset.Row, len(values))
	for i, vals := range values {
		r := dataset.Row{}
		for j, k := range keys {
			r[k] = vals[j]
		}
		rows[i] = r
	}
	return rows
}

func TestAutoChartBar(t *testing.T) {
	keys := []string{"city", "sales"}
	var vals [][]any
	for i := range 12 {
		vals = append(vals, []any{fmt.Sprintf("c%02d", i), fmt.Sprint(i * 10)})
	}
	ds := dataset.New(keys, rowsOf(keys, vals...))

	spec := AutoChart(*ds, "which city sells most")
	assert.Equal(t, "bar", spec.ChartType)
	assert.Equal(t, "city", spec.Dimension)
	assert.Equal(t, "sales", spec.Measure)
	assert.Len(t, spec.Data, 12)
	assert.Equal(t, "which city sells most", spec.Question)
	assert.Equal(t, "Mean is about 55.00; highest is c11=110; lowest is c00=0", spec.Insight)
	assert.Contains(t, spec.Reason, "bar chart")

	series := spec.Option["series"].([]any)
	require.Len(t, series, 1)
	s := series[0].(map[string]any)
	assert.Equal(t, "bar", s["type"])
	assert.Equal(t, map[string]any{"x": "category", "y": "value"}, s["encode"])
	assert.Contains(t, spec.Option, "grid")
}

func TestAutoChartPieBeatsLine(t *testing.T) {
	keys := []string{"day", "amount"}
	var vals [][]any
	for i := range 10 {
		vals = append(vals, []any{fmt.Sprintf("2024-01-%02d", i%5+1), fmt.Sprint(i + 1)})
	}
	ds := dataset.New(keys, rowsOf(keys, vals...))
	require.Equal(t, dataset.TypeDate, ds.Columns[0].Type)

	spec := AutoChart(*ds, "q")
	assert.Equal(t, "pie", spec.ChartType)
	assert.Contains(t, spec.Reason, "pie chart")
	s := spec.Option["series"].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{"itemName": "category", "value": "value"}, s["encode"])
	assert.NotContains(t, spec.Option, "xAxis")
}

func TestAutoChartLine(t *testing.T) {
	keys := []string{"day", "amount"}
	var vals [][]any
	for i := range 20 {
		vals = append(vals, []any{fmt.Sprintf("2024-02-%02d", i+1), fmt.Sprint(i)})
	}
	ds := dataset.New(keys, rowsOf(keys, vals...))

	spec := AutoChart(*ds, "")
	assert.Equal(t, "line", spec.ChartType)
	s := spec.Option["series"].([]any)[0].(map[string]any)
	assert.Equal(t, true, s["smooth"])
}

func TestAutoChartDegenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		spec := AutoChart(dataset.Dataset{Rows: []dataset.Row{}, Columns: []dataset.Column{}}, "q")
		assert.NotNil(t, spec.Data)
		assert.Empty(t, spec.Data)
		assert.Equal(t, "bar", spec.ChartType)
		assert.Equal(t, "Mean is about 0.00; highest is -; lowest is -", spec.Insight)
	})
}

func TestAutoChartSingleColumn(t *testing.T) {
	keys := []string{"n"}
	ds := dataset.New(keys, rowsOf(keys, []any{"1"}, []any{"2"}, []any{"x"}))

	spec := AutoChart(*ds, "q")
	assert.Equal(t, "n", spec.Dimension)
	assert.Equal(t, "n", spec.Measure)
	assert.Len(t, spec.Data, 2)
}

func TestAutoChartFiltersRows(t *testing.T) {
	ds := dataset.Dataset{
		Columns: []dataset.Column{{Key: "k", Type: dataset.TypeString}, {Key: "v", Type: dataset.TypeNumber}},
		Rows: []dataset.Row{
			{"k": "a", "v": "1"},
			{"k": nil, "v": "2"},
			{"v": "3"},
			{"k": "b", "v": "oops"},
			{"k": "c"},
			{"k": "", "v": "4"},
		},
	}
	spec := AutoChart(ds, "q")
	assert.Equal(t, []ChartPoint{{Category: "a", Value: 1}, {Category: "", Value: 4}}, spec.Data)
}

func TestAutoChartInsightLargeValues(t *testing.T) {
	keys := []string{"k", "v"}
	ds := dataset.New(keys, rowsOf(keys, []any{"a", "2e21"}, []any{"b", "0"}))

	spec := AutoChart(*ds, "q")
	assert.Equal(t, "Mean is about 1e+21; highest is a=2e+21; lowest is b=0", spec.Insight)
}

func TestNumberString(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{110, "110"},
		{-2.5, "-2.5"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{-1.5e22, "-1.5e+22"},
		{0.000001, "0.000001"},
		{1.5e-7, "1.5e-7"},
		{math.Inf(1), "Infinity"},
		{math.NaN(), "NaN"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, numberString(tc.in), tc.want)
	}
	assert.Equal(t, "55.00", fixed2(55))
	assert.Equal(t, "1e+21", fixed2(1e21))
}

func TestDistinctCategoriesMixedNumericKinds(t *testing.T) {
	rows := []dataset.Row{
		{"k": 1},
		{"k": 1.0},
		{"k": int64(1)},
		{"k": "1"},
		{"k": math.NaN()},
		{"k": math.NaN()},
	}
	assert.Equal(t, 3, distinctCategories(rows, "k"))
}
