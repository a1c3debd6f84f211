package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/chartloom-cli/internal/dataset"
)

func TestProfile(t *testing.T) {
	rows := []dataset.Row{
		{"city": "a", "sales": "10"},
		{"city": "b", "sales": "11"},
		{"city": "a", "sales": "12"},
		{"city": "c", "sales": "10"},
		{"city": "a", "sales": "11"},
		{"city": "", "sales": "500"},
	}
	ds := dataset.New([]string{"city", "sales"}, rows)
	r := Profile(ds, DefaultOptions())
	require.Len(t, r.Cols, 2)
	assert.Equal(t, 6, r.Rows)

	city := r.Cols[0]
	assert.Equal(t, dataset.TypeString, city.Type)
	assert.Equal(t, 5, city.NonNull)
	assert.Equal(t, 1, city.Missing)
	assert.Equal(t, 3, city.Unique)
	assert.Equal(t, []CategoryCount{{"a", 3}, {"b", 1}, {"c", 1}}, city.TopValues)

	sales := r.Cols[1]
	assert.Equal(t, dataset.TypeNumber, sales.Type)
	assert.Equal(t, 10.0, sales.Min)
	assert.Equal(t, 500.0, sales.Max)
	assert.InDelta(t, 92.333, sales.Mean, 0.001)
	assert.Equal(t, 1, sales.OutliersCount)
	assert.Nil(t, sales.TopValues)

	md := r.Markdown()
	assert.Contains(t, md, "Rows: 6")
	assert.Contains(t, md, "- city: string (non-null 5, missing 16.7%, unique 3); top: a(3), b(1), c(1)")
	assert.Contains(t, md, "outliers: 1 above |z|>3.5")
}

func TestProfileEmpty(t *testing.T) {
	r := Profile(nil, DefaultOptions())
	assert.Equal(t, 0, r.Rows)
	assert.NotNil(t, r.Cols)

	r = Profile(&dataset.Dataset{}, Options{})
	assert.Empty(t, r.Cols)
}

func TestMedianMAD(t *testing.T) {
	m, mad := medianMAD([]float64{1, 2, 3, 4, 100})
	assert.Equal(t, 3.0, m)
	assert.Equal(t, 1.0, mad)
	m, mad = medianMAD(nil)
	assert.Zero(t, m)
	assert.Zero(t, mad)
}
