package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectType(t *testing.T) {
	cases := []struct {
		name   string
		values []any
		want   ColumnType
	}{
		{"mostly numeric strings", []any{"1", "2", "3", "x"}, TypeNumber},
		{"half numeric falls through to string", []any{"1", "2", "x", "y"}, TypeString},
		{"native numbers", []any{1.5, 2, int64(3)}, TypeNumber},
		{"iso dates", []any{"2024-01-01", "2024-02-01", "2024-03-01", "n/a"}, TypeDate},
		{"slash dates", []any{"2024/01/05", "2024/01/06"}, TypeDate},
		{"unpadded iso dates", []any{"2024-1-5", "2024-2-6", "2024-3-7"}, TypeDate},
		{"dotted dates", []any{"2024.01.05", "2024.1.6", "2024.12.07"}, TypeDate},
		{"digit separators are not numbers", []any{"1_000", "2_000", "3_000"}, TypeString},
		{"plain text", []any{"north", "south", "east"}, TypeString},
		{"empty values ignored", []any{"", nil, "4", "5"}, TypeNumber},
		{"no values", []any{}, TypeString},
		{"only empties", []any{"", nil}, TypeString},
		{"blank strings are not numbers", []any{" ", " ", "1"}, TypeString},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectType(tc.values))
		})
	}
}

func TestToNumber(t *testing.T) {
	assert.Equal(t, 0.0, ToNumber(""))
	assert.Equal(t, 0.0, ToNumber(nil))
	assert.Equal(t, 12.5, ToNumber(" 12.5 "))
	assert.Equal(t, 7.0, ToNumber(int64(7)))
	assert.Equal(t, 1.0, ToNumber(true))
	assert.True(t, math.IsNaN(ToNumber("abc")))

	cases := []struct {
		in   string
		want float64
	}{
		{"0x10", 16},
		{"0X1f", 31},
		{"0b101", 5},
		{"0o17", 15},
		{".5", 0.5},
		{"5.", 5},
		{"-1.5e3", -1500},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{"1e400", math.Inf(1)},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ToNumber(tc.in), tc.in)
	}
	for _, in := range []string{"1_000", "inf", "Inf", "infinity", "NaN", "-0x10", "0x", "0x1p4", "0b102", "1,000"} {
		assert.True(t, math.IsNaN(ToNumber(in)), in)
	}
	assert.False(t, IsNumeric("1_000"))
	assert.False(t, IsNumeric("Infinity"))
	assert.True(t, IsNumeric("0x10"))
}

func TestIsDate(t *testing.T) {
	assert.True(t, IsDate("2024-03-01T10:00:00Z"))
	assert.True(t, IsDate("Mar 4, 2024"))
	assert.True(t, IsDate(float64(1700000000000)))
	assert.False(t, IsDate("tomorrow-ish"))
	assert.True(t, IsDate("2024-1-5"))
	assert.True(t, IsDate("2024-1-5 08:30:00"))
	assert.True(t, IsDate("2024.01.05"))
	assert.True(t, IsDate("2024.1.5"))
	assert.False(t, IsDate(nil))
}

func TestNewKeepsHeaderOrder(t *testing.T) {
	rows := []Row{
		{"month": "2024-01", "sales": "10", "region": "north"},
		{"month": "2024-02", "sales": "12", "region": "south"},
	}
	ds := New([]string{"region", "month", "sales", "missing"}, rows)
	require.Len(t, ds.Columns, 3)
	assert.Equal(t, []string{"region", "month", "sales"}, ds.Keys())
	assert.Equal(t, TypeString, ds.Columns[0].Type)
	assert.Equal(t, TypeDate, ds.Columns[1].Type)
	assert.Equal(t, TypeNumber, ds.Columns[2].Type)
}

func TestNewWithoutRows(t *testing.T) {
	ds := New([]string{"a", "b"}, nil)
	assert.Empty(t, ds.Columns)
	assert.Empty(t, ds.Rows)
}

func TestFromJSON(t *testing.T) {
	ds, err := FromJSON([]byte(`[{"city":"Lyon","temp":12},{"city":"Nice","temp":"15"}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "temp"}, ds.Keys())
	col, ok := ds.Column("temp")
	require.True(t, ok)
	assert.Equal(t, TypeNumber, col.Type)

	_, err = FromJSON([]byte(`[1,2]`))
	assert.Error(t, err)

	ds, err = FromJSON([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, ds.Columns)
}
