// Package dataset holds the tabular data model shared by the loaders and the
// chart pipeline: rows keyed by column name plus per-column inferred types.
package dataset

// ColumnType classifies the values of a column.
type ColumnType string

const (
	TypeNumber ColumnType = "number"
	TypeDate   ColumnType = "date"
	TypeString ColumnType = "string"
)

// Column is a named column annotated with its inferred type.
type Column struct {
	Key  string     `json:"key"`
	Type ColumnType `json:"type"`
}

// Row maps a column key to a scalar: a string, a numeric kind, a bool or nil
// for an empty cell. A key missing from the map is an absent value.
type Row map[string]any

// Dataset is a parsed table plus the inferred columns of its first row.
type Dataset struct {
	Rows    []Row    `json:"rows"`
	Columns []Column `json:"columns"`
}

// New builds a Dataset from rows whose key order is given by keys (typically
// the header). Columns are empty when there are no rows. Keys missing from the
// first row are dropped so Columns always mirrors the first row's key set.
func New(keys []string, rows []Row) *Dataset {
	ds := &Dataset{Rows: rows, Columns: []Column{}}
	if len(rows) == 0 {
		return ds
	}
	first := rows[0]
	seen := make(map[string]bool, len(first))
	for _, k := range keys {
		if _, ok := first[k]; !ok || seen[k] {
			continue
		}
		seen[k] = true
		ds.Columns = append(ds.Columns, Column{Key: k, Type: DetectType(Values(rows, k))})
	}
	return ds
}

// Values returns the value of key for every row; absent keys yield nil.
func Values(rows []Row, key string) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r[key]
	}
	return out
}

// Column returns the column with the given key.
func (d *Dataset) Column(key string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// Keys returns the column keys in order.
func (d *Dataset) Keys() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Key
	}
	return out
}
