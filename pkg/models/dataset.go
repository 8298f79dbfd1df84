// Package models contains domain types for promo-engine.
package models

// Row maps a column name to its cell value. A blank cell is "".
type Row map[string]string

// Dataset is an ordered table: a shared column list plus ordered rows.
// Column names are unique within a dataset and row order is preserved
// through the whole pipeline.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewDataset creates an empty dataset with the given column set.
func NewDataset(columns []string) *Dataset {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Dataset{Columns: cols, Rows: make([]Row, 0)}
}

// HasColumn reports whether the dataset contains the named column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// IsEmpty reports whether the dataset has no columns and no rows.
func (d *Dataset) IsEmpty() bool {
	return d == nil || (len(d.Columns) == 0 && len(d.Rows) == 0)
}

// Append adds a row to the dataset. The row is stored as-is; callers own it.
func (d *Dataset) Append(row Row) {
	d.Rows = append(d.Rows, row)
}

// Clone returns a deep copy. Mutating the copy never affects the original.
func (d *Dataset) Clone() *Dataset {
	out := NewDataset(d.Columns)
	out.Rows = make([]Row, 0, len(d.Rows))
	for _, row := range d.Rows {
		out.Rows = append(out.Rows, row.Clone())
	}
	return out
}

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
