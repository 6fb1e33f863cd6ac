// Package membership reads and writes membership lists (Action Network
// exports and similar) as ordered column/value rows.
package membership

import "slices"

// Columns added by augmentation.
const (
	ColumnGeocodedAddress = "geocoded_address"
	ColumnCouncilDistrict = "city_council_district"
)

// Row is one membership record. Columns keep the order they were read in;
// columns set later are appended.
type Row struct {
	columns []string
	values  map[string]string
}

// NewRow builds a row from parallel column and value slices. A short value
// slice leaves the trailing columns absent.
func NewRow(columns, values []string) *Row {
	r := &Row{values: make(map[string]string, len(columns))}
	for i, col := range columns {
		if i >= len(values) {
			break
		}
		r.Set(col, values[i])
	}
	return r
}

// Lookup returns the value of col and whether the row has it.
func (r *Row) Lookup(col string) (string, bool) {
	v, ok := r.values[col]
	return v, ok
}

// Value returns the value of col, or "" when the row does not have it.
func (r *Row) Value(col string) string {
	return r.values[col]
}

// Has reports whether the row has col.
func (r *Row) Has(col string) bool {
	_, ok := r.values[col]
	return ok
}

// Set assigns col, appending it to the row's columns if new.
func (r *Row) Set(col, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[col]; !ok {
		r.columns = append(r.columns, col)
	}
	r.values[col] = value
}

// Columns returns the row's columns in order.
func (r *Row) Columns() []string {
	return slices.Clone(r.columns)
}

// Values returns the values for cols, "" for any the row lacks.
func (r *Row) Values(cols []string) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = r.values[col]
	}
	return out
}

// Clone returns an independent copy.
func (r *Row) Clone() *Row {
	c := &Row{
		columns: slices.Clone(r.columns),
		values:  make(map[string]string, len(r.values)),
	}
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// Table is a header plus rows.
type Table struct {
	Columns []string
	Rows    []*Row
}

// OutputColumns returns the header columns followed by any column that a
// row gained after reading, in first-seen order. Repeated header names are
// written once; the last value read for them wins.
func (t *Table) OutputColumns() []string {
	cols := make([]string, 0, len(t.Columns)+2)
	seen := make(map[string]bool, len(t.Columns)+2)
	for _, c := range t.Columns {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	for _, row := range t.Rows {
		for _, c := range row.columns {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	return cols
}
