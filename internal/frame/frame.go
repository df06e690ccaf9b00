// Package frame provides a minimal ordered-column table used as the exchange
// format between workbook reading, schema normalization and bundle writing.
// Cells are untyped strings; typed parsing happens at normalization time.
package frame

import "fmt"

// Frame is a rectangular table with named, ordered columns.
type Frame struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New creates an empty frame with the given column order. When a name
// repeats, lookups by name resolve to its first occurrence; Rename relies on
// this when two raw synonym headers survive a mapping.
func New(columns ...string) *Frame {
	f := &Frame{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, ok := f.index[c]; !ok {
			f.index[c] = i
		}
	}
	return f
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.rows) }

// HasColumn reports whether the frame has a column with the given name.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Append adds one row. The row is padded or truncated to the column count so
// ragged workbook rows cannot corrupt later positional access.
func (f *Frame) Append(row []string) {
	n := len(f.columns)
	r := make([]string, n)
	copy(r, row)
	f.rows = append(f.rows, r)
}

// Row returns row i. The returned slice is owned by the frame.
func (f *Frame) Row(i int) []string { return f.rows[i] }

// Cell returns the value at (row, column name), or "" when the column does
// not exist.
func (f *Frame) Cell(i int, column string) string {
	idx, ok := f.index[column]
	if !ok {
		return ""
	}
	return f.rows[i][idx]
}

// Rename returns a new frame with columns renamed according to the mapping.
// When two source columns map to the same target, the first occurrence keeps
// the target name and later ones keep their source name, so no data is lost.
func (f *Frame) Rename(mapping map[string]string) *Frame {
	seen := make(map[string]bool, len(f.columns))
	cols := make([]string, len(f.columns))
	for i, c := range f.columns {
		name := c
		if to, ok := mapping[c]; ok && !seen[to] {
			name = to
		}
		seen[name] = true
		cols[i] = name
	}
	out := New(cols...)
	out.rows = f.rows
	return out
}

// Select returns a new frame holding, in the requested order, those of the
// named columns that exist. Missing names are skipped.
func (f *Frame) Select(columns []string) *Frame {
	var keep []string
	var src []int
	for _, c := range columns {
		if idx, ok := f.index[c]; ok {
			keep = append(keep, c)
			src = append(src, idx)
		}
	}
	out := New(keep...)
	for _, row := range f.rows {
		r := make([]string, len(src))
		for j, idx := range src {
			r[j] = row[idx]
		}
		out.rows = append(out.rows, r)
	}
	return out
}

// Missing returns those of the named columns not present in the frame.
func (f *Frame) Missing(columns []string) []string {
	var missing []string
	for _, c := range columns {
		if !f.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// FromRecords builds a frame from a header row followed by data rows.
// Repeated header names are rejected: the column index could only point at
// one of the duplicates and later lookups would silently read the wrong cell.
func FromRecords(records [][]string) (*Frame, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row")
	}
	seen := make(map[string]bool, len(records[0]))
	for _, c := range records[0] {
		if seen[c] {
			return nil, fmt.Errorf("duplicate column %q in header", c)
		}
		seen[c] = true
	}
	f := New(records[0]...)
	for _, r := range records[1:] {
		f.Append(r)
	}
	return f, nil
}
