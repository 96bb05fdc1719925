// Package frame holds the intermediate tabular records produced while
// extracting a document: an ordered column list and rows of nullable cells.
//
// Cells are nil (null), string, int64, float64, bool or time.Time. Values
// located in a document start as strings; Coerce converts them according to a
// column type map.
package frame

import "fmt"

// Frame is an ordered set of named columns over rows of cells.
type Frame struct {
	Columns []string
	Rows    [][]any
}

// New returns an empty frame with the given columns.
func New(columns ...string) *Frame {
	return &Frame{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Empty reports whether the frame has no rows.
func (f *Frame) Empty() bool {
	return f.Len() == 0
}

// Index returns the position of the named column, or -1.
func (f *Frame) Index(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether the frame has the named column.
func (f *Frame) Has(name string) bool {
	return f.Index(name) >= 0
}

// Append adds a row, padding or truncating it to the column count.
func (f *Frame) Append(row ...any) {
	out := make([]any, len(f.Columns))
	copy(out, row)
	f.Rows = append(f.Rows, out)
}

// Value returns the cell at row i of the named column, or nil.
func (f *Frame) Value(i int, name string) any {
	idx := f.Index(name)
	if idx < 0 || i < 0 || i >= len(f.Rows) {
		return nil
	}
	return f.Rows[i][idx]
}

// Column returns a copy of all cells of the named column.
func (f *Frame) Column(name string) []any {
	idx := f.Index(name)
	if idx < 0 {
		return nil
	}
	out := make([]any, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[idx]
	}
	return out
}

// Rename substitutes column labels found in m, keeping column order. Labels
// missing from m are left untouched.
func (f *Frame) Rename(m map[string]string) *Frame {
	for i, c := range f.Columns {
		if to, ok := m[c]; ok {
			f.Columns[i] = to
		}
	}
	return f
}

// Drop removes the named columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) {
	for _, name := range names {
		idx := f.Index(name)
		if idx < 0 {
			continue
		}
		f.Columns = append(f.Columns[:idx], f.Columns[idx+1:]...)
		for i, row := range f.Rows {
			f.Rows[i] = append(row[:idx], row[idx+1:]...)
		}
	}
}

// Filter keeps the rows for which keep returns true, preserving order.
func (f *Frame) Filter(keep func(r Row) bool) {
	kept := f.Rows[:0]
	for i, row := range f.Rows {
		if keep(Row{f: f, i: i}) {
			kept = append(kept, row)
		}
	}
	for i := len(kept); i < len(f.Rows); i++ {
		f.Rows[i] = nil
	}
	f.Rows = kept
}

// Set assigns v to the named column on every row, adding the column when
// missing.
func (f *Frame) Set(name string, v any) {
	f.SetFunc(name, func(Row) any { return v })
}

// SetFunc assigns fn(row) to the named column on every row, in row order.
// The row passed to fn still carries the previous value of the column.
func (f *Frame) SetFunc(name string, fn func(r Row) any) {
	idx := f.Index(name)
	if idx < 0 {
		f.Columns = append(f.Columns, name)
		for i := range f.Rows {
			f.Rows[i] = append(f.Rows[i], nil)
		}
		idx = len(f.Columns) - 1
	}
	for i := range f.Rows {
		v := fn(Row{f: f, i: i})
		f.Rows[i][idx] = v
	}
}

// Records returns the rows as column-keyed maps.
func (f *Frame) Records() []map[string]any {
	out := make([]map[string]any, 0, len(f.Rows))
	for _, row := range f.Rows {
		rec := make(map[string]any, len(f.Columns))
		for i, c := range f.Columns {
			rec[c] = row[i]
		}
		out = append(out, rec)
	}
	return out
}

// Concat stacks frames in argument order. The result carries the union of
// all columns in first-seen order; cells for columns a frame lacks are nil.
// Nil and column-less frames are skipped.
func Concat(frames ...*Frame) *Frame {
	out := &Frame{}
	pos := map[string]int{}
	for _, f := range frames {
		if f == nil {
			continue
		}
		for _, c := range f.Columns {
			if _, ok := pos[c]; !ok {
				pos[c] = len(out.Columns)
				out.Columns = append(out.Columns, c)
			}
		}
	}
	for _, f := range frames {
		if f == nil {
			continue
		}
		for _, row := range f.Rows {
			merged := make([]any, len(out.Columns))
			for i, c := range f.Columns {
				merged[pos[c]] = row[i]
			}
			out.Rows = append(out.Rows, merged)
		}
	}
	return out
}

// Row is a read view of one frame row.
type Row struct {
	f *Frame
	i int
}

// Index returns the row position within its frame.
func (r Row) Index() int { return r.i }

// Get returns the cell of the named column, or nil.
func (r Row) Get(name string) any {
	return r.f.Value(r.i, name)
}

// String returns the cell of the named column as text; nil is "".
func (r Row) String(name string) string {
	switch v := r.Get(name).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// IsNull reports whether the named cell is nil.
func (r Row) IsNull(name string) bool {
	return r.Get(name) == nil
}
