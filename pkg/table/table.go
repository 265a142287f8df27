// Package table provides the in-memory tabular value that query results are
// materialized into and bulk loads are read from.
package table

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Table is an ordered set of named columns and rows.
type Table struct {
	Columns []string
	Rows    [][]any
}

// New creates a table with the given columns and rows.
func New(columns []string, rows ...[]any) *Table {
	t := &Table{Columns: append([]string(nil), columns...)}
	for _, row := range rows {
		t.Append(row)
	}
	return t
}

// Len returns the number of rows. A nil table has zero rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table is nil or has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Index returns the position of a column or -1.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Append adds a row, padding or trimming it to the column count.
func (t *Table) Append(row []any) {
	r := make([]any, len(t.Columns))
	copy(r, row)
	t.Rows = append(t.Rows, r)
}

// Head returns a copy holding at most the first n rows.
func (t *Table) Head(n int) *Table {
	if t == nil {
		return &Table{}
	}
	if n < 0 {
		n = 0
	}
	if n > t.Len() {
		n = t.Len()
	}
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	out.Rows = append(out.Rows, t.Rows[:n]...)
	return out
}

// Project returns a table with only the given columns, in that order.
// Columns absent from t are filled with nil.
func (t *Table) Project(columns []string) *Table {
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = t.Index(c)
	}
	out := &Table{Columns: append([]string(nil), columns...)}
	for _, row := range t.Rows {
		r := make([]any, len(columns))
		for i, j := range idx {
			if j >= 0 {
				r[i] = row[j]
			}
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}

// Column returns all values of a column.
func (t *Table) Column(name string) ([]any, error) {
	i := t.Index(name)
	if i < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}
	out := make([]any, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, nil
}

// Maps returns each row as a column-keyed map.
func (t *Table) Maps() []map[string]any {
	out := make([]map[string]any, 0, t.Len())
	for _, row := range t.Rows {
		m := make(map[string]any, len(t.Columns))
		for i, c := range t.Columns {
			m[c] = row[i]
		}
		out = append(out, m)
	}
	return out
}

// Concat stacks tables preserving row order. Columns are the union of all
// inputs in first-seen order; missing cells are nil. Nil tables are skipped.
func Concat(tables ...*Table) *Table {
	out := &Table{}
	seen := make(map[string]int)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			if _, ok := seen[c]; !ok {
				seen[c] = len(out.Columns)
				out.Columns = append(out.Columns, c)
			}
		}
	}
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, row := range t.Rows {
			r := make([]any, len(out.Columns))
			for i, c := range t.Columns {
				r[seen[c]] = row[i]
			}
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// WriteText renders the table as aligned text columns.
func (t *Table) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	for i, c := range t.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)
	for _, row := range t.Rows {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, FormatValue(v))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// FormatValue renders a cell for text output.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
