package table

import (
	"strconv"
	"strings"
)

// Cell is one column of a result row. Values are always strings; numeric
// interpretation happens on demand.
type Cell struct {
	Column string
	Value  string
}

// Row is an ordered list of cells whose order matches the SELECT list.
type Row []Cell

// Get returns the value of the first cell named col.
func (r Row) Get(col string) (string, bool) {
	for _, c := range r {
		if c.Column == col {
			return c.Value, true
		}
	}
	return "", false
}

// Value returns the value of col, or "" when the row has no such column.
func (r Row) Value(col string) string {
	v, _ := r.Get(col)
	return v
}

// Columns returns the row's column names in order.
func (r Row) Columns() []string {
	cols := make([]string, len(r))
	for i, c := range r {
		cols[i] = c.Column
	}
	return cols
}

// ParseNumber parses s as a float64. Surrounding whitespace is ignored.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FormatNumber renders f without trailing zeros.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// CompareValues compares numerically when both sides parse as numbers and
// byte-wise otherwise.
func CompareValues(a, b string) int {
	af, aok := ParseNumber(a)
	bf, bok := ParseNumber(b)
	if aok && bok {
		if af < bf {
			return -1
		}
		if af > bf {
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

// Table is a column-major view over result rows used for rendering.
type Table struct {
	Columns []string
	Rows    [][]string
}

// FromRows builds a Table. Columns come from the first row.
func FromRows(rows []Row) *Table {
	t := &Table{}
	if len(rows) == 0 {
		return t
	}
	t.Columns = rows[0].Columns()
	for _, r := range rows {
		vals := make([]string, len(t.Columns))
		for i := range t.Columns {
			if i < len(r) {
				vals[i] = r[i].Value
			}
		}
		t.Rows = append(t.Rows, vals)
	}
	return t
}

// String returns a compact representation of the table.
func (t *Table) String() string {
	if len(t.Rows) == 0 {
		return "[" + strings.Join(t.Columns, ", ") + "] (0 rows)"
	}

	var sb strings.Builder
	sb.WriteString("[ ")
	for i, r := range t.Rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("{")
		for j, v := range r {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(t.Columns[j])
			sb.WriteString(":")
			sb.WriteString(v)
		}
		sb.WriteString("}")
	}
	sb.WriteString(" ]")
	return sb.String()
}
