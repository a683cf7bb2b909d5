package engine

import (
	"sort"

	"github.com/razeghi71/xmlq/ast"
	"github.com/razeghi71/xmlq/table"
)

// postProcess applies aggregation, ORDER BY and LIMIT to the merged rows.
func postProcess(q *ast.Query, rows []table.Row) []table.Row {
	if q.HasAggregates() {
		rows = aggregateRows(q.Select, rows)
	}
	if len(q.OrderBy) > 0 {
		sortRows(rows, q.OrderBy[0], q.OrderDesc)
	}
	return limitRows(rows, q.Limit)
}

// sortRows stable-sorts by a single column. Values compare numerically when
// both parse as numbers and as strings otherwise; a missing column sorts as
// the empty string.
func sortRows(rows []table.Row, col string, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a := rows[i].Value(col)
		b := rows[j].Value(col)
		if desc {
			return table.CompareValues(b, a) < 0
		}
		return table.CompareValues(a, b) < 0
	})
}

// limitRows keeps the first n rows. A negative n keeps everything.
func limitRows(rows []table.Row, n int) []table.Row {
	if n < 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}
