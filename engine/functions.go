package engine

import (
	"github.com/razeghi71/xmlq/ast"
	"github.com/razeghi71/xmlq/table"
)

// aggregateRows collapses rows into a single row. Cells are matched to
// fields by position. Aggregate fields are reduced over every row; plain
// fields keep the first row's value.
func aggregateRows(fields []ast.FieldPath, rows []table.Row) []table.Row {
	out := make(table.Row, len(fields))
	for i, f := range fields {
		out[i].Column = f.Label()
		vals := columnValues(rows, i)
		switch f.Aggregate {
		case "":
			if len(vals) > 0 {
				out[i].Value = vals[0]
			}
		case "count":
			out[i].Value = aggCount(vals)
		case "sum":
			out[i].Value = aggSum(vals)
		case "avg":
			out[i].Value = aggAvg(vals)
		case "min":
			out[i].Value = aggExtreme(vals, -1)
		case "max":
			out[i].Value = aggExtreme(vals, 1)
		}
	}
	return []table.Row{out}
}

func columnValues(rows []table.Row, idx int) []string {
	vals := make([]string, 0, len(rows))
	for _, r := range rows {
		if idx < len(r) {
			vals = append(vals, r[idx].Value)
		}
	}
	return vals
}

// aggCount counts non-empty values.
func aggCount(vals []string) string {
	n := 0
	for _, v := range vals {
		if v != "" {
			n++
		}
	}
	return table.FormatNumber(float64(n))
}

// numbers returns the values that parse as numbers; the rest are skipped.
func numbers(vals []string) []float64 {
	var out []float64
	for _, v := range vals {
		if f, ok := table.ParseNumber(v); ok {
			out = append(out, f)
		}
	}
	return out
}

func aggSum(vals []string) string {
	var sum float64
	for _, f := range numbers(vals) {
		sum += f
	}
	return table.FormatNumber(sum)
}

func aggAvg(vals []string) string {
	nums := numbers(vals)
	if len(nums) == 0 {
		return ""
	}
	var sum float64
	for _, f := range nums {
		sum += f
	}
	return table.FormatNumber(sum / float64(len(nums)))
}

// aggExtreme returns the smallest (sign -1) or largest (sign 1) non-empty
// value under the numeric-aware ordering.
func aggExtreme(vals []string, sign int) string {
	best := ""
	found := false
	for _, v := range vals {
		if v == "" {
			continue
		}
		if !found || table.CompareValues(v, best)*sign > 0 {
			best = v
			found = true
		}
	}
	return best
}
