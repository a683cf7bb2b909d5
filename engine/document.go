package engine

import (
	"github.com/razeghi71/xmlq/ast"
	"github.com/razeghi71/xmlq/document"
	"github.com/razeghi71/xmlq/table"
)

// Mode is the strategy used to turn one document into rows. It depends only
// on the query, so every document of a run uses the same mode.
type Mode int

const (
	ModeFor Mode = iota
	ModeNoWhere
	ModeShorthandWhere
	ModeFullPathWhere
)

func (m Mode) String() string {
	switch m {
	case ModeFor:
		return "for"
	case ModeNoWhere:
		return "no-where"
	case ModeShorthandWhere:
		return "shorthand-where"
	case ModeFullPathWhere:
		return "full-path-where"
	}
	return "unknown"
}

// ModeOf selects the execution mode for q. The WHERE mode is decided by the
// leftmost condition of the WHERE tree.
func ModeOf(q *ast.Query) Mode {
	switch {
	case len(q.For) > 0:
		return ModeFor
	case q.Where == nil:
		return ModeNoWhere
	}
	if first := ast.FirstCondition(q.Where); first != nil && len(first.Field.Components) >= 2 {
		return ModeFullPathWhere
	}
	return ModeShorthandWhere
}

// ExecuteDocument runs q against a single loaded document. filename fills
// the FILE_NAME column.
func ExecuteDocument(doc *document.Node, q *ast.Query, filename string) []table.Row {
	switch ModeOf(q) {
	case ModeFor:
		return executeFor(doc, q, filename)
	case ModeNoWhere:
		return executeNoWhere(doc, q, filename)
	case ModeShorthandWhere:
		return executeShorthand(doc, q, filename)
	default:
		return executeFullPath(doc, q, filename)
	}
}

// executeFor re-roots WHERE and SELECT at every node bound by the first FOR
// clause. Nothing outside the bound node's subtree is consulted.
func executeFor(doc *document.Node, q *ast.Query, filename string) []table.Row {
	var rows []table.Row
	for _, node := range resolveAll(doc, q.For[0].Path.Components) {
		if q.Where != nil && !Evaluate(node, q.Where, 0) {
			continue
		}
		rows = append(rows, projectRow(node, q.Select, filename))
	}
	return rows
}

// executeNoWhere extracts every value of every SELECT field document-wide
// and zips the lists by position: row i takes the i-th value of each field,
// or "" once a field runs out. Fields with different cardinalities are not
// joined, they are simply misaligned.
func executeNoWhere(doc *document.Node, q *ast.Query, filename string) []table.Row {
	if len(q.Select) == 0 {
		return nil
	}

	values := make([][]string, len(q.Select))
	maxLen := 0
	for i, f := range q.Select {
		if f.FileName {
			values[i] = []string{filename}
		} else {
			for _, n := range resolveAll(doc, f.Components) {
				values[i] = append(values[i], n.Text)
			}
		}
		if len(values[i]) > maxLen {
			maxLen = len(values[i])
		}
	}

	rows := make([]table.Row, 0, maxLen)
	for r := 0; r < maxLen; r++ {
		row := make(table.Row, len(q.Select))
		for i, f := range q.Select {
			row[i].Column = f.Column()
			if r < len(values[i]) {
				row[i].Value = values[i][r]
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// shorthandSearch walks every node looking for owners of a single-name
// WHERE field.
type shorthandSearch struct {
	q         *ast.Query
	filename  string
	whereName string
	nullCheck bool
}

func executeShorthand(doc *document.Node, q *ast.Query, filename string) []table.Row {
	s := shorthandSearch{q: q, filename: filename}
	if first := ast.FirstCondition(q.Where); first != nil && len(first.Field.Components) > 0 {
		s.whereName = first.Field.Components[0]
	}
	if c, ok := q.Where.(*ast.Condition); ok {
		s.nullCheck = c.Op.IsNullCheck()
	}
	return s.visit(doc, nil)
}

// visit evaluates node and then always descends, so a node and its
// descendants can match independently.
func (s *shorthandSearch) visit(node *document.Node, acc []table.Row) []table.Row {
	if s.isCandidate(node) && Evaluate(node, s.q.Where, 0) {
		acc = append(acc, projectRow(node, s.q.Select, s.filename))
	}
	for _, c := range node.Children {
		acc = s.visit(c, acc)
	}
	return acc
}

// isCandidate: for null checks, an element owning one of the single-name
// SELECT fields as a direct child; otherwise any node owning the WHERE field
// as a direct child.
func (s *shorthandSearch) isCandidate(node *document.Node) bool {
	if !s.nullCheck {
		return node.HasChild(s.whereName)
	}
	if !node.IsElement() {
		return false
	}
	for _, f := range s.q.Select {
		if !f.FileName && len(f.Components) == 1 && node.HasChild(f.Components[0]) {
			return true
		}
	}
	return false
}

// executeFullPath evaluates the WHERE tree at every node matching the
// WHERE field's parent path, with the parent path counted as consumed.
func executeFullPath(doc *document.Node, q *ast.Query, filename string) []table.Row {
	components := ast.FirstCondition(q.Where).Field.Components
	parentPath := components[:len(components)-1]

	var rows []table.Row
	for _, node := range FindByPartialPath(doc, parentPath) {
		if Evaluate(node, q.Where, len(parentPath)) {
			rows = append(rows, projectRow(node, q.Select, filename))
		}
	}
	return rows
}
