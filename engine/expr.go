package engine

import (
	"strings"

	"github.com/razeghi71/xmlq/ast"
	"github.com/razeghi71/xmlq/document"
	"github.com/razeghi71/xmlq/table"
)

// Evaluate reports whether expr holds for node. depthOffset is the number of
// leading path components already consumed to reach node; they are dropped
// from every condition before resolving it relative to node, so the same
// tree serves the document root (offset 0) and bound context nodes.
func Evaluate(node *document.Node, expr ast.WhereExpr, depthOffset int) bool {
	switch e := expr.(type) {
	case *ast.Condition:
		return evalCondition(node, e, depthOffset)
	case *ast.Logical:
		switch e.Op {
		case ast.And:
			return Evaluate(node, e.Left, depthOffset) && Evaluate(node, e.Right, depthOffset)
		case ast.Or:
			return Evaluate(node, e.Left, depthOffset) || Evaluate(node, e.Right, depthOffset)
		case ast.Not:
			return !Evaluate(node, e.Left, depthOffset)
		}
	}
	return false
}

// relativeComponents drops the consumed prefix but always keeps the last
// component.
func relativeComponents(components []string, depthOffset int) []string {
	if depthOffset <= 0 || len(components) == 0 {
		return components
	}
	if depthOffset >= len(components) {
		return components[len(components)-1:]
	}
	return components[depthOffset:]
}

func evalCondition(node *document.Node, c *ast.Condition, depthOffset int) bool {
	found := resolve(node, relativeComponents(c.Field.Components, depthOffset))
	value := ""
	if found != nil {
		value = found.Text
	}

	switch c.Op {
	case ast.OpIsNull:
		return found == nil || value == ""
	case ast.OpIsNotNull:
		return found != nil && value != ""
	}
	return compareValues(value, c.Value, c.Op, c.Numeric)
}

// compareValues applies op to value and target. Numeric comparisons fall
// back to string comparison when either side is not a number.
func compareValues(value, target string, op ast.ComparisonOp, numeric bool) bool {
	var cmp int
	if numeric {
		vf, vok := table.ParseNumber(value)
		tf, tok := table.ParseNumber(target)
		if vok && tok {
			switch {
			case vf < tf:
				cmp = -1
			case vf > tf:
				cmp = 1
			}
			return cmpResult(op, cmp)
		}
	}
	cmp = strings.Compare(value, target)
	return cmpResult(op, cmp)
}

func cmpResult(op ast.ComparisonOp, cmp int) bool {
	switch op {
	case ast.OpEQ:
		return cmp == 0
	case ast.OpNE:
		return cmp != 0
	case ast.OpLT:
		return cmp < 0
	case ast.OpGT:
		return cmp > 0
	case ast.OpLE:
		return cmp <= 0
	case ast.OpGE:
		return cmp >= 0
	}
	return false
}
