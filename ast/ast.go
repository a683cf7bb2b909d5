package ast

import "strings"

// FileNameColumn is the reserved column name holding the source document's base name.
const FileNameColumn = "FILE_NAME"

// FieldPath is a dotted field reference such as order.total. It may be a
// partial suffix of the element's absolute path.
type FieldPath struct {
	Components []string
	FileName   bool   // the FILE_NAME pseudo-field
	Aggregate  string // "count", "sum", "avg", "min", "max"; empty for plain fields
}

// Path builds a FieldPath from its components.
func Path(components ...string) FieldPath {
	return FieldPath{Components: components}
}

// FileNameField returns the FILE_NAME pseudo-field.
func FileNameField() FieldPath {
	return FieldPath{Components: []string{FileNameColumn}, FileName: true}
}

// Column returns the output column name: the last component, or FILE_NAME.
func (f FieldPath) Column() string {
	if f.FileName || len(f.Components) == 0 {
		return FileNameColumn
	}
	return f.Components[len(f.Components)-1]
}

// Label is the column name used in the final result, which differs from
// Column only for aggregates, e.g. "COUNT(order.total)".
func (f FieldPath) Label() string {
	if f.Aggregate == "" {
		return f.Column()
	}
	return strings.ToUpper(f.Aggregate) + "(" + f.String() + ")"
}

// String joins the components with dots.
func (f FieldPath) String() string {
	if f.FileName {
		return FileNameColumn
	}
	return strings.Join(f.Components, ".")
}

// ComparisonOp is the operator of a WHERE condition.
type ComparisonOp int

const (
	OpEQ ComparisonOp = iota
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
	OpIsNull
	OpIsNotNull
)

var opNames = map[ComparisonOp]string{
	OpEQ: "=", OpNE: "!=", OpLT: "<", OpLE: "<=", OpGT: ">", OpGE: ">=",
	OpIsNull: "IS NULL", OpIsNotNull: "IS NOT NULL",
}

func (op ComparisonOp) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return "?"
}

// IsNullCheck reports whether the operator takes no right-hand operand.
func (op ComparisonOp) IsNullCheck() bool {
	return op == OpIsNull || op == OpIsNotNull
}

// WhereExpr is a boolean expression tree. Leaves are *Condition, inner
// nodes are *Logical.
type WhereExpr interface {
	whereNode()
}

// Condition compares the value found at Field with a literal.
type Condition struct {
	Field   FieldPath
	Op      ComparisonOp
	Value   string // unused for null checks
	Numeric bool   // the literal was a number
}

func (c *Condition) whereNode() {}

// LogicalOp combines conditions.
type LogicalOp int

const (
	And LogicalOp = iota
	Or
	Not
)

// Logical is AND/OR over two children, or NOT over Left alone.
type Logical struct {
	Op    LogicalOp
	Left  WhereExpr
	Right WhereExpr // nil for Not
}

func (l *Logical) whereNode() {}

// FirstCondition returns the leftmost leaf of the tree, or nil.
func FirstCondition(expr WhereExpr) *Condition {
	switch e := expr.(type) {
	case *Condition:
		return e
	case *Logical:
		return FirstCondition(e.Left)
	default:
		return nil
	}
}

// Conditions appends every leaf of expr to acc in left-to-right order.
func Conditions(expr WhereExpr, acc []*Condition) []*Condition {
	switch e := expr.(type) {
	case *Condition:
		return append(acc, e)
	case *Logical:
		acc = Conditions(e.Left, acc)
		if e.Right != nil {
			acc = Conditions(e.Right, acc)
		}
	}
	return acc
}

// ForClause binds Alias to every element matching Path. The engine keys
// evaluation on Path only.
type ForClause struct {
	Alias string
	Path  FieldPath
}

// Query is a fully parsed query. It is never mutated during execution.
type Query struct {
	FromPath  string
	Select    []FieldPath
	Where     WhereExpr // nil when absent
	For       []ForClause
	OrderBy   []string // column names; only the first is used
	OrderDesc bool
	Limit     int // negative = unbounded
}

// HasAggregates reports whether any SELECT field is an aggregate.
func (q *Query) HasAggregates() bool {
	for _, f := range q.Select {
		if f.Aggregate != "" {
			return true
		}
	}
	return false
}
