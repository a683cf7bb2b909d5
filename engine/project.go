package engine

import (
	"github.com/razeghi71/xmlq/ast"
	"github.com/razeghi71/xmlq/document"
	"github.com/razeghi71/xmlq/table"
)

// projectRow builds one row from the SELECT fields resolved relative to
// node. Every field yields a cell; unresolved fields are empty.
func projectRow(node *document.Node, fields []ast.FieldPath, filename string) table.Row {
	row := make(table.Row, len(fields))
	for i, f := range fields {
		row[i].Column = f.Column()
		if f.FileName {
			row[i].Value = filename
			continue
		}
		if found := resolve(node, f.Components); found != nil {
			row[i].Value = found.Text
		}
	}
	return row
}
