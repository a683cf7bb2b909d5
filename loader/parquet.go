package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	parquet "github.com/parquet-go/parquet-go"

	"github.com/razeghi71/xmlq/document"
)

const (
	parquetRowName   = "row"
	parquetBatchSize = 128
)

func loadParquet(filename string) (*document.Node, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat %s: %w", filename, err)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("cannot read Parquet from %s: %w", filename, err)
	}

	columns := pf.Schema().Columns()
	doc := document.New()
	for _, rg := range pf.RowGroups() {
		if err := readRowGroup(rg, columns, doc); err != nil {
			return nil, fmt.Errorf("error reading Parquet rows from %s: %w", filename, err)
		}
	}
	return doc, nil
}

func readRowGroup(rg parquet.RowGroup, columns [][]string, doc *document.Node) error {
	rows := rg.Rows()
	defer rows.Close()

	buf := make([]parquet.Row, parquetBatchSize)
	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			appendParquetRow(doc.AppendElement(parquetRowName), row, columns)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

// appendParquetRow places every non-null leaf value under el following its
// column path. Intermediate groups are shared by consecutive leaves.
func appendParquetRow(el *document.Node, row parquet.Row, columns [][]string) {
	for _, v := range row {
		if v.IsNull() {
			continue
		}
		col := v.Column()
		if col < 0 || col >= len(columns) || len(columns[col]) == 0 {
			continue
		}
		path := columns[col]
		parent := el
		for _, name := range path[:len(path)-1] {
			parent = lastChild(parent, name)
		}
		parent.AppendElement(path[len(path)-1]).Text = v.String()
	}
}

func lastChild(n *document.Node, name string) *document.Node {
	if k := len(n.Children); k > 0 && n.Children[k-1].Name == name {
		return n.Children[k-1]
	}
	return n.AppendElement(name)
}
