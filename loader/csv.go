package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/razeghi71/xmlq/document"
)

const csvRowName = "row"

// loadCSV turns every record into a row element whose children are named
// after the header. Short records leave the missing columns out.
func loadCSV(filename string) (*document.Node, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	doc, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return doc, nil
}

// ParseCSV reads a CSV stream with a header row.
func ParseCSV(r io.Reader) (*document.Node, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read CSV header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	doc := document.New()
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV row %d: %w", line, err)
		}

		row := doc.AppendElement(csvRowName)
		for i, col := range columns {
			if i >= len(record) || col == "" {
				continue
			}
			row.AppendElement(col).AppendText(strings.TrimSpace(record[i]))
		}
	}
	return doc, nil
}
