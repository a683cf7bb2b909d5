package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/antchfx/xmlquery"

	"github.com/razeghi71/xmlq/document"
)

func loadXML(filename string) (*document.Node, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	doc, err := ParseXML(f)
	if err != nil {
		return nil, fmt.Errorf("cannot parse XML from %s: %w", filename, err)
	}
	return doc, nil
}

// ParseXML reads an XML document. Element names keep their namespace
// prefix; attributes, comments and processing instructions are dropped.
func ParseXML(r io.Reader) (*document.Node, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, err
	}
	doc := document.New()
	copyXMLChildren(root, doc)
	return doc, nil
}

func copyXMLChildren(src *xmlquery.Node, dst *document.Node) {
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.ElementNode:
			name := c.Data
			if c.Prefix != "" {
				name = c.Prefix + ":" + c.Data
			}
			copyXMLChildren(c, dst.AppendElement(name))
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if dst.IsElement() {
				dst.AppendText(c.Data)
			}
		}
	}
}
