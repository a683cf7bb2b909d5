package loader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/razeghi71/xmlq/document"
)

// Element names used where JSON has no key to offer.
const (
	jsonItemName   = "item"
	jsonRecordName = "record"
)

func loadJSON(filename string) (*document.Node, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	doc, err := ParseJSON(f)
	if err != nil {
		return nil, fmt.Errorf("cannot parse JSON from %s: %w", filename, err)
	}
	return doc, nil
}

// ParseJSON reads a JSON object or array into a tree. Object keys become
// child elements in document order, array items repeat their key, and items
// of a top-level array are named "item".
func ParseJSON(r io.Reader) (*document.Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	doc := document.New()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch tok {
	case json.Delim('{'):
		err = decodeObject(dec, doc)
	case json.Delim('['):
		err = decodeArray(dec, doc, jsonItemName)
	default:
		return nil, fmt.Errorf("expected object or array, got %v", tok)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func loadJSONL(filename string) (*document.Node, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	doc := document.New()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(line))
		dec.UseNumber()
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", lineNum, err)
		}
		if tok != json.Delim('{') {
			return nil, fmt.Errorf("invalid JSON on line %d: expected object", lineNum)
		}
		if err := decodeObject(dec, doc.AppendElement(jsonRecordName)); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filename, err)
	}
	return doc, nil
}

// decodeObject consumes the members of an object whose '{' was already read.
func decodeObject(dec *json.Decoder, parent *document.Node) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := decodeValue(dec, parent, key); err != nil {
			return err
		}
	}
	_, err := dec.Token() // '}'
	return err
}

// decodeArray consumes the items of an array whose '[' was already read.
func decodeArray(dec *json.Decoder, parent *document.Node, name string) error {
	for dec.More() {
		if err := decodeValue(dec, parent, name); err != nil {
			return err
		}
	}
	_, err := dec.Token() // ']'
	return err
}

func decodeValue(dec *json.Decoder, parent *document.Node, name string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch v := tok.(type) {
	case json.Delim:
		if v == '[' {
			return decodeArray(dec, parent, name)
		}
		return decodeObject(dec, parent.AppendElement(name))
	case string:
		parent.AppendElement(name).Text = v
	case json.Number:
		parent.AppendElement(name).Text = v.String()
	case bool:
		if v {
			parent.AppendElement(name).Text = "true"
		} else {
			parent.AppendElement(name).Text = "false"
		}
	case nil:
		parent.AppendElement(name)
	}
	return nil
}
