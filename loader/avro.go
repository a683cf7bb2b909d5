package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	goavro "github.com/linkedin/goavro/v2"

	"github.com/razeghi71/xmlq/document"
)

const avroRecordName = "record"

func loadAvro(filename string) (*document.Node, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	ocfr, err := goavro.NewOCFReader(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read Avro OCF from %s: %w", filename, err)
	}

	// goavro decodes records, maps and union values alike as Go maps, so the
	// walk follows the schema to tell them apart.
	var schema interface{}
	if err := json.Unmarshal([]byte(ocfr.Codec().Schema()), &schema); err != nil {
		return nil, fmt.Errorf("cannot parse Avro schema: %w", err)
	}
	types := avroTypes{}
	types.collect(schema, "")

	doc := document.New()
	for ocfr.Scan() {
		datum, err := ocfr.Read()
		if err != nil {
			return nil, fmt.Errorf("error reading Avro record: %w", err)
		}
		if _, ok := datum.(map[string]interface{}); !ok {
			return nil, fmt.Errorf("unexpected Avro record type %T", datum)
		}
		types.appendValue(doc, avroRecordName, datum, schema)
	}

	if err := ocfr.Err(); err != nil {
		return nil, fmt.Errorf("error reading Avro file: %w", err)
	}
	return doc, nil
}

// avroTypes indexes the named types of a schema by full and short name.
type avroTypes map[string]map[string]interface{}

func (ts avroTypes) collect(t interface{}, namespace string) {
	switch def := t.(type) {
	case []interface{}:
		for _, branch := range def {
			ts.collect(branch, namespace)
		}
	case map[string]interface{}:
		if name, ok := def["name"].(string); ok {
			if ns, ok := def["namespace"].(string); ok {
				namespace = ns
			}
			full := name
			if i := strings.LastIndexByte(name, '.'); i >= 0 {
				namespace, name = name[:i], name[i+1:]
			} else if namespace != "" {
				full = namespace + "." + name
			}
			ts[full] = def
			ts[name] = def
		}
		for _, f := range avroFields(def) {
			ts.collect(f.typ, namespace)
		}
		ts.collect(def["items"], namespace)
		ts.collect(def["values"], namespace)
	}
}

// resolve replaces a reference to a named type with its definition.
func (ts avroTypes) resolve(t interface{}) interface{} {
	if name, ok := t.(string); ok {
		if def, ok := ts[name]; ok {
			return def
		}
	}
	return t
}

// branch picks the union member goavro labelled key: a primitive name,
// "array", "map" or the full name of a named type.
func (ts avroTypes) branch(branches []interface{}, key string) interface{} {
	for _, b := range branches {
		b = ts.resolve(b)
		switch def := b.(type) {
		case string:
			if def == key {
				return def
			}
		case map[string]interface{}:
			if name, _ := def["name"].(string); name != "" && (key == name || strings.HasSuffix(key, "."+name)) {
				return def
			}
			if kind, _ := def["type"].(string); kind == key {
				return def
			}
		}
	}
	return nil
}

func (ts avroTypes) appendValue(parent *document.Node, name string, v, t interface{}) {
	t = ts.resolve(t)
	if branches, ok := t.([]interface{}); ok {
		// Non-null union values decode as {"branch": value}.
		if val, ok := v.(map[string]interface{}); ok && len(val) == 1 {
			for key, inner := range val {
				ts.appendValue(parent, name, inner, ts.branch(branches, key))
			}
			return
		}
		t = nil
	}
	def, _ := t.(map[string]interface{})

	switch val := v.(type) {
	case nil:
		parent.AppendElement(name)
	case []interface{}:
		for _, item := range val {
			ts.appendValue(parent, name, item, def["items"])
		}
	case map[string]interface{}:
		el := parent.AppendElement(name)
		if def["type"] == "record" {
			for _, f := range avroFields(def) {
				if fv, ok := val[f.name]; ok {
					ts.appendValue(el, f.name, fv, f.typ)
				}
			}
			return
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			ts.appendValue(el, k, val[k], def["values"])
		}
	default:
		parent.AppendElement(name).Text = avroScalar(val)
	}
}

type avroField struct {
	name string
	typ  interface{}
}

// avroFields lists a record's fields in schema order.
func avroFields(def map[string]interface{}) []avroField {
	raw, _ := def["fields"].([]interface{})
	fields := make([]avroField, 0, len(raw))
	for _, r := range raw {
		f, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := f["name"].(string)
		fields = append(fields, avroField{name: name, typ: f["type"]})
	}
	return fields
}

func avroScalar(v interface{}) string {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case float32:
		return fmt.Sprintf("%g", val)
	case float64:
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
