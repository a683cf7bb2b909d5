package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goavro "github.com/linkedin/goavro/v2"
	parquet "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/razeghi71/xmlq/document"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// names returns the element names of n's children.
func names(n *document.Node) []string {
	out := make([]string, len(n.Children))
	for i, c := range n.Children {
		out[i] = c.Name
	}
	return out
}

func TestParseXML(t *testing.T) {
	doc, err := ParseXML(strings.NewReader(`<?xml version="1.0"?>
<library>
  <!-- comment -->
  <book id="1">
    <title>Go</title>
    <price>29.99</price>
  </book>
  <book>
    <title><![CDATA[Clean <Code>]]></title>
    <ns:tag xmlns:ns="urn:x">t</ns:tag>
  </book>
</library>`))
	require.NoError(t, err)

	require.Equal(t, []string{"library"}, names(doc))
	library := doc.Children[0]
	assert.Equal(t, []string{"book", "book"}, names(library))
	assert.Equal(t, "", library.Text)

	first := library.Children[0]
	assert.Equal(t, []string{"title", "price"}, names(first))
	assert.Equal(t, "Go", first.Children[0].Text)
	assert.Equal(t, "29.99", first.Children[1].Text)

	second := library.Children[1]
	assert.Equal(t, "Clean <Code>", second.Children[0].Text)
	assert.Equal(t, "ns:tag", second.Children[1].Name)
}

func TestParseXMLMalformed(t *testing.T) {
	_, err := ParseXML(strings.NewReader(`<a><b></a>`))
	require.Error(t, err)
}

func TestParseJSONKeepsKeyOrder(t *testing.T) {
	doc, err := ParseJSON(strings.NewReader(`{
		"zeta": 1,
		"alpha": {"name": "x", "tags": ["a", "b"]},
		"flag": true,
		"nothing": null
	}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "flag", "nothing"}, names(doc))
	assert.Equal(t, "1", doc.Children[0].Text)
	alpha := doc.Children[1]
	assert.Equal(t, []string{"name", "tags", "tags"}, names(alpha))
	assert.Equal(t, "b", alpha.Children[2].Text)
	assert.Equal(t, "true", doc.Children[2].Text)
	assert.Equal(t, "", doc.Children[3].Text)
}

func TestParseJSONTopLevelArray(t *testing.T) {
	doc, err := ParseJSON(strings.NewReader(`[{"name":"Alice"},{"name":"Bob"}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"item", "item"}, names(doc))
	assert.Equal(t, "Bob", doc.Children[1].Children[0].Text)
}

func TestParseJSONRejectsScalar(t *testing.T) {
	_, err := ParseJSON(strings.NewReader(`42`))
	require.Error(t, err)
}

func TestLoadJSONL(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "users.jsonl", "{\"name\":\"Alice\"}\n\n{\"name\":\"Bob\",\"age\":25}\n")

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"record", "record"}, names(doc))
	assert.Equal(t, []string{"name", "age"}, names(doc.Children[1]))

	bad := writeFile(t, dir, "bad.jsonl", "{\"name\":\"Alice\"}\nnot json\n")
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadAvro(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.avro")
	f, err := os.Create(path)
	require.NoError(t, err)

	w, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W: f,
		Schema: `{"type":"record","name":"User","fields":[
			{"name":"name","type":"string"},
			{"name":"age","type":"int"},
			{"name":"city","type":["null","string"]}
		]}`,
	})
	require.NoError(t, err)
	require.NoError(t, w.Append([]interface{}{
		map[string]interface{}{"name": "Alice", "age": 30, "city": goavro.Union("string", "NY")},
		map[string]interface{}{"name": "Bob", "age": 25, "city": nil},
	}))
	require.NoError(t, f.Close())

	doc, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"record", "record"}, names(doc))

	alice := doc.Children[0]
	assert.Equal(t, []string{"name", "age", "city"}, names(alice))
	assert.Equal(t, "Alice", alice.Children[0].Text)
	assert.Equal(t, "30", alice.Children[1].Text)
	assert.Equal(t, "NY", alice.Children[2].Text)
	assert.Equal(t, "", doc.Children[1].Children[2].Text)
}

func TestLoadAvroNestedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customers.avro")
	f, err := os.Create(path)
	require.NoError(t, err)

	w, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W: f,
		Schema: `{"type":"record","name":"Customer","namespace":"shop","fields":[
			{"name":"address","type":{"type":"record","name":"Address","fields":[{"name":"city","type":"string"}]}},
			{"name":"billing","type":"Address"},
			{"name":"geo","type":["null",{"type":"record","name":"Geo","fields":[{"name":"lat","type":"double"}]}]},
			{"name":"tags","type":{"type":"array","items":"string"}}
		]}`,
	})
	require.NoError(t, err)
	require.NoError(t, w.Append([]interface{}{
		map[string]interface{}{
			"address": map[string]interface{}{"city": "NY"},
			"billing": map[string]interface{}{"city": "LA"},
			"geo":     goavro.Union("shop.Geo", map[string]interface{}{"lat": 1.5}),
			"tags":    []interface{}{"a", "b"},
		},
	}))
	require.NoError(t, f.Close())

	doc, err := Load(path)
	require.NoError(t, err)
	require.Len(t, doc.Children, 1)
	rec := doc.Children[0]
	assert.Equal(t, []string{"address", "billing", "geo", "tags", "tags"}, names(rec))

	// A one-field record keeps its child rather than being read as a union.
	addr := rec.Children[0]
	require.Len(t, addr.Children, 1)
	assert.Equal(t, "city", addr.Children[0].Name)
	assert.Equal(t, "NY", addr.Children[0].Text)
	assert.Equal(t, "", addr.Text)

	assert.Equal(t, "LA", rec.Children[1].Children[0].Text)

	geo := rec.Children[2]
	assert.Equal(t, []string{"lat"}, names(geo))
	assert.Equal(t, "1.5", geo.Children[0].Text)
}

type parquetUser struct {
	Name string `parquet:"name"`
	Age  int32  `parquet:"age"`
}

func TestLoadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.parquet")
	f, err := os.Create(path)
	require.NoError(t, err)

	w := parquet.NewWriter(f)
	for _, u := range []parquetUser{{"Alice", 30}, {"Bob", 25}} {
		require.NoError(t, w.Write(u))
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	doc, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"row", "row"}, names(doc))
	assert.Equal(t, []string{"name", "age"}, names(doc.Children[0]))
	assert.Equal(t, "Bob", doc.Children[1].Children[0].Text)
	assert.Equal(t, "25", doc.Children[1].Children[1].Text)
}

func TestLoadUnsupported(t *testing.T) {
	_, err := Load("notes.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestParseCSV(t *testing.T) {
	doc, err := ParseCSV(strings.NewReader("name, age ,city\nAlice,30,NY\nBob, 25\n"))
	require.NoError(t, err)

	require.Equal(t, []string{"row", "row"}, names(doc))
	alice := doc.Children[0]
	assert.Equal(t, []string{"name", "age", "city"}, names(alice))
	assert.Equal(t, "30", alice.Children[1].Text)

	bob := doc.Children[1]
	assert.Equal(t, []string{"name", "age"}, names(bob))
	assert.Equal(t, "25", bob.Children[1].Text)
}

func TestParseCSVEmpty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("a.xml"))
	assert.True(t, IsSupported("A.XML"))
	assert.True(t, IsSupported("dir/a.parquet"))
	assert.True(t, IsSupported("a.csv"))
	assert.False(t, IsSupported("a.txt"))
	assert.False(t, IsSupported("xml"))
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.xml", "<a/>")
	writeFile(t, dir, "a.xml", "<a/>")
	writeFile(t, dir, "c.json", "{}")
	writeFile(t, dir, "notes.txt", "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	writeFile(t, filepath.Join(dir, "sub"), "d.xml", "<a/>")

	files, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.xml"),
		filepath.Join(dir, "b.xml"),
		filepath.Join(dir, "c.json"),
	}, files)

	files, err = Resolve(filepath.Join(dir, "a.xml"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.xml")}, files)

	files, err = Resolve(filepath.Join(dir, "notes.txt"))
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = Resolve(filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}
