package engine

import (
	"slices"
	"strings"

	"github.com/go-kit/log/level"

	"github.com/razeghi71/xmlq/ast"
	"github.com/razeghi71/xmlq/document"
)

// DetectAmbiguous lists the SELECT and WHERE fields that match more than one
// location in the first document of q's source. Only that one document is
// sampled; the result is advisory and does not change execution.
func (e *Engine) DetectAmbiguous(q *ast.Query) []string {
	files := e.resolveFiles(e.logger, q.FromPath)
	if len(files) == 0 {
		return nil
	}
	doc, err := e.load(files[0])
	if err != nil {
		level.Warn(e.logger).Log("msg", "cannot load sample document", "path", files[0], "err", err)
		return nil
	}
	fields := AmbiguousFields(doc, q)
	for _, f := range fields {
		level.Debug(e.logger).Log("msg", "ambiguous field", "field", f, "sample", files[0],
			"locations", strings.Join(matchLocations(doc, strings.Split(f, ".")), ","))
	}
	return fields
}

// matchLocations returns the distinct absolute paths matched by components.
func matchLocations(doc *document.Node, components []string) []string {
	var out []string
	for _, n := range FindByPartialPath(doc, components) {
		if p := n.Path(); !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// AmbiguousFields checks q's fields against doc. The output is dot-joined,
// deduplicated and in order of discovery: SELECT fields first, then WHERE
// conditions left to right.
func AmbiguousFields(doc *document.Node, q *ast.Query) []string {
	var out []string
	for _, f := range q.Select {
		out = appendIfAmbiguous(doc, f, out)
	}
	for _, c := range ast.Conditions(q.Where, nil) {
		out = appendIfAmbiguous(doc, c.Field, out)
	}
	return out
}

// appendIfAmbiguous adds f to acc when it has two or more components and
// more than one match. FILE_NAME and single names are never ambiguous.
func appendIfAmbiguous(doc *document.Node, f ast.FieldPath, acc []string) []string {
	if f.FileName || len(f.Components) < 2 {
		return acc
	}
	if CountMatchingPaths(doc, f.Components) <= 1 {
		return acc
	}
	name := f.String()
	if slices.Contains(acc, name) {
		return acc
	}
	return append(acc, name)
}
