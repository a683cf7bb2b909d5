package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/razeghi71/xmlq/document"
)

var (
	// ErrUnsupportedFormat is returned for files whose extension no loader recognizes.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNotFound is returned by Resolve when the path is neither a file nor a directory.
	ErrNotFound = errors.New("path is neither a file nor a directory")
)

var loaders = map[string]func(string) (*document.Node, error){
	".xml":     loadXML,
	".csv":     loadCSV,
	".json":    loadJSON,
	".jsonl":   loadJSONL,
	".avro":    loadAvro,
	".parquet": loadParquet,
}

// Extensions returns the recognized file extensions, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(loaders))
	for ext := range loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// IsSupported reports whether filename has a recognized extension.
func IsSupported(filename string) bool {
	_, ok := loaders[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Load reads a file and returns its document tree.
func Load(filename string) (*document.Node, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	load, ok := loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(Extensions(), ", "))
	}
	return load(filename)
}

// Resolve expands path into the documents to query: the file itself when it
// is a supported file, or every supported regular file directly inside a
// directory, sorted by name. Subdirectories are not scanned.
func Resolve(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if info.Mode().IsRegular() {
		if !IsSupported(path) {
			return nil, nil
		}
		return []string{path}, nil
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsSupported(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	return files, nil
}
