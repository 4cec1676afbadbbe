package spec

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source is one input description document. Domain and File feed the output
// file name; Name is the unique key used in reports.
type Source struct {
	Name   string
	Domain string
	File   string
	// Path is the on-disk location. It is read when Tree is nil.
	Path string
	// Tree is pre-decoded content for callers that already hold the document.
	Tree map[string]any
}

var documentExts = map[string]bool{".json": true, ".yaml": true, ".yml": true}

// Discover returns the description documents under root, sorted by Name. A
// root that is a regular file yields a single source.
//
// The domain of a document is the directory holding it, relative to root;
// documents directly under root take root's base name.
func Discover(root string) ([]Source, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, &SpecError{Code: InputError, Message: "input is empty"}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: root, Cause: err}
	}
	st, err := os.Stat(abs)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("stat: %v", err), Location: abs, Cause: err}
	}
	if !st.IsDir() {
		return []Source{newSource(filepath.Base(filepath.Dir(abs)), filepath.Base(abs), abs)}, nil
	}

	var out []Source
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != abs && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !documentExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return err
		}
		domain := filepath.ToSlash(filepath.Dir(rel))
		if domain == "." {
			domain = filepath.Base(abs)
		}
		out = append(out, newSource(domain, filepath.ToSlash(rel), path))
		return nil
	})
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("walk: %v", err), Location: abs, Cause: err}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func newSource(domain, name, path string) Source {
	base := filepath.Base(path)
	return Source{
		Name:   name,
		Domain: domain,
		File:   strings.TrimSuffix(base, filepath.Ext(base)),
		Path:   path,
	}
}

// Load returns the document tree, reading and decoding Path when Tree is unset.
func (s Source) Load() (map[string]any, error) {
	if s.Tree != nil {
		return s.Tree, nil
	}
	if s.Path == "" {
		return nil, &SpecError{Code: InputError, Message: "source has neither content nor path", Location: s.Name}
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file: %v", err), Location: s.Path, Cause: err}
	}
	tree, err := Decode(data)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: err.Error(), Location: s.Path, Cause: err}
	}
	return tree, nil
}

// Decode parses YAML or JSON bytes into a string-keyed generic tree. Non-string
// mapping keys (such as unquoted `200:` response codes) are stringified.
func Decode(data []byte) (map[string]any, error) {
	var root any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if root == nil {
		return nil, fmt.Errorf("parse document: empty document")
	}
	tree, ok := normalizeTree(root).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parse document: expected a mapping at the root, got %T", root)
	}
	return tree, nil
}

func normalizeTree(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = normalizeTree(elem)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[fmt.Sprint(k)] = normalizeTree(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = normalizeTree(elem)
		}
		return out
	default:
		return v
	}
}
