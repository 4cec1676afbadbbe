// Package pyemitter renders declarations as a Python package of dataclasses.
// Parameters become typing.NewType aliases so type checkers keep them apart.
package pyemitter

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/mark3labs/swagger2types/internal/emitter"
	"github.com/mark3labs/swagger2types/internal/ident"
	genspec "github.com/mark3labs/swagger2types/internal/spec"
)

const packageDir = "models"

// NewType is imported by every generated module.
var reservedTypes = map[string]bool{"None": true, "True": true, "False": true, "NewType": true}

var keywords = map[string]bool{
	"and": true, "as": true, "assert": true, "async": true, "await": true, "break": true,
	"class": true, "continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true, "if": true,
	"import": true, "in": true, "is": true, "lambda": true, "nonlocal": true, "not": true,
	"or": true, "pass": true, "raise": true, "return": true, "try": true, "while": true,
	"with": true, "yield": true,
}

var funcs = template.FuncMap{
	"docstring": docstring,
	"comment":   comment,
}

var (
	dataclassTmpl = emitter.Template("dataclass", `@dataclass
class {{ .Name }}:
{{ docstring .Description "    " }}{{ if and .Description .Fields }}
{{ end }}{{ range .Fields }}{{ comment .Description "    " }}    {{ .Name }}: {{ .Type }}{{ if .ReadOnly }}  # read-only{{ end }}
{{ else }}{{ if not .Description }}    pass
{{ end }}{{ end }}`, funcs)

	newtypeTmpl = emitter.Template("newtype", `{{ comment .Description "" }}{{ .Name }} = NewType({{ quote .Name }}, {{ .Type }})
`, funcs)

	fileTmpl = emitter.Template("file", `# Code generated by swagger2types from {{ .Source }}. DO NOT EDIT.
{{ docstring .Title "" }}
from dataclasses import dataclass
from typing import NewType
{{ range .Declarations }}

{{ .Source }}{{ end }}`, funcs)

	initTmpl = emitter.Template("__init__.py", `# Code generated by swagger2types. DO NOT EDIT.
{{ if . }}
{{ range . }}from .{{ .Name }} import *  # noqa: F401,F403
{{ end }}{{ end }}`, funcs)

	pyprojectTmpl = emitter.Template("pyproject.toml", `[build-system]
requires = ["setuptools>=68"]
build-backend = "setuptools.build_meta"

[project]
name = {{ quote .Name }}
version = {{ quote .Version }}
requires-python = ">=3.9"

[tool.setuptools]
packages = ["`+packageDir+`"]
`, funcs)
)

// Target is the Python emitter.
type Target struct{}

func New() *Target { return &Target{} }

func (*Target) Name() string         { return "python" }
func (*Target) FileExt() string      { return "py" }
func (*Target) SourceDir() string    { return packageDir }
func (*Target) ManifestPath() string { return packageDir + "/__init__.py" }

func (*Target) TypeName(raw string) string { return ident.TypeName(raw, reservedTypes) }

func (*Target) FieldName(raw string) string {
	name := ident.FieldName(raw)
	if keywords[name] {
		return name + "_"
	}
	return name
}

func (*Target) PrimitiveType(p genspec.Primitive) string {
	switch p {
	case genspec.PrimitiveString:
		return "str"
	case genspec.PrimitiveNumber:
		return "float"
	case genspec.PrimitiveInteger:
		return "int"
	case genspec.PrimitiveBoolean:
		return "bool"
	}
	panic(fmt.Sprintf("pyemitter: unmapped primitive %d", p))
}

func (*Target) RenderStruct(s emitter.Struct) (string, error) {
	return emitter.Execute(dataclassTmpl, s)
}

func (*Target) RenderNewtype(n emitter.Newtype) (string, error) {
	return emitter.Execute(newtypeTmpl, n)
}

func (*Target) RenderFile(f emitter.File) ([]byte, error) {
	out, err := emitter.Execute(fileTmpl, f)
	return []byte(out), err
}

func (*Target) RenderManifest(modules []emitter.Module) ([]byte, error) {
	out, err := emitter.Execute(initTmpl, modules)
	return []byte(out), err
}

func (*Target) Scaffold(p emitter.Project) (map[string][]byte, error) {
	name := strings.Join(ident.Words(p.Name), "-")
	if name == "" {
		name = "generated-types"
	}
	version := p.Version
	if version == "" {
		version = "0.1.0"
	}
	out, err := emitter.Execute(pyprojectTmpl, emitter.Project{Name: name, Version: version})
	if err != nil {
		return nil, err
	}
	return map[string][]byte{"pyproject.toml": []byte(out)}, nil
}

func docstring(s, indent string) string {
	lines := emitter.CommentLines(s)
	if len(lines) == 0 {
		return ""
	}
	for i, line := range lines {
		lines[i] = strings.ReplaceAll(line, `"""`, `\"\"\"`)
	}
	if len(lines) == 1 {
		return fmt.Sprintf("%s\"\"\"%s\"\"\"\n", indent, lines[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\"\"\"%s\n", indent, lines[0])
	for _, line := range lines[1:] {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		fmt.Fprintf(&b, "%s%s\n", indent, line)
	}
	fmt.Fprintf(&b, "%s\"\"\"\n", indent)
	return b.String()
}

func comment(s, indent string) string {
	var b strings.Builder
	for _, line := range emitter.CommentLines(s) {
		if line == "" {
			b.WriteString(indent + "#\n")
			continue
		}
		fmt.Fprintf(&b, "%s# %s\n", indent, line)
	}
	return b.String()
}
