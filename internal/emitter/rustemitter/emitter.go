// Package rustemitter renders declarations as a Rust library crate: one module
// per description document under src/, wired together by src/lib.rs.
package rustemitter

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/mark3labs/swagger2types/internal/emitter"
	"github.com/mark3labs/swagger2types/internal/ident"
	genspec "github.com/mark3labs/swagger2types/internal/spec"
)

// reservedTypes are type names Rust rejects or that generated files already
// refer to: String is a field type and the serde derives are imported.
var reservedTypes = map[string]bool{"Self": true, "String": true, "Serialize": true, "Deserialize": true}

var keywords = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true, "crate": true, "else": true,
	"enum": true, "extern": true, "false": true, "fn": true, "for": true, "if": true,
	"impl": true, "in": true, "let": true, "loop": true, "match": true, "mod": true,
	"move": true, "mut": true, "pub": true, "ref": true, "return": true, "self": true,
	"static": true, "struct": true, "super": true, "trait": true, "true": true, "type": true,
	"unsafe": true, "use": true, "where": true, "while": true, "async": true, "await": true,
	"dyn": true, "abstract": true, "become": true, "box": true, "do": true, "final": true,
	"macro": true, "override": true, "priv": true, "typeof": true, "unsized": true,
	"virtual": true, "yield": true, "try": true,
}

// Keywords that cannot be written as raw identifiers.
var nonRawKeywords = map[string]bool{"crate": true, "self": true, "super": true}

var funcs = template.FuncMap{
	"docComment": docComment,
	"innerDoc":   innerDoc,
	"patternDoc": func(pattern, indent string) string { return docComment("Pattern: `"+pattern+"`", indent) },
	"renamed":    func(name, wire string) bool { return strings.TrimPrefix(name, "r#") != wire },
}

var (
	structTmpl = emitter.Template("struct", `{{ docComment .Description "" }}#[derive(Debug, Clone, PartialEq, Serialize, Deserialize)]
pub struct {{ .Name }} {
{{ range .Fields }}{{ docComment .Description "    " }}{{ if .Pattern }}{{ patternDoc .Pattern "    " }}{{ end }}{{ if .ReadOnly }}    /// Read-only.
{{ end }}{{ if renamed .Name .WireName }}    #[serde(rename = {{ quote .WireName }})]
{{ end }}    pub {{ .Name }}: {{ .Type }},
{{ end }}}
`, funcs)

	newtypeTmpl = emitter.Template("newtype", `{{ docComment .Description "" }}{{ if .In }}/// Parameter {{ quote .WireName }} in {{ .In }}{{ if .Required }} (required){{ end }}.
{{ end }}#[derive(Debug, Clone, PartialEq, Serialize, Deserialize)]
#[serde(transparent)]
pub struct {{ .Name }}(pub {{ .Type }});
`, funcs)

	fileTmpl = emitter.Template("file", `// Code generated by swagger2types from {{ .Source }}. DO NOT EDIT.
{{ innerDoc .Title }}
use serde::{Deserialize, Serialize};
{{ range .Declarations }}
{{ .Source }}{{ end }}`, funcs)

	manifestTmpl = emitter.Template("lib.rs", `// Code generated by swagger2types. DO NOT EDIT.
{{ if . }}
{{ range . }}pub mod {{ .Name }};
{{ end }}{{ end }}`, funcs)

	cargoTmpl = emitter.Template("Cargo.toml", `[package]
name = {{ quote .Name }}
version = {{ quote .Version }}
edition = "2021"

[dependencies]
serde = { version = "1", features = ["derive"] }
`, funcs)
)

// Target is the Rust emitter.
type Target struct{}

func New() *Target { return &Target{} }

func (*Target) Name() string         { return "rust" }
func (*Target) FileExt() string      { return "rs" }
func (*Target) SourceDir() string    { return "src" }
func (*Target) ManifestPath() string { return "src/lib.rs" }

func (*Target) TypeName(raw string) string { return ident.TypeName(raw, reservedTypes) }

// FieldName returns a snake_case field; keywords become raw identifiers.
func (*Target) FieldName(raw string) string {
	name := ident.FieldName(raw)
	switch {
	case nonRawKeywords[name]:
		return name + "_"
	case keywords[name]:
		return "r#" + name
	default:
		return name
	}
}

func (*Target) PrimitiveType(p genspec.Primitive) string {
	switch p {
	case genspec.PrimitiveString:
		return "String"
	case genspec.PrimitiveNumber:
		return "f32"
	case genspec.PrimitiveInteger:
		return "i32"
	case genspec.PrimitiveBoolean:
		return "bool"
	}
	panic(fmt.Sprintf("rustemitter: unmapped primitive %d", p))
}

func (*Target) RenderStruct(s emitter.Struct) (string, error) { return emitter.Execute(structTmpl, s) }

func (*Target) RenderNewtype(n emitter.Newtype) (string, error) {
	return emitter.Execute(newtypeTmpl, n)
}

func (*Target) RenderFile(f emitter.File) ([]byte, error) {
	out, err := emitter.Execute(fileTmpl, f)
	return []byte(out), err
}

func (*Target) RenderManifest(modules []emitter.Module) ([]byte, error) {
	out, err := emitter.Execute(manifestTmpl, modules)
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
	cargo, err := emitter.Execute(cargoTmpl, emitter.Project{Name: name, Version: version})
	if err != nil {
		return nil, err
	}
	return map[string][]byte{"Cargo.toml": []byte(cargo)}, nil
}

func innerDoc(s string) string {
	var b strings.Builder
	for _, line := range emitter.CommentLines(s) {
		if line == "" {
			b.WriteString("//!\n")
			continue
		}
		b.WriteString("//! " + line + "\n")
	}
	return b.String()
}

func docComment(s, indent string) string {
	var b strings.Builder
	for _, line := range emitter.CommentLines(s) {
		b.WriteString(indent)
		if line == "" {
			b.WriteString("///\n")
			continue
		}
		b.WriteString("/// ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
