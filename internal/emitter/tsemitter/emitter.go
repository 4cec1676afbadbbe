// Package tsemitter renders declarations as a TypeScript npm package. Objects
// become interfaces, parameters become branded primitive types, and
// src/index.ts re-exports every generated module.
package tsemitter

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/mark3labs/swagger2types/internal/emitter"
	"github.com/mark3labs/swagger2types/internal/ident"
	genspec "github.com/mark3labs/swagger2types/internal/spec"
)

var funcs = template.FuncMap{
	"docComment":  docComment,
	"lineComment": lineComment,
}

var (
	interfaceTmpl = emitter.Template("interface", `{{ docComment .Description "" }}export interface {{ .Name }} {
{{ range .Fields }}{{ docComment .Description "  " }}  {{ if .ReadOnly }}readonly {{ end }}{{ .Name }}: {{ .Type }};
{{ end }}}
`, funcs)

	brandTmpl = emitter.Template("brand", `{{ docComment .Description "" }}export type {{ .Name }} = {{ .Type }} & { readonly __brand: {{ quote .Name }} };
`, funcs)

	fileTmpl = emitter.Template("file", `// Code generated by swagger2types from {{ .Source }}. DO NOT EDIT.
{{ lineComment .Title }}{{ range .Declarations }}
{{ .Source }}{{ end }}`, funcs)

	indexTmpl = emitter.Template("index.ts", `// Code generated by swagger2types. DO NOT EDIT.
{{ if . }}
{{ range . }}export * from "./{{ .Name }}";
{{ end }}{{ else }}
export {};
{{ end }}`, funcs)

	tsconfigTmpl = emitter.Template("tsconfig.json", `{
  "compilerOptions": {
    "target": "ES2020",
    "module": "commonjs",
    "declaration": true,
    "strict": true,
    "outDir": "dist",
    "rootDir": "src"
  },
  "include": ["src"]
}
`, funcs)
)

// Target is the TypeScript emitter.
type Target struct{}

func New() *Target { return &Target{} }

func (*Target) Name() string         { return "typescript" }
func (*Target) FileExt() string      { return "ts" }
func (*Target) SourceDir() string    { return "src" }
func (*Target) ManifestPath() string { return "src/index.ts" }

func (*Target) TypeName(raw string) string { return ident.TypeName(raw, nil) }

// FieldName keeps the wire name, quoting it when it is not an identifier.
func (*Target) FieldName(raw string) string {
	if ident.IsIdentifier(strings.ReplaceAll(raw, "$", "_")) {
		return raw
	}
	quoted, _ := json.Marshal(raw)
	return string(quoted)
}

func (*Target) PrimitiveType(p genspec.Primitive) string {
	switch p {
	case genspec.PrimitiveString:
		return "string"
	case genspec.PrimitiveNumber, genspec.PrimitiveInteger:
		return "number"
	case genspec.PrimitiveBoolean:
		return "boolean"
	}
	panic(fmt.Sprintf("tsemitter: unmapped primitive %d", p))
}

func (*Target) RenderStruct(s emitter.Struct) (string, error) {
	return emitter.Execute(interfaceTmpl, s)
}

func (*Target) RenderNewtype(n emitter.Newtype) (string, error) {
	return emitter.Execute(brandTmpl, n)
}

func (*Target) RenderFile(f emitter.File) ([]byte, error) {
	out, err := emitter.Execute(fileTmpl, f)
	return []byte(out), err
}

func (*Target) RenderManifest(modules []emitter.Module) ([]byte, error) {
	out, err := emitter.Execute(indexTmpl, modules)
	return []byte(out), err
}

type packageJSON struct {
	Name    string            `json:"name"`
	Version string            `json:"version"`
	Private bool              `json:"private"`
	Main    string            `json:"main"`
	Types   string            `json:"types"`
	Scripts map[string]string `json:"scripts"`
	DevDeps map[string]string `json:"devDependencies"`
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
	pkg, err := json.MarshalIndent(packageJSON{
		Name:    name,
		Version: version,
		Private: true,
		Main:    "dist/index.js",
		Types:   "dist/index.d.ts",
		Scripts: map[string]string{"build": "tsc -p ."},
		DevDeps: map[string]string{"typescript": "^5.4.0"},
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal package.json: %w", err)
	}
	tsconfig, err := emitter.Execute(tsconfigTmpl, nil)
	if err != nil {
		return nil, err
	}
	return map[string][]byte{
		"package.json":  append(pkg, '\n'),
		"tsconfig.json": []byte(tsconfig),
	}, nil
}

func docComment(s, indent string) string {
	lines := emitter.CommentLines(s)
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	if len(lines) == 1 {
		fmt.Fprintf(&b, "%s/** %s */\n", indent, escapeComment(lines[0]))
		return b.String()
	}
	b.WriteString(indent + "/**\n")
	for _, line := range lines {
		if line == "" {
			b.WriteString(indent + " *\n")
			continue
		}
		fmt.Fprintf(&b, "%s * %s\n", indent, escapeComment(line))
	}
	b.WriteString(indent + " */\n")
	return b.String()
}

func lineComment(s string) string {
	var b strings.Builder
	for _, line := range emitter.CommentLines(s) {
		if line == "" {
			b.WriteString("//\n")
			continue
		}
		b.WriteString("// " + line + "\n")
	}
	return b.String()
}

func escapeComment(s string) string { return strings.ReplaceAll(s, "*/", "*\\/") }
