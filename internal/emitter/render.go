package emitter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Template parses text with the sprig function set plus funcs. Targets build
// their templates once at package init, so a parse error panics.
func Template(name, text string, funcs template.FuncMap) *template.Template {
	fm := sprig.TxtFuncMap()
	for k, v := range funcs {
		fm[k] = v
	}
	return template.Must(template.New(name).Funcs(fm).Parse(text))
}

// Execute renders tmpl with data.
func Execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// CommentLines splits a description into trimmed lines, dropping leading and
// trailing blank lines.
func CommentLines(s string) []string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}
