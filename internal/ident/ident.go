// Package ident maps arbitrary schema, parameter and document names onto
// identifiers that are legal in generated source. Every function is total and
// deterministic.
package ident

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Fallbacks used when nothing legal survives sanitizing.
const (
	EmptyTypeName  = "Unnamed"
	EmptyFieldName = "field"
	EmptyFileName  = "unnamed"
)

// RemoveAccents folds accented characters to their base forms.
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// runs returns the ASCII alphanumeric runs of s after accent folding.
func runs(s string) []string {
	s = RemoveAccents(strings.TrimSpace(s))
	parts := nonAlnum.Split(s, -1)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// TypeName returns an upper camel case identifier for raw. Separators are
// dropped and the following letter capitalized; a leading digit gets a "T"
// prefix; names in reserved get a "Type" suffix.
//
// TypeName is idempotent: an alphanumeric name starting with an upper case
// letter is returned unchanged unless it is reserved.
func TypeName(raw string, reserved map[string]bool) string {
	parts := runs(raw)
	if len(parts) == 0 {
		return EmptyTypeName
	}
	var b strings.Builder
	for _, p := range parts {
		// Fold SHOUTING_CASE only when separators were present, so a bare
		// all-caps name like "ID" survives a second pass unchanged.
		if len(parts) > 1 && len(p) > 1 && strings.ToUpper(p) == p {
			p = strings.ToLower(p)
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	out := b.String()
	if out[0] >= '0' && out[0] <= '9' {
		out = "T" + out
	}
	if reserved[out] {
		out += "Type"
	}
	return out
}

// SplitCamelCase splits a camelCase or PascalCase string into words, keeping
// acronyms together ("XMLHttp" -> "XML", "Http").
func SplitCamelCase(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	var current strings.Builder
	rs := []rune(s)
	for i, r := range rs {
		newWord := false
		if i > 0 && isUpper(r) {
			if !isUpper(rs[i-1]) {
				newWord = true
			} else if i < len(rs)-1 && isLower(rs[i+1]) {
				newWord = true
			}
		}
		if newWord && current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }

// Words splits raw on separators and camel case boundaries, lower-casing each
// word.
func Words(raw string) []string {
	var words []string
	for _, p := range runs(raw) {
		for _, w := range SplitCamelCase(p) {
			words = append(words, strings.ToLower(w))
		}
	}
	return words
}

// SnakeName joins Words with underscores and prefixes a leading digit with an
// underscore. It returns "" when raw has no usable characters.
func SnakeName(raw string) string {
	out := strings.Join(Words(raw), "_")
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}

// FileName formats a document or domain name as a file name stem.
func FileName(raw string) string {
	if out := SnakeName(raw); out != "" {
		return out
	}
	return EmptyFileName
}

// FieldName formats a property name as a snake_case field identifier.
func FieldName(raw string) string {
	if out := SnakeName(raw); out != "" {
		return out
	}
	return EmptyFieldName
}

// IsIdentifier reports whether s is a plain ASCII identifier: a letter or
// underscore followed by letters, digits or underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || isUpper(r) || isLower(r):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
