package spec

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ErrUnrecognizedEnumValue matches every UnrecognizedEnumValueError via errors.Is.
var ErrUnrecognizedEnumValue = errors.New("unrecognized enum value")

// UnrecognizedEnumValueError names the raw input and the accepted spellings.
type UnrecognizedEnumValueError struct {
	Kind     string // "http method", "schema type", "response status"
	Value    string
	Accepted []string
}

func (e *UnrecognizedEnumValueError) Error() string {
	return fmt.Sprintf("unrecognized %s %q (accepted: %s)", e.Kind, e.Value, strings.Join(e.Accepted, ", "))
}

func (e *UnrecognizedEnumValueError) Is(target error) bool {
	return target == ErrUnrecognizedEnumValue
}

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
	TRACE   HttpMethod = "trace"
)

var httpMethods = []HttpMethod{GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS, TRACE}

// ParseHttpMethod decodes a method name case-insensitively.
func ParseHttpMethod(raw string) (HttpMethod, error) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	for _, m := range httpMethods {
		if string(m) == lower {
			return m, nil
		}
	}
	accepted := make([]string, len(httpMethods))
	for i, m := range httpMethods {
		accepted[i] = string(m)
	}
	return "", &UnrecognizedEnumValueError{Kind: "http method", Value: raw, Accepted: accepted}
}

// String returns the upper-case wire spelling, e.g. "GET".
func (m HttpMethod) String() string { return strings.ToUpper(string(m)) }

// SchemaType is the value of a schema "type" field.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
)

var schemaTypes = []SchemaType{TypeObject, TypeArray, TypeString, TypeNumber, TypeInteger, TypeBoolean}

// ParseSchemaType decodes a "type" value case-insensitively.
func ParseSchemaType(raw string) (SchemaType, error) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	for _, t := range schemaTypes {
		if string(t) == lower {
			return t, nil
		}
	}
	accepted := make([]string, len(schemaTypes))
	for i, t := range schemaTypes {
		accepted[i] = string(t)
	}
	return "", &UnrecognizedEnumValueError{Kind: "schema type", Value: raw, Accepted: accepted}
}

// Primitive reports the scalar primitive for string/number/integer/boolean.
func (t SchemaType) Primitive() (Primitive, bool) {
	switch t {
	case TypeString:
		return PrimitiveString, true
	case TypeNumber:
		return PrimitiveNumber, true
	case TypeInteger:
		return PrimitiveInteger, true
	case TypeBoolean:
		return PrimitiveBoolean, true
	default:
		return 0, false
	}
}

// HttpStatus is a response key: a registered HTTP status code or "default".
type HttpStatus string

const StatusDefault HttpStatus = "default"

// ParseHttpStatus accepts "default" (any case) and status codes that have a
// registered reason phrase.
func ParseHttpStatus(raw string) (HttpStatus, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, string(StatusDefault)) {
		return StatusDefault, nil
	}
	if code, err := strconv.Atoi(trimmed); err == nil && len(trimmed) == 3 && http.StatusText(code) != "" {
		return HttpStatus(trimmed), nil
	}
	return "", &UnrecognizedEnumValueError{Kind: "response status", Value: raw, Accepted: acceptedStatuses()}
}

// ParseHttpStatusRange accepts the OpenAPI 3 wildcard keys 1XX through 5XX in
// any case and returns them upper-cased.
func ParseHttpStatusRange(raw string) (HttpStatus, error) {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if len(upper) == 3 && upper[0] >= '1' && upper[0] <= '5' && upper[1:] == "XX" {
		return HttpStatus(upper), nil
	}
	return "", &UnrecognizedEnumValueError{Kind: "response status range", Value: raw, Accepted: []string{"1XX", "2XX", "3XX", "4XX", "5XX"}}
}

func acceptedStatuses() []string {
	out := []string{string(StatusDefault)}
	for code := 100; code <= 599; code++ {
		if http.StatusText(code) != "" {
			out = append(out, strconv.Itoa(code))
		}
	}
	return out
}
