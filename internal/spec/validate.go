package spec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
)

// Validate runs a document tree through kin-openapi. Swagger 2 documents are
// decoded as openapi2 and converted to v3 before validating; OpenAPI 3
// documents go through the openapi3 loader. The parser itself never depends
// on this pass.
func Validate(ctx context.Context, name string, tree map[string]any) error {
	data, err := json.Marshal(validationTree(tree))
	if err != nil {
		return &SpecError{Code: ValidationError, Message: fmt.Sprintf("encode document: %v", err), Location: name, Cause: err}
	}

	var doc *openapi3.T
	switch {
	case tree["swagger"] != nil:
		var v2 openapi2.T
		if err := json.Unmarshal(data, &v2); err != nil {
			return mapValidateErr(err, name)
		}
		doc, err = openapi2conv.ToV3(&v2)
		if err != nil {
			return mapValidateErr(err, name)
		}
		// ToV3 drops an empty paths object, which v3 validation requires.
		if doc.Paths == nil {
			doc.Paths = openapi3.Paths{}
		}
	case tree["openapi"] != nil:
		loader := openapi3.NewLoader()
		loader.IsExternalRefsAllowed = false
		doc, err = loader.LoadFromData(data)
		if err != nil {
			return mapValidateErr(err, name)
		}
	default:
		return &SpecError{Code: ValidationError, Message: "missing format marker", Location: name}
	}

	if err := doc.Validate(ctx); err != nil && !canProceedDespiteValidation(err) {
		return mapValidateErr(err, name)
	}
	return nil
}

// validationTree returns a shallow copy of tree whose format marker and
// info.version are strings. Unquoted YAML such as `swagger: 2.0` decodes as a
// number, which kin-openapi rejects.
func validationTree(tree map[string]any) map[string]any {
	out := make(map[string]any, len(tree))
	for k, v := range tree {
		out[k] = v
	}
	for _, key := range []string{"swagger", "openapi"} {
		if v, ok := out[key]; ok {
			if s, ok := markerString(v); ok {
				out[key] = s
			}
		}
	}
	if info, ok := asMap(out["info"]); ok {
		if v, ok := info["version"]; ok {
			if s, ok := markerString(v); ok {
				copied := make(map[string]any, len(info))
				for k, iv := range info {
					copied[k] = iv
				}
				copied["version"] = s
				out["info"] = copied
			}
		}
	}
	return out
}

func mapValidateErr(err error, location string) error {
	return &SpecError{Code: ValidationError, Message: err.Error(), Location: location, Pointer: extractJSONPointer(err), Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'\"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	// Unwrap MultiError and take the first for brevity.
	if me, ok := err.(openapi3.MultiError); ok {
		if len(me) > 0 {
			return extractJSONPointer(me[0])
		}
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	if m := jsonPtrRe.FindString(err.Error()); m != "" {
		return m
	}
	return ""
}

// canProceedDespiteValidation tolerates unresolved $ref entries; references
// are recorded as opaque strings and never followed.
func canProceedDespiteValidation(err error) bool {
	if err == nil {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unresolved ref") || strings.Contains(s, "found unresolved ref")
}
