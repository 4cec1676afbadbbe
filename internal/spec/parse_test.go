package spec

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const petstore = `swagger: "2.0"
info:
  title: Petstore
  version: 1.0.0
  description: Sample pets.
paths:
  /pets/{petId}:
    parameters:
      - $ref: "#/parameters/petId"
    get:
      operationId: getPet
      parameters:
        - $ref: "#/parameters/petId"
        - name: verbose
          in: query
          type: boolean
      responses:
        200:
          description: ok
          schema:
            $ref: "#/definitions/Pet"
        default:
          description: error
    x-internal: true
parameters:
  petId:
    name: petId
    in: path
    required: true
    type: string
definitions:
  Pet:
    type: object
    description: A pet.
    required: [name]
    x-go-name: PetModel
    properties:
      name:
        type: string
        pattern: "^[a-z]+$"
      id:
        type: integer
        readOnly: true
      owner:
        $ref: "#/definitions/User"
      tags:
        type: array
        items:
          type: string
  Names:
    type: array
    items:
      type: string
  Anything:
    x-note: free form
`

func mustDecode(t *testing.T, src string) map[string]any {
	t.Helper()
	tree, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return tree
}

func TestParse_Petstore(t *testing.T) {
	t.Parallel()
	doc, err := Parse("petstore.yaml", mustDecode(t, petstore))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Format != FormatSwagger2 || doc.Version != "2.0" {
		t.Fatalf("unexpected format: %s %s", doc.Format, doc.Version)
	}
	if doc.Info == nil || doc.Info.Title != "Petstore" || doc.Info.Version != "1.0.0" {
		t.Fatalf("unexpected info: %+v", doc.Info)
	}

	item, ok := doc.Paths["/pets/{petId}"]
	if !ok || len(item) != 1 {
		t.Fatalf("expected one operation under /pets/{petId}, got %+v", item)
	}
	op := item[GET]
	if op == nil || op.ID != "getPet" {
		t.Fatalf("unexpected operation: %+v", op)
	}
	if len(op.Parameters) != 2 || op.Parameters[0].Ref == nil || op.Parameters[1].Parameter == nil {
		t.Fatalf("unexpected parameters: %+v", op.Parameters)
	}
	if op.Parameters[0].Ref.Path != "#/parameters/petId" {
		t.Fatalf("unexpected parameter ref: %s", op.Parameters[0].Ref.Path)
	}
	resp, ok := op.Responses["200"]
	if !ok || resp.Schema == nil || resp.Schema.Path != "#/definitions/Pet" {
		t.Fatalf("unexpected 200 response: %+v", resp)
	}
	if _, ok := op.Responses[StatusDefault]; !ok {
		t.Fatalf("expected a default response")
	}

	param := doc.Parameters["petId"]
	if param.PropertyType == nil || *param.PropertyType != TypeString || param.Required == nil || !*param.Required || param.In != "path" {
		t.Fatalf("unexpected parameter: %+v", param)
	}

	pet := doc.Definitions["Pet"]
	obj, ok := pet.Schema.(*ObjectSchema)
	if !ok {
		t.Fatalf("Pet should be an object, got %T", pet.Schema)
	}
	if pet.Description != "A pet." || len(pet.Required) != 1 || pet.Required[0] != "name" {
		t.Fatalf("unexpected definition metadata: %+v", pet)
	}
	if len(obj.Extra) != 1 || obj.Extra["x-go-name"] != "PetModel" {
		t.Fatalf("open bag should hold only unknown keys, got %v", obj.Extra)
	}
	if len(obj.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(obj.Properties))
	}
	name := obj.Properties["name"]
	if _, ok := name.Schema.(*StringSchema); !ok || name.Pattern != "^[a-z]+$" {
		t.Fatalf("unexpected name property: %+v", name)
	}
	if name.Schema.Extras() != nil {
		t.Fatalf("pattern is consumed by the property, got bag %v", name.Schema.Extras())
	}
	id := obj.Properties["id"]
	if id.ReadOnly == nil || !*id.ReadOnly || id.Type == nil || *id.Type != TypeInteger {
		t.Fatalf("unexpected id property: %+v", id)
	}
	owner := obj.Properties["owner"]
	if owner.Ref != "#/definitions/User" || owner.Schema.Kind() != KindObject {
		t.Fatalf("unexpected owner property: %+v", owner)
	}
	tags, ok := obj.Properties["tags"].Schema.(*ArraySchema)
	if !ok || tags.Items.Kind() != KindString {
		t.Fatalf("unexpected tags property: %+v", obj.Properties["tags"])
	}

	if doc.Definitions["Names"].Schema.Kind() != KindArray {
		t.Fatalf("Names should be an array")
	}
	anything, ok := doc.Definitions["Anything"].Schema.(*ObjectSchema)
	if !ok || len(anything.Properties) != 0 || anything.Extra["x-note"] != "free form" {
		t.Fatalf("unexpected fallback object: %+v", doc.Definitions["Anything"].Schema)
	}
}

func TestParse_SchemaPrecedence(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		node map[string]any
		want Kind
	}{
		{"items beats properties", map[string]any{"items": map[string]any{"type": "string"}, "properties": map[string]any{}}, KindArray},
		{"items beats primitive type", map[string]any{"type": "string", "items": map[string]any{}}, KindArray},
		{"empty properties is an object", map[string]any{"properties": map[string]any{}}, KindObject},
		{"properties beats primitive type", map[string]any{"type": "integer", "properties": map[string]any{}}, KindObject},
		{"number", map[string]any{"type": "number"}, KindNumber},
		{"boolean", map[string]any{"type": "BOOLEAN"}, KindBoolean},
		{"array without items", map[string]any{"type": "array"}, KindObject},
		{"no type", map[string]any{"format": "uuid"}, KindObject},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := &parser{name: "test"}
			s, err := p.schema(tt.node, "/x", nil)
			if err != nil {
				t.Fatalf("schema: %v", err)
			}
			if s.Kind() != tt.want {
				t.Fatalf("got %s, want %s", s.Kind(), tt.want)
			}
		})
	}
}

func TestParse_ExtraExcludesKnownKeys(t *testing.T) {
	t.Parallel()
	p := &parser{name: "test"}
	s, err := p.schema(map[string]any{"type": "string", "format": "date", "description": "d"}, "/x", definitionKeys)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	bag := s.Extras()
	if len(bag) != 1 || bag["format"] != "date" {
		t.Fatalf("unexpected bag: %v", bag)
	}
}

func TestParse_EnumErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		src     string
		pointer string
	}{
		{
			name:    "unknown method",
			src:     "swagger: \"2.0\"\npaths:\n  /pets:\n    FETCH:\n      responses: {}\n",
			pointer: "#/paths/~1pets/FETCH",
		},
		{
			name:    "unknown schema type",
			src:     "swagger: \"2.0\"\ndefinitions:\n  T:\n    type: tuple\n",
			pointer: "#/definitions/T/type",
		},
		{
			name:    "unknown status",
			src:     "swagger: \"2.0\"\npaths:\n  /pets:\n    get:\n      responses:\n        299:\n          description: nope\n",
			pointer: "#/paths/~1pets/get/responses/299",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse("doc.yaml", mustDecode(t, tt.src))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, ErrUnrecognizedEnumValue) {
				t.Fatalf("expected unrecognized enum value, got %v", err)
			}
			var se *SpecError
			if !errors.As(err, &se) || se.Code != EnumError {
				t.Fatalf("expected EnumError, got %v (%T)", err, err)
			}
			if se.Pointer != tt.pointer {
				t.Fatalf("pointer = %q, want %q", se.Pointer, tt.pointer)
			}
		})
	}
}

func TestParse_CaseInsensitiveEnums(t *testing.T) {
	t.Parallel()
	src := "swagger: \"2.0\"\npaths:\n  /pets:\n    Get:\n      responses:\n        DEFAULT: {}\ndefinitions:\n  N:\n    type: Integer\n"
	doc, err := Parse("doc.yaml", mustDecode(t, src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	op := doc.Paths["/pets"][GET]
	if op == nil {
		t.Fatalf("expected GET operation")
	}
	if _, ok := op.Responses[StatusDefault]; !ok {
		t.Fatalf("expected default response")
	}
	if doc.Definitions["N"].Schema.Kind() != KindInteger {
		t.Fatalf("expected integer definition")
	}
}

func TestParse_StructureErrors(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"missing marker":       "info:\n  title: x\n  version: \"1\"\n",
		"unsupported marker":   "swagger: \"1.2\"\n",
		"openapi 3.1 marker":   "openapi: 3.1.0\n",
		"info without title":   "swagger: \"2.0\"\ninfo:\n  version: \"1\"\n",
		"definitions not map":  "swagger: \"2.0\"\ndefinitions: [a, b]\n",
		"required not boolean": "swagger: \"2.0\"\nparameters:\n  p:\n    required: maybe\n",
	}
	for name, src := range tests {
		src := src
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse("doc.yaml", mustDecode(t, src))
			var se *SpecError
			if !errors.As(err, &se) || se.Code != StructureError {
				t.Fatalf("expected StructureError, got %v (%T)", err, err)
			}
			if !strings.HasPrefix(se.Error(), "doc.yaml: ") {
				t.Fatalf("error should name the document: %v", se)
			}
		})
	}
}

func TestParse_UnquotedSwaggerMarker(t *testing.T) {
	t.Parallel()
	doc, err := Parse("doc.yaml", mustDecode(t, "swagger: 2.0\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Version != "2.0" || len(doc.Definitions) != 0 || len(doc.Parameters) != 0 {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestValidate_UnquotedMarkers(t *testing.T) {
	t.Parallel()
	docs := map[string]string{
		"swagger 2.0": `swagger: 2.0
info:
  title: Pets
  version: 1.0
paths: {}
definitions:
  Pet:
    type: object
    properties:
      name:
        type: string
`,
		"openapi 3.0": `openapi: 3.0
info:
  title: Pets
  version: 2
paths: {}
`,
	}
	for name, src := range docs {
		tree := mustDecode(t, src)
		if _, err := Parse(name, tree); err != nil {
			t.Fatalf("%s: parse: %v", name, err)
		}
		if err := Validate(context.Background(), name, tree); err != nil {
			t.Fatalf("%s: an unquoted marker should validate, got %v", name, err)
		}
		if _, ok := tree["swagger"].(string); ok {
			t.Fatalf("%s: Validate must not rewrite the caller's tree", name)
		}
	}
}

func TestParse_OpenAPI3Components(t *testing.T) {
	t.Parallel()
	src := `openapi: 3.0.3
info:
  title: Shop
  version: "2"
paths:
  /orders:
    get:
      responses:
        2XX:
          description: ok
        4xx:
          description: client error
        default:
          description: other
components:
  schemas:
    Order:
      type: object
      properties:
        total:
          type: number
  parameters:
    limit:
      name: limit
      in: query
      schema:
        type: integer
    cursor:
      name: cursor
      in: query
      schema:
        $ref: "#/components/schemas/Cursor"
`
	doc, err := Parse("shop.yaml", mustDecode(t, src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Format != FormatOpenAPI3 {
		t.Fatalf("unexpected format %s", doc.Format)
	}
	if _, ok := doc.Definitions["Order"].Schema.(*ObjectSchema); !ok {
		t.Fatalf("expected Order object")
	}
	limit := doc.Parameters["limit"]
	if limit.PropertyType == nil || *limit.PropertyType != TypeInteger {
		t.Fatalf("inline schema type should become the property type: %+v", limit)
	}
	cursor := doc.Parameters["cursor"]
	if cursor.PropertyType != nil || cursor.Schema == nil || cursor.Schema.Path != "#/components/schemas/Cursor" {
		t.Fatalf("unexpected cursor parameter: %+v", cursor)
	}
	responses := doc.Paths["/orders"][GET].Responses
	for _, status := range []HttpStatus{"2XX", "4XX", StatusDefault} {
		if _, ok := responses[status]; !ok {
			t.Errorf("missing response %q in %v", status, responses)
		}
	}
}

func TestParse_StatusRangesOnlyInOpenAPI3(t *testing.T) {
	t.Parallel()
	src := "swagger: \"2.0\"\npaths:\n  /x:\n    get:\n      responses:\n        2XX:\n          description: ok\n"
	_, err := Parse("doc.yaml", mustDecode(t, src))
	if !errors.Is(err, ErrUnrecognizedEnumValue) {
		t.Fatalf("swagger 2 should reject range keys, got %v", err)
	}

	src = "openapi: 3.0.0\npaths:\n  /x:\n    get:\n      responses:\n        6XX:\n          description: ok\n"
	if _, err := Parse("doc.yaml", mustDecode(t, src)); !errors.Is(err, ErrUnrecognizedEnumValue) {
		t.Fatalf("6XX is not a status range, got %v", err)
	}
}

func TestParse_AllOfKeepsReferences(t *testing.T) {
	t.Parallel()
	src := "swagger: \"2.0\"\ndefinitions:\n  Dog:\n    allOf:\n      - $ref: \"#/definitions/Pet\"\n      - type: object\n        properties:\n          bark: {type: boolean}\n"
	doc, err := Parse("doc.yaml", mustDecode(t, src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	dog := doc.Definitions["Dog"]
	if len(dog.AllOf) != 1 || dog.AllOf[0].Path != "#/definitions/Pet" {
		t.Fatalf("unexpected allOf: %+v", dog.AllOf)
	}
	if obj, ok := dog.Schema.(*ObjectSchema); !ok || obj.Extra != nil {
		t.Fatalf("allOf is consumed by the definition: %+v", dog.Schema)
	}
}
