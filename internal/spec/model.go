package spec

// Internal Model (IM) for description documents. The parser builds these from a
// generic key/value tree; the emitters lower them into declarations.

// Format identifies the description document dialect from its marker field.
type Format string

const (
	FormatSwagger2 Format = "swagger-2"
	FormatOpenAPI3 Format = "openapi-3"
)

// Document is the root of a parsed description document.
type Document struct {
	Format Format
	// Version is the raw value of the format marker, e.g. "2.0" or "3.0.3".
	Version     string
	Info        *Info
	Paths       map[string]PathItem
	Definitions map[string]Definition
	Parameters  map[string]Parameter
}

type Info struct {
	Title          string
	Version        string
	Description    string
	Summary        string
	TermsOfService string
}

// PathItem maps HTTP methods to operations. A nil operation is a method key
// present with a null value.
type PathItem map[HttpMethod]*Operation

type Operation struct {
	ID          string
	Description string
	Parameters  []ParameterOrRef
	Responses   map[HttpStatus]Response
}

// ParameterOrRef is an inline operation parameter or a $ref to one.
type ParameterOrRef struct {
	Parameter *Parameter
	Ref       *Reference
}

type Response struct {
	Description string
	Schema      *Reference
}

// Reference is an opaque $ref string. It is never dereferenced.
type Reference struct {
	Path string
}

// Definition is a named, reusable schema entry.
type Definition struct {
	Schema      Schema
	Description string
	Required    []string
	AllOf       []Reference
}

// Property is a named member of an ObjectSchema. Schema is authoritative for
// structure; Type is the advisory tag from the "type" field.
type Property struct {
	Schema      Schema
	Description string
	Pattern     string
	Type        *SchemaType
	Ref         string
	ReadOnly    *bool
}

// Parameter is a named request parameter.
type Parameter struct {
	Name         string
	PropertyType *SchemaType
	In           string // query|path|header|body|formData
	Required     *bool
	Description  string
	Schema       *Reference
}

// Extra holds fields a variant does not recognize, kept for forward
// compatibility (vendor extensions and the like).
type Extra map[string]any

// Kind discriminates the active Schema variant.
type Kind int

const (
	KindObject Kind = iota
	KindArray
	KindString
	KindNumber
	KindInteger
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Schema is a closed sum type: the only implementations are the six variants
// below. Switch on the concrete type (or Kind) to discriminate.
type Schema interface {
	Kind() Kind
	Extras() Extra
	isSchema()
}

type ObjectSchema struct {
	Properties map[string]Property
	Extra      Extra
}

type ArraySchema struct {
	Items Schema
	Extra Extra
}

type StringSchema struct{ Extra Extra }

type NumberSchema struct{ Extra Extra }

type IntegerSchema struct{ Extra Extra }

type BooleanSchema struct{ Extra Extra }

func (*ObjectSchema) Kind() Kind  { return KindObject }
func (*ArraySchema) Kind() Kind   { return KindArray }
func (*StringSchema) Kind() Kind  { return KindString }
func (*NumberSchema) Kind() Kind  { return KindNumber }
func (*IntegerSchema) Kind() Kind { return KindInteger }
func (*BooleanSchema) Kind() Kind { return KindBoolean }

func (s *ObjectSchema) Extras() Extra  { return s.Extra }
func (s *ArraySchema) Extras() Extra   { return s.Extra }
func (s *StringSchema) Extras() Extra  { return s.Extra }
func (s *NumberSchema) Extras() Extra  { return s.Extra }
func (s *IntegerSchema) Extras() Extra { return s.Extra }
func (s *BooleanSchema) Extras() Extra { return s.Extra }

func (*ObjectSchema) isSchema()  {}
func (*ArraySchema) isSchema()   {}
func (*StringSchema) isSchema()  {}
func (*NumberSchema) isSchema()  {}
func (*IntegerSchema) isSchema() {}
func (*BooleanSchema) isSchema() {}

// Primitive is the set of scalar shapes the emitters map to target types.
type Primitive int

const (
	PrimitiveString Primitive = iota
	PrimitiveNumber
	PrimitiveInteger
	PrimitiveBoolean
)

func (p Primitive) String() string {
	switch p {
	case PrimitiveString:
		return "string"
	case PrimitiveNumber:
		return "number"
	case PrimitiveInteger:
		return "integer"
	case PrimitiveBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// PrimitiveOf reports the primitive carried by a scalar schema variant.
// Object and Array report false.
func PrimitiveOf(s Schema) (Primitive, bool) {
	switch s.(type) {
	case *StringSchema:
		return PrimitiveString, true
	case *NumberSchema:
		return PrimitiveNumber, true
	case *IntegerSchema:
		return PrimitiveInteger, true
	case *BooleanSchema:
		return PrimitiveBoolean, true
	default:
		return 0, false
	}
}
