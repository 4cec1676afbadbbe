// Package emitter lowers parsed description documents into named type
// declarations for a target language. Targets live in sub-packages and plug in
// through the Target interface; this package owns eligibility, naming and
// ordering so every target behaves the same way.
package emitter

import (
	"fmt"
	"sort"

	genspec "github.com/mark3labs/swagger2types/internal/spec"
)

// Target renders declarations, files, manifests and project skeletons for one
// language.
type Target interface {
	// Name is the language key used on the command line, e.g. "rust".
	Name() string
	// FileExt is the extension for generated source files, without the dot.
	FileExt() string
	// SourceDir is the directory, relative to the project root, holding
	// generated source files.
	SourceDir() string
	// ManifestPath is the aggregation file, relative to the project root.
	ManifestPath() string

	TypeName(raw string) string
	FieldName(raw string) string
	// PrimitiveType maps a schema primitive to the target type. It must be
	// total over the four primitives.
	PrimitiveType(p genspec.Primitive) string

	RenderStruct(s Struct) (string, error)
	RenderNewtype(n Newtype) (string, error)
	RenderFile(f File) ([]byte, error)
	RenderManifest(modules []Module) ([]byte, error)
	// Scaffold returns the project descriptor files keyed by relative path.
	Scaffold(p Project) (map[string][]byte, error)
}

// Field is one struct member.
type Field struct {
	Name        string // target identifier
	WireName    string // property name as written in the document
	Type        string
	Description string
	Pattern     string
	ReadOnly    bool
}

// Struct is the declaration for an object definition.
type Struct struct {
	Name        string
	WireName    string
	Description string
	Fields      []Field
}

// Newtype is a single-field wrapper declared for a primitive parameter.
type Newtype struct {
	Name        string
	WireName    string
	Description string
	Type        string
	In          string
	Required    bool
}

// Declaration is one rendered, named type.
type Declaration struct {
	Name   string // sanitized identifier; the declaration key
	Raw    string // definition or parameter name in the document
	Origin Origin
	Source string
}

type Origin string

const (
	FromDefinition Origin = "definition"
	FromParameter  Origin = "parameter"
)

// File is the content of one generated source file.
type File struct {
	Source       string // input document name
	Title        string
	Declarations []Declaration
}

// Module is one manifest entry. Key is the input file name; Name is the
// generated module (file stem).
type Module struct {
	Key  string
	Name string
}

// Project carries the values a target needs to scaffold a project root.
type Project struct {
	Name    string
	Version string
}

// Skip records an entry that was recognized but not lowered.
type Skip struct {
	Name   string
	Origin Origin
	Reason string
	// Silent skips are not worth an operator-visible line.
	Silent bool
}

// Set is the declarations collected for one document, keyed by sanitized name.
type Set struct {
	decls map[string]Declaration
	Skips []Skip
	// Replaced lists declaration names written twice; the later entry wins.
	Replaced []string
}

func (s *Set) Len() int { return len(s.decls) }

// Sorted returns the declarations ordered by name.
func (s *Set) Sorted() []Declaration {
	out := make([]Declaration, 0, len(s.decls))
	for _, d := range s.decls {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the declaration stored under name.
func (s *Set) Get(name string) (Declaration, bool) {
	d, ok := s.decls[name]
	return d, ok
}

func (s *Set) put(d Declaration) {
	if prev, ok := s.decls[d.Name]; ok {
		s.Replaced = append(s.Replaced, fmt.Sprintf("%s (%s %q replaced by %s %q)", d.Name, prev.Origin, prev.Raw, d.Origin, d.Raw))
	}
	s.decls[d.Name] = d
}

// Collect lowers every eligible parameter and then every eligible definition
// of doc into one name -> declaration mapping.
func Collect(t Target, doc *genspec.Document) (*Set, error) {
	set := &Set{decls: map[string]Declaration{}}
	if doc == nil {
		return set, nil
	}
	if err := collectParameters(t, doc.Parameters, set); err != nil {
		return nil, err
	}
	if err := collectDefinitions(t, doc.Definitions, set); err != nil {
		return nil, err
	}
	return set, nil
}

func collectParameters(t Target, params map[string]genspec.Parameter, set *Set) error {
	for _, name := range sortedNames(params) {
		param := params[name]
		if param.PropertyType == nil {
			set.Skips = append(set.Skips, Skip{Name: name, Origin: FromParameter, Reason: "no property type", Silent: true})
			continue
		}
		var prim genspec.Primitive
		switch *param.PropertyType {
		case genspec.TypeString:
			prim = genspec.PrimitiveString
		case genspec.TypeInteger:
			prim = genspec.PrimitiveInteger
		case genspec.TypeNumber:
			prim = genspec.PrimitiveNumber
		case genspec.TypeObject:
			set.Skips = append(set.Skips, Skip{Name: name, Origin: FromParameter, Reason: "object-typed parameters are not supported"})
			continue
		default:
			set.Skips = append(set.Skips, Skip{Name: name, Origin: FromParameter, Reason: fmt.Sprintf("%s parameters are not generated", *param.PropertyType), Silent: true})
			continue
		}

		nt := Newtype{
			Name:        t.TypeName(name),
			WireName:    name,
			Description: param.Description,
			Type:        t.PrimitiveType(prim),
			In:          param.In,
			Required:    param.Required != nil && *param.Required,
		}
		src, err := t.RenderNewtype(nt)
		if err != nil {
			return fmt.Errorf("render parameter %q: %w", name, err)
		}
		set.put(Declaration{Name: nt.Name, Raw: name, Origin: FromParameter, Source: src})
	}
	return nil
}

func collectDefinitions(t Target, defs map[string]genspec.Definition, set *Set) error {
	for _, name := range sortedNames(defs) {
		def := defs[name]
		switch schema := def.Schema.(type) {
		case *genspec.ObjectSchema:
			st := Struct{
				Name:        t.TypeName(name),
				WireName:    name,
				Description: def.Description,
			}
			st.Fields = structFields(t, name, schema, set)
			src, err := t.RenderStruct(st)
			if err != nil {
				return fmt.Errorf("render definition %q: %w", name, err)
			}
			set.put(Declaration{Name: st.Name, Raw: name, Origin: FromDefinition, Source: src})
		case *genspec.ArraySchema, *genspec.StringSchema, *genspec.NumberSchema, *genspec.IntegerSchema, *genspec.BooleanSchema:
			set.Skips = append(set.Skips, Skip{Name: name, Origin: FromDefinition, Reason: fmt.Sprintf("top-level %s definitions are not generated", schema.Kind())})
		default:
			return fmt.Errorf("definition %q: unhandled schema variant %T", name, def.Schema)
		}
	}
	return nil
}

// structFields maps the primitive properties of an object. Nested object and
// array properties are not lowered. Properties whose sanitized names collide
// keep the first by wire name.
func structFields(t Target, defName string, obj *genspec.ObjectSchema, set *Set) []Field {
	fields := make([]Field, 0, len(obj.Properties))
	for _, wire := range sortedNames(obj.Properties) {
		prop := obj.Properties[wire]
		prim, ok := genspec.PrimitiveOf(prop.Schema)
		if !ok {
			set.Skips = append(set.Skips, Skip{
				Name:   defName + "." + wire,
				Origin: FromDefinition,
				Reason: fmt.Sprintf("nested %s properties are not generated", prop.Schema.Kind()),
			})
			continue
		}
		fields = append(fields, Field{
			Name:        t.FieldName(wire),
			WireName:    wire,
			Type:        t.PrimitiveType(prim),
			Description: prop.Description,
			Pattern:     prop.Pattern,
			ReadOnly:    prop.ReadOnly != nil && *prop.ReadOnly,
		})
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })

	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if n := len(out); n > 0 && out[n-1].Name == f.Name {
			set.Skips = append(set.Skips, Skip{
				Name:   defName + "." + f.WireName,
				Origin: FromDefinition,
				Reason: fmt.Sprintf("field name %s collides with property %q", f.Name, out[n-1].WireName),
			})
			continue
		}
		out = append(out, f)
	}
	return out
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
