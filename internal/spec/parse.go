package spec

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Keys each schema variant recognizes. Everything else lands in the variant's
// Extra bag.
var (
	objectKeys    = map[string]bool{"type": true, "properties": true}
	arrayKeys     = map[string]bool{"type": true, "items": true}
	primitiveKeys = map[string]bool{"type": true}
)

// Keys consumed by the entity wrapping a schema; they never reach the bag.
var (
	definitionKeys = map[string]bool{"description": true, "required": true, "allOf": true}
	propertyKeys   = map[string]bool{"description": true, "pattern": true, "$ref": true, "readOnly": true}
)

// Path item keys that are not HTTP methods.
var pathItemMetaKeys = map[string]bool{
	"parameters": true, "$ref": true, "summary": true, "description": true, "servers": true,
}

// Parse converts a generic document tree (as produced by a YAML or JSON
// decoder) into a Document. name identifies the document in errors.
func Parse(name string, tree map[string]any) (*Document, error) {
	p := &parser{name: name}
	return p.document(tree)
}

type parser struct {
	name   string
	format Format
}

func (p *parser) fail(ptr, format string, args ...any) error {
	return &SpecError{Code: StructureError, Message: fmt.Sprintf(format, args...), Location: p.name, Pointer: "#" + ptr}
}

func (p *parser) enumFail(ptr string, err error) error {
	var ee *UnrecognizedEnumValueError
	if errors.As(err, &ee) {
		return &SpecError{Code: EnumError, Message: ee.Error(), Location: p.name, Pointer: "#" + ptr, Cause: err}
	}
	return err
}

func (p *parser) document(tree map[string]any) (*Document, error) {
	if tree == nil {
		return nil, p.fail("", "document is empty")
	}
	doc := &Document{}
	if err := p.marker(tree, doc); err != nil {
		return nil, err
	}
	p.format = doc.Format

	if raw, ok := tree["info"]; ok && raw != nil {
		info, err := p.info(raw, "/info")
		if err != nil {
			return nil, err
		}
		doc.Info = info
	}

	if raw, ok := tree["paths"]; ok && raw != nil {
		paths, err := p.paths(raw, "/paths")
		if err != nil {
			return nil, err
		}
		doc.Paths = paths
	}

	defsRaw, defsPtr := tree["definitions"], "/definitions"
	paramsRaw, paramsPtr := tree["parameters"], "/parameters"
	if doc.Format == FormatOpenAPI3 {
		defsRaw, defsPtr, paramsRaw, paramsPtr = nil, "/components/schemas", nil, "/components/parameters"
		if rawComponents, ok := tree["components"]; ok && rawComponents != nil {
			components, ok := asMap(rawComponents)
			if !ok {
				return nil, p.fail("/components", "expected a mapping, got %T", rawComponents)
			}
			defsRaw, paramsRaw = components["schemas"], components["parameters"]
		}
	}

	if defsRaw != nil {
		defs, err := p.definitions(defsRaw, defsPtr)
		if err != nil {
			return nil, err
		}
		doc.Definitions = defs
	}
	if paramsRaw != nil {
		params, err := p.parameters(paramsRaw, paramsPtr)
		if err != nil {
			return nil, err
		}
		doc.Parameters = params
	}
	return doc, nil
}

func (p *parser) marker(tree map[string]any, doc *Document) error {
	if raw, ok := tree["swagger"]; ok {
		v, ok := markerString(raw)
		if !ok || !strings.HasPrefix(v, "2.") {
			return p.fail("/swagger", "unsupported format marker %v (expected 2.x)", raw)
		}
		doc.Format, doc.Version = FormatSwagger2, v
		return nil
	}
	if raw, ok := tree["openapi"]; ok {
		v, ok := markerString(raw)
		if !ok || (v != "3.0" && !strings.HasPrefix(v, "3.0.")) {
			return p.fail("/openapi", "unsupported format marker %v (expected 3.0.x)", raw)
		}
		doc.Format, doc.Version = FormatOpenAPI3, v
		return nil
	}
	return p.fail("", "missing required field \"swagger\" (or \"openapi\")")
}

func (p *parser) info(raw any, ptr string) (*Info, error) {
	m, ok := asMap(raw)
	if !ok {
		return nil, p.fail(ptr, "expected a mapping, got %T", raw)
	}
	info := &Info{}
	var err error
	if info.Title, err = p.requiredString(m, "title", ptr); err != nil {
		return nil, err
	}
	if info.Version, err = p.requiredString(m, "version", ptr); err != nil {
		return nil, err
	}
	if info.Description, err = p.optString(m, "description", ptr); err != nil {
		return nil, err
	}
	if info.Summary, err = p.optString(m, "summary", ptr); err != nil {
		return nil, err
	}
	if info.TermsOfService, err = p.optString(m, "termsOfService", ptr); err != nil {
		return nil, err
	}
	return info, nil
}

func (p *parser) paths(raw any, ptr string) (map[string]PathItem, error) {
	m, ok := asMap(raw)
	if !ok {
		return nil, p.fail(ptr, "expected a mapping, got %T", raw)
	}
	out := make(map[string]PathItem, len(m))
	for _, path := range sortedKeys(m) {
		itemPtr := ptr + "/" + escapePointer(path)
		item := PathItem{}
		out[path] = item
		if m[path] == nil {
			continue
		}
		methods, ok := asMap(m[path])
		if !ok {
			return nil, p.fail(itemPtr, "expected a mapping, got %T", m[path])
		}
		for _, key := range sortedKeys(methods) {
			if pathItemMetaKeys[key] || strings.HasPrefix(key, "x-") {
				continue
			}
			opPtr := itemPtr + "/" + escapePointer(key)
			method, err := ParseHttpMethod(key)
			if err != nil {
				return nil, p.enumFail(opPtr, err)
			}
			if methods[key] == nil {
				item[method] = nil
				continue
			}
			op, err := p.operation(methods[key], opPtr)
			if err != nil {
				return nil, err
			}
			item[method] = op
		}
	}
	return out, nil
}

func (p *parser) operation(raw any, ptr string) (*Operation, error) {
	m, ok := asMap(raw)
	if !ok {
		return nil, p.fail(ptr, "expected a mapping, got %T", raw)
	}
	op := &Operation{}
	var err error
	if op.ID, err = p.optString(m, "operationId", ptr); err != nil {
		return nil, err
	}
	if op.Description, err = p.optString(m, "description", ptr); err != nil {
		return nil, err
	}

	if rawParams, ok := m["parameters"]; ok && rawParams != nil {
		list, ok := rawParams.([]any)
		if !ok {
			return nil, p.fail(ptr+"/parameters", "expected a list, got %T", rawParams)
		}
		for i, item := range list {
			itemPtr := fmt.Sprintf("%s/parameters/%d", ptr, i)
			pm, ok := asMap(item)
			if !ok {
				return nil, p.fail(itemPtr, "expected a mapping, got %T", item)
			}
			if ref, ok := pm["$ref"].(string); ok {
				op.Parameters = append(op.Parameters, ParameterOrRef{Ref: &Reference{Path: ref}})
				continue
			}
			param, err := p.parameter(pm, itemPtr)
			if err != nil {
				return nil, err
			}
			op.Parameters = append(op.Parameters, ParameterOrRef{Parameter: param})
		}
	}

	if rawResponses, ok := m["responses"]; ok && rawResponses != nil {
		responses, ok := asMap(rawResponses)
		if !ok {
			return nil, p.fail(ptr+"/responses", "expected a mapping, got %T", rawResponses)
		}
		op.Responses = make(map[HttpStatus]Response, len(responses))
		for _, code := range sortedKeys(responses) {
			respPtr := ptr + "/responses/" + escapePointer(code)
			if strings.HasPrefix(code, "x-") {
				continue
			}
			status, err := ParseHttpStatus(code)
			if err != nil && p.format == FormatOpenAPI3 {
				if r, rerr := ParseHttpStatusRange(code); rerr == nil {
					status, err = r, nil
				}
			}
			if err != nil {
				return nil, p.enumFail(respPtr, err)
			}
			resp := Response{}
			if responses[code] != nil {
				rm, ok := asMap(responses[code])
				if !ok {
					return nil, p.fail(respPtr, "expected a mapping, got %T", responses[code])
				}
				if resp.Description, err = p.optString(rm, "description", respPtr); err != nil {
					return nil, err
				}
				resp.Schema = refOf(rm["schema"])
			}
			op.Responses[status] = resp
		}
	}
	return op, nil
}

func (p *parser) definitions(raw any, ptr string) (map[string]Definition, error) {
	m, ok := asMap(raw)
	if !ok {
		return nil, p.fail(ptr, "expected a mapping, got %T", raw)
	}
	out := make(map[string]Definition, len(m))
	for _, name := range sortedKeys(m) {
		defPtr := ptr + "/" + escapePointer(name)
		node, ok := asMap(m[name])
		if !ok {
			return nil, p.fail(defPtr, "expected a mapping, got %T", m[name])
		}
		def := Definition{}
		var err error
		if def.Description, err = p.optString(node, "description", defPtr); err != nil {
			return nil, err
		}
		if def.Required, err = p.optStringList(node, "required", defPtr); err != nil {
			return nil, err
		}
		if rawAllOf, ok := node["allOf"]; ok && rawAllOf != nil {
			list, ok := rawAllOf.([]any)
			if !ok {
				return nil, p.fail(defPtr+"/allOf", "expected a list, got %T", rawAllOf)
			}
			for _, item := range list {
				if ref := refOf(item); ref != nil {
					def.AllOf = append(def.AllOf, *ref)
				}
			}
		}
		if def.Schema, err = p.schema(node, defPtr, definitionKeys); err != nil {
			return nil, err
		}
		out[name] = def
	}
	return out, nil
}

func (p *parser) parameters(raw any, ptr string) (map[string]Parameter, error) {
	m, ok := asMap(raw)
	if !ok {
		return nil, p.fail(ptr, "expected a mapping, got %T", raw)
	}
	out := make(map[string]Parameter, len(m))
	for _, name := range sortedKeys(m) {
		paramPtr := ptr + "/" + escapePointer(name)
		node, ok := asMap(m[name])
		if !ok {
			return nil, p.fail(paramPtr, "expected a mapping, got %T", m[name])
		}
		param, err := p.parameter(node, paramPtr)
		if err != nil {
			return nil, err
		}
		out[name] = *param
	}
	return out, nil
}

func (p *parser) parameter(node map[string]any, ptr string) (*Parameter, error) {
	param := &Parameter{}
	var err error
	if param.Name, err = p.optString(node, "name", ptr); err != nil {
		return nil, err
	}
	if param.In, err = p.optString(node, "in", ptr); err != nil {
		return nil, err
	}
	if param.Description, err = p.optString(node, "description", ptr); err != nil {
		return nil, err
	}
	if rawRequired, ok := node["required"]; ok && rawRequired != nil {
		b, ok := rawRequired.(bool)
		if !ok {
			return nil, p.fail(ptr+"/required", "expected a boolean, got %T", rawRequired)
		}
		param.Required = &b
	}
	if rawType, ok := node["type"]; ok && rawType != nil {
		t, err := p.schemaType(rawType, ptr+"/type")
		if err != nil {
			return nil, err
		}
		param.PropertyType = &t
	}
	if rawSchema, ok := node["schema"]; ok && rawSchema != nil {
		param.Schema = refOf(rawSchema)
		// OpenAPI 3 parameters carry their type on an inline schema.
		if sm, ok := asMap(rawSchema); ok && param.PropertyType == nil && param.Schema == nil {
			if rawType, ok := sm["type"]; ok && rawType != nil {
				t, err := p.schemaType(rawType, ptr+"/schema/type")
				if err != nil {
					return nil, err
				}
				param.PropertyType = &t
			}
		}
	}
	return param, nil
}

// schema resolves which variant node represents. First match wins:
//
//  1. "items" present -> Array
//  2. "properties" present (even empty) -> Object
//  3. "type" is string|number|integer|boolean -> that primitive
//  4. anything else -> Object carrying only its Extra bag
//
// consumed lists keys already taken by the wrapping entity.
func (p *parser) schema(node map[string]any, ptr string, consumed map[string]bool) (Schema, error) {
	var declared *SchemaType
	if rawType, ok := node["type"]; ok && rawType != nil {
		t, err := p.schemaType(rawType, ptr+"/type")
		if err != nil {
			return nil, err
		}
		declared = &t
	}

	if rawItems, ok := node["items"]; ok {
		itemsNode, ok := asMap(rawItems)
		if !ok {
			return nil, p.fail(ptr+"/items", "expected a mapping, got %T", rawItems)
		}
		items, err := p.schema(itemsNode, ptr+"/items", nil)
		if err != nil {
			return nil, err
		}
		return &ArraySchema{Items: items, Extra: extras(node, arrayKeys, consumed)}, nil
	}

	if rawProps, ok := node["properties"]; ok {
		props, err := p.properties(rawProps, ptr+"/properties")
		if err != nil {
			return nil, err
		}
		return &ObjectSchema{Properties: props, Extra: extras(node, objectKeys, consumed)}, nil
	}

	if declared != nil {
		bag := extras(node, primitiveKeys, consumed)
		switch *declared {
		case TypeString:
			return &StringSchema{Extra: bag}, nil
		case TypeNumber:
			return &NumberSchema{Extra: bag}, nil
		case TypeInteger:
			return &IntegerSchema{Extra: bag}, nil
		case TypeBoolean:
			return &BooleanSchema{Extra: bag}, nil
		}
	}

	return &ObjectSchema{Properties: map[string]Property{}, Extra: extras(node, primitiveKeys, consumed)}, nil
}

func (p *parser) properties(raw any, ptr string) (map[string]Property, error) {
	out := map[string]Property{}
	if raw == nil {
		return out, nil
	}
	m, ok := asMap(raw)
	if !ok {
		return nil, p.fail(ptr, "expected a mapping, got %T", raw)
	}
	for _, name := range sortedKeys(m) {
		propPtr := ptr + "/" + escapePointer(name)
		node, ok := asMap(m[name])
		if !ok {
			return nil, p.fail(propPtr, "expected a mapping, got %T", m[name])
		}
		prop := Property{}
		var err error
		if prop.Description, err = p.optString(node, "description", propPtr); err != nil {
			return nil, err
		}
		if prop.Pattern, err = p.optString(node, "pattern", propPtr); err != nil {
			return nil, err
		}
		if prop.Ref, err = p.optString(node, "$ref", propPtr); err != nil {
			return nil, err
		}
		if rawRO, ok := node["readOnly"]; ok && rawRO != nil {
			b, ok := rawRO.(bool)
			if !ok {
				return nil, p.fail(propPtr+"/readOnly", "expected a boolean, got %T", rawRO)
			}
			prop.ReadOnly = &b
		}
		if rawType, ok := node["type"]; ok && rawType != nil {
			t, err := p.schemaType(rawType, propPtr+"/type")
			if err != nil {
				return nil, err
			}
			prop.Type = &t
		}
		if prop.Schema, err = p.schema(node, propPtr, propertyKeys); err != nil {
			return nil, err
		}
		out[name] = prop
	}
	return out, nil
}

func (p *parser) schemaType(raw any, ptr string) (SchemaType, error) {
	s, ok := raw.(string)
	if !ok {
		return "", p.fail(ptr, "expected a string, got %T", raw)
	}
	t, err := ParseSchemaType(s)
	if err != nil {
		return "", p.enumFail(ptr, err)
	}
	return t, nil
}

func (p *parser) optString(m map[string]any, key, ptr string) (string, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := scalarString(raw)
	if !ok {
		return "", p.fail(ptr+"/"+escapePointer(key), "expected a string, got %T", raw)
	}
	return s, nil
}

func (p *parser) requiredString(m map[string]any, key, ptr string) (string, error) {
	if raw, ok := m[key]; !ok || raw == nil {
		return "", p.fail(ptr, "missing required field %q", key)
	}
	return p.optString(m, key, ptr)
}

func (p *parser) optStringList(m map[string]any, key, ptr string) ([]string, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, p.fail(ptr+"/"+key, "expected a list, got %T", raw)
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, p.fail(fmt.Sprintf("%s/%s/%d", ptr, key, i), "expected a string, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}

func extras(node map[string]any, known, consumed map[string]bool) Extra {
	var bag Extra
	for k, v := range node {
		if known[k] || consumed[k] {
			continue
		}
		if bag == nil {
			bag = Extra{}
		}
		bag[k] = v
	}
	return bag
}

func refOf(raw any) *Reference {
	m, ok := asMap(raw)
	if !ok {
		return nil
	}
	if ref, ok := m["$ref"].(string); ok {
		return &Reference{Path: ref}
	}
	return nil
}

// asMap accepts both string-keyed maps and the map[any]any some YAML decoders
// produce for non-string keys.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

// markerString renders a format marker. Unquoted YAML like `swagger: 2.0`
// decodes as a float and must keep its ".0".
func markerString(v any) (string, bool) {
	if f, ok := v.(float64); ok && f == math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', 1, 64), true
	}
	s, ok := scalarString(v)
	return strings.TrimSpace(s), ok
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escapePointer(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}
