package emitter

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/swagger2types/internal/ident"
	genspec "github.com/mark3labs/swagger2types/internal/spec"
)

// fakeTarget renders declarations in a compact, easily asserted form.
type fakeTarget struct{}

func (fakeTarget) Name() string         { return "fake" }
func (fakeTarget) FileExt() string      { return "txt" }
func (fakeTarget) SourceDir() string    { return "src" }
func (fakeTarget) ManifestPath() string { return "src/manifest.txt" }
func (fakeTarget) TypeName(raw string) string {
	return ident.TypeName(raw, nil)
}
func (fakeTarget) FieldName(raw string) string { return ident.FieldName(raw) }
func (fakeTarget) PrimitiveType(p genspec.Primitive) string {
	return map[genspec.Primitive]string{
		genspec.PrimitiveString:  "S",
		genspec.PrimitiveNumber:  "N",
		genspec.PrimitiveInteger: "I",
		genspec.PrimitiveBoolean: "B",
	}[p]
}
func (fakeTarget) RenderStruct(s Struct) (string, error) {
	parts := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		parts = append(parts, f.Name+":"+f.Type)
	}
	return fmt.Sprintf("struct %s{%s}", s.Name, strings.Join(parts, ",")), nil
}
func (fakeTarget) RenderNewtype(n Newtype) (string, error) {
	return fmt.Sprintf("newtype %s(%s)", n.Name, n.Type), nil
}
func (fakeTarget) RenderFile(f File) ([]byte, error)             { return nil, nil }
func (fakeTarget) RenderManifest(m []Module) ([]byte, error)     { return nil, nil }
func (fakeTarget) Scaffold(p Project) (map[string][]byte, error) { return nil, nil }

func typePtr(t genspec.SchemaType) *genspec.SchemaType { return &t }

func TestCollect_ObjectDefinition(t *testing.T) {
	t.Parallel()
	doc := &genspec.Document{
		Definitions: map[string]genspec.Definition{
			"Pet": {Schema: &genspec.ObjectSchema{Properties: map[string]genspec.Property{
				"name":     {Schema: &genspec.StringSchema{}},
				"age":      {Schema: &genspec.IntegerSchema{}},
				"weight":   {Schema: &genspec.NumberSchema{}},
				"vaccined": {Schema: &genspec.BooleanSchema{}},
			}}},
		},
	}
	set, err := Collect(fakeTarget{}, doc)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if set.Len() != 1 {
		t.Fatalf("expected one declaration, got %d", set.Len())
	}
	d, ok := set.Get("Pet")
	if !ok {
		t.Fatalf("expected declaration Pet")
	}
	if want := "struct Pet{age:I,name:S,vaccined:B,weight:N}"; d.Source != want {
		t.Fatalf("unexpected source:\n got %s\nwant %s", d.Source, want)
	}
	if d.Origin != FromDefinition || d.Raw != "Pet" {
		t.Fatalf("unexpected metadata: %+v", d)
	}
}

func TestCollect_NestedPropertiesNotLowered(t *testing.T) {
	t.Parallel()
	doc := &genspec.Document{
		Definitions: map[string]genspec.Definition{
			"Order": {Schema: &genspec.ObjectSchema{Properties: map[string]genspec.Property{
				"id":    {Schema: &genspec.StringSchema{}},
				"owner": {Schema: &genspec.ObjectSchema{}, Ref: "#/definitions/User"},
				"tags":  {Schema: &genspec.ArraySchema{Items: &genspec.StringSchema{}}},
			}}},
		},
	}
	set, err := Collect(fakeTarget{}, doc)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	d, _ := set.Get("Order")
	if d.Source != "struct Order{id:S}" {
		t.Fatalf("unexpected source: %s", d.Source)
	}
	if len(set.Skips) != 2 {
		t.Fatalf("expected two skips, got %+v", set.Skips)
	}
	if set.Skips[0].Name != "Order.owner" || set.Skips[1].Name != "Order.tags" {
		t.Fatalf("unexpected skip order: %+v", set.Skips)
	}
}

func TestCollect_TopLevelPrimitiveDefinitionsSkipped(t *testing.T) {
	t.Parallel()
	doc := &genspec.Document{
		Definitions: map[string]genspec.Definition{
			"Names": {Schema: &genspec.ArraySchema{Items: &genspec.StringSchema{}}},
			"Color": {Schema: &genspec.StringSchema{}},
		},
	}
	set, err := Collect(fakeTarget{}, doc)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if set.Len() != 0 {
		t.Fatalf("expected no declarations, got %d", set.Len())
	}
	if len(set.Skips) != 2 || set.Skips[0].Silent || set.Skips[1].Silent {
		t.Fatalf("expected two logged skips, got %+v", set.Skips)
	}
}

func TestCollect_Parameters(t *testing.T) {
	t.Parallel()
	doc := &genspec.Document{
		Parameters: map[string]genspec.Parameter{
			"user-id":  {PropertyType: typePtr(genspec.TypeString)},
			"filename": {PropertyType: typePtr(genspec.TypeString)},
			"limit":    {PropertyType: typePtr(genspec.TypeInteger)},
			"ratio":    {PropertyType: typePtr(genspec.TypeNumber)},
			"filter":   {PropertyType: typePtr(genspec.TypeObject)},
			"verbose":  {PropertyType: typePtr(genspec.TypeBoolean)},
			"body":     {In: "body"},
		},
	}
	set, err := Collect(fakeTarget{}, doc)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	want := map[string]string{
		"UserId":   "newtype UserId(S)",
		"Filename": "newtype Filename(S)",
		"Limit":    "newtype Limit(I)",
		"Ratio":    "newtype Ratio(N)",
	}
	if set.Len() != len(want) {
		t.Fatalf("expected %d declarations, got %d", len(want), set.Len())
	}
	for name, src := range want {
		d, ok := set.Get(name)
		if !ok || d.Source != src {
			t.Errorf("declaration %s: got %q (present=%v), want %q", name, d.Source, ok, src)
		}
	}

	var logged, silent int
	for _, s := range set.Skips {
		if s.Silent {
			silent++
			continue
		}
		logged++
		if s.Name != "filter" {
			t.Errorf("unexpected logged skip: %+v", s)
		}
	}
	if logged != 1 || silent != 2 {
		t.Fatalf("expected 1 logged and 2 silent skips, got %d/%d", logged, silent)
	}
}

func TestCollect_DefinitionReplacesParameterWithSameName(t *testing.T) {
	t.Parallel()
	doc := &genspec.Document{
		Parameters: map[string]genspec.Parameter{
			"pet": {PropertyType: typePtr(genspec.TypeString)},
		},
		Definitions: map[string]genspec.Definition{
			"Pet": {Schema: &genspec.ObjectSchema{}},
		},
	}
	set, err := Collect(fakeTarget{}, doc)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	d, _ := set.Get("Pet")
	if d.Origin != FromDefinition {
		t.Fatalf("expected the definition to win, got %+v", d)
	}
	if len(set.Replaced) != 1 {
		t.Fatalf("expected one replacement record, got %v", set.Replaced)
	}
}

func TestCollect_FieldCollisionKeepsFirst(t *testing.T) {
	t.Parallel()
	doc := &genspec.Document{
		Definitions: map[string]genspec.Definition{
			"User": {Schema: &genspec.ObjectSchema{Properties: map[string]genspec.Property{
				"userId":  {Schema: &genspec.StringSchema{}},
				"user_id": {Schema: &genspec.IntegerSchema{}},
			}}},
		},
	}
	set, err := Collect(fakeTarget{}, doc)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	d, _ := set.Get("User")
	// "userId" sorts before "user_id", so the string-typed property is kept.
	if d.Source != "struct User{user_id:S}" {
		t.Fatalf("unexpected source: %s", d.Source)
	}
	if len(set.Skips) != 1 || set.Skips[0].Name != "User.user_id" {
		t.Fatalf("expected collision skip, got %+v", set.Skips)
	}
}

func TestSet_SortedByName(t *testing.T) {
	t.Parallel()
	doc := &genspec.Document{
		Definitions: map[string]genspec.Definition{
			"zebra": {Schema: &genspec.ObjectSchema{}},
			"Apple": {Schema: &genspec.ObjectSchema{}},
			"mango": {Schema: &genspec.ObjectSchema{}},
		},
	}
	set, err := Collect(fakeTarget{}, doc)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	var names []string
	for _, d := range set.Sorted() {
		names = append(names, d.Name)
	}
	if got := strings.Join(names, ","); got != "Apple,Mango,Zebra" {
		t.Fatalf("unexpected order: %s", got)
	}
}

func TestCommentLines(t *testing.T) {
	t.Parallel()
	got := CommentLines("\n  first line  \r\n\r\n second\n")
	if len(got) != 3 || got[0] != "first line" || got[1] != "" || got[2] != "second" {
		t.Fatalf("unexpected lines: %q", got)
	}
	if CommentLines("   ") != nil {
		t.Fatalf("expected nil for blank description")
	}
}
