package reflectscan_test

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	typeschema "github.com/reoring/typeschema"
	"github.com/reoring/typeschema/introspect/reflectscan"
	"github.com/reoring/typeschema/jsonschema"
)

type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

type Audit struct {
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	Audit
	Name    string            `json:"name" description:"display name"`
	Age     int               `json:"age" jsonschema:"minimum=0,default=21"`
	Nick    *string           `json:"nick"`
	Level   string            `json:"level" jsonschema:"enum=basic|pro"`
	Tags    []string          `json:"tags"`
	Meta    map[string]int    `json:"meta"`
	Address Address           `json:"address"`
	hidden  string
	Skipped string            `json:"-"`
}

type Color string

func (Color) Enum() []string { return []string{"red", "green", "blue"} }

type Palette struct {
	Primary Color `json:"primary"`
}

type Shape interface{ area() float64 }

type Circle struct {
	Radius float64 `json:"radius"`
}

func (Circle) area() float64 { return 0 }

type Rectangle struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (Rectangle) area() float64 { return 0 }

type Drawing struct {
	Shape Shape `json:"shape"`
}

type TreeNode struct {
	Value    string      `json:"value"`
	Children []*TreeNode `json:"children"`
}

type Loop struct {
	*Loop
	Name string `json:"name"`
}

type PingPart struct {
	*PongPart
	A string `json:"a"`
}

type PongPart struct {
	*PingPart
	B string `json:"b"`
}

func mustObject(t *testing.T, g *typeschema.Graph, id typeschema.TypeID) *typeschema.Object {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("node %s not registered; have %v", id, g.IDs())
	}
	obj, ok := n.(*typeschema.Object)
	if !ok {
		t.Fatalf("node %s is %T, want *Object", id, n)
	}
	return obj
}

func prop(t *testing.T, obj *typeschema.Object, name string) typeschema.Property {
	t.Helper()
	for _, p := range obj.Properties {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("property %s not found in %s", name, obj.Name)
	return typeschema.Property{}
}

var pkgPath = reflect.TypeOf(User{}).PkgPath()

func userID() typeschema.TypeID { return typeschema.TypeID(pkgPath + ".User") }

func TestScanStruct(t *testing.T) {
	g, err := reflectscan.Scan(User{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !g.Root.IsNamed() || g.Root.ID != userID() {
		t.Fatalf("root=%v", g.Root)
	}
	user := mustObject(t, g, userID())

	// embedded Audit flattens, so created_at comes first
	var names []string
	for _, p := range user.Properties {
		names = append(names, p.Name)
	}
	want := []string{"created_at", "name", "age", "nick", "level", "tags", "meta", "address"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("properties=%v want %v", names, want)
	}

	if p := prop(t, user, "name"); p.Description != "display name" {
		t.Fatalf("description=%q", p.Description)
	}
	age := prop(t, user, "age")
	if age.Minimum == nil || *age.Minimum != 0 {
		t.Fatalf("minimum=%v", age.Minimum)
	}
	if !age.HasDefault || age.Default != 21 {
		t.Fatalf("default=%v (has=%v), want typed 21", age.Default, age.HasDefault)
	}
	if !prop(t, user, "nick").Value.Nullable {
		t.Fatal("pointer field must be nullable")
	}
	if prop(t, user, "created_at").Value.Inline.(*typeschema.Primitive).Name != typeschema.String {
		t.Fatal("time.Time must map to a string primitive")
	}

	level := prop(t, user, "level")
	if e, ok := level.Value.Inline.(*typeschema.Enum); !ok || !reflect.DeepEqual(e.Values, []string{"basic", "pro"}) {
		t.Fatalf("enum tag not honored: %+v", level.Value)
	}

	addr := prop(t, user, "address")
	if !addr.Value.IsNamed() {
		t.Fatal("named struct field must reference the node table")
	}
	mustObject(t, g, addr.Value.ID)
}

func TestScanSkipsUnexportedAndDashed(t *testing.T) {
	g, err := reflectscan.Scan(User{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	user := mustObject(t, g, userID())
	for _, p := range user.Properties {
		if p.Name == "hidden" || p.Name == "Skipped" || p.Name == "-" {
			t.Fatalf("field %s must be skipped", p.Name)
		}
	}
}

func TestScanEnumerType(t *testing.T) {
	g, err := reflectscan.Scan(Palette{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	n, ok := g.Node(typeschema.TypeID(pkgPath + ".Color"))
	if !ok {
		t.Fatalf("Color not registered; have %v", g.IDs())
	}
	e, ok := n.(*typeschema.Enum)
	if !ok || !reflect.DeepEqual(e.Values, []string{"red", "green", "blue"}) {
		t.Fatalf("enum node=%+v", n)
	}
}

func TestScanUnion(t *testing.T) {
	s := reflectscan.New()
	s.Union((*Shape)(nil), Circle{}, Rectangle{})
	g, err := s.Scan(Drawing{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	n, ok := g.Node(typeschema.TypeID(pkgPath + ".Shape"))
	if !ok {
		t.Fatalf("Shape not registered; have %v", g.IDs())
	}
	u, ok := n.(*typeschema.Union)
	if !ok || len(u.Variants) != 2 {
		t.Fatalf("union=%+v", n)
	}
	if u.Variants[0].Label != "Circle" || u.Variants[1].Label != "Rectangle" {
		t.Fatalf("labels=%v,%v", u.Variants[0].Label, u.Variants[1].Label)
	}
}

func TestScanUnregisteredInterfaceFails(t *testing.T) {
	if _, err := reflectscan.Scan(Drawing{}); err == nil || !strings.Contains(err.Error(), "Union") {
		t.Fatalf("want a hint to register variants, got %v", err)
	}
}

func TestScanRecursiveType(t *testing.T) {
	g, err := reflectscan.Scan(TreeNode{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	node := mustObject(t, g, typeschema.TypeID(pkgPath+".TreeNode"))
	children := prop(t, node, "children")
	arr, ok := children.Value.Inline.(*typeschema.Array)
	if !ok {
		t.Fatalf("children=%+v", children.Value)
	}
	if arr.Elem.ID != typeschema.TypeID(pkgPath+".TreeNode") || !arr.Elem.Nullable {
		t.Fatalf("self reference=%+v", arr.Elem)
	}
	if g.Len() != 1 {
		t.Fatalf("recursion must register one node, got %d", g.Len())
	}
}

func TestScanSelfEmbeddingTerminates(t *testing.T) {
	g, err := reflectscan.Scan(Loop{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	loop := mustObject(t, g, typeschema.TypeID(pkgPath+".Loop"))
	var names []string
	for _, p := range loop.Properties {
		names = append(names, p.Name)
	}
	if want := []string{"name"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("properties=%v want %v", names, want)
	}
	if g.Len() != 1 {
		t.Fatalf("self-embedding must register one node, got %d", g.Len())
	}
}

func TestScanMutualEmbeddingTerminates(t *testing.T) {
	g, err := reflectscan.Scan(PingPart{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	ping := mustObject(t, g, typeschema.TypeID(pkgPath+".PingPart"))
	var names []string
	for _, p := range ping.Properties {
		names = append(names, p.Name)
	}
	if want := []string{"b", "a"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("properties=%v want %v", names, want)
	}
}

func TestScanNonStringMapKeyFails(t *testing.T) {
	type bad struct {
		M map[int]string `json:"m"`
	}
	if _, err := reflectscan.Scan(bad{}); err == nil {
		t.Fatal("want error for non-string map key")
	}
}

// TestScanTransformEndToEnd covers the full pipeline for the User example.
func TestScanTransformEndToEnd(t *testing.T) {
	type SimpleUser struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	g, err := reflectscan.Scan(SimpleUser{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	doc, err := jsonschema.Transform(g, "example.User", typeschema.Default())
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"$schema":"https://json-schema.org/draft/2020-12/schema","$id":"example.User",` +
		`"type":"object","properties":{"name":{"type":"string"},"age":{"type":"integer"}},` +
		`"additionalProperties":false,"required":["name","age"]}`
	if string(data) != want {
		t.Fatalf("output mismatch\n got=%s\nwant=%s", data, want)
	}
}
