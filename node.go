package typeschema

// Kind identifies a Node variant.
type Kind int

const (
	KindObject Kind = iota
	KindEnum
	KindArray
	KindMap
	KindPrimitive
	KindUnion
)

// Info carries the metadata shared by every node variant: an optional
// qualifying name (used as the $defs key for registered nodes) and an
// optional human-readable description.
type Info struct {
	Name        string
	Description string
}

// NodeInfo returns the shared metadata; it also makes Info satisfy part of
// the Node interface so variants embed it instead of redeclaring fields.
func (i Info) NodeInfo() Info { return i }

// Node is the closed set of structural type descriptions. The transformer
// switches exhaustively over Kind; new variants require a transformer change.
type Node interface {
	Kind() Kind
	NodeInfo() Info
}

// PrimitiveName is a JSON Schema primitive type name.
type PrimitiveName string

const (
	String  PrimitiveName = "string"
	Integer PrimitiveName = "integer"
	Number  PrimitiveName = "number"
	Boolean PrimitiveName = "boolean"
	Null    PrimitiveName = "null"
)

// Primitive represents a scalar leaf.
type Primitive struct {
	Info
	Name PrimitiveName
}

func (*Primitive) Kind() Kind { return KindPrimitive }

// Property is one field of an Object. Default is only meaningful when
// HasDefault is set; a nil Default with HasDefault=true means the declared
// default is JSON null.
type Property struct {
	Name        string
	Value       Ref
	Description string
	Default     any
	HasDefault  bool
	Minimum     *float64
	Maximum     *float64
}

// Object represents a fixed-shape object. Property order is declaration
// order and is preserved through to the emitted schema.
type Object struct {
	Info
	Properties []Property
}

func (*Object) Kind() Kind { return KindObject }

// Enum represents a closed set of string constants in declaration order.
// ValueDescriptions optionally documents individual values; it is carried in
// the IR for front-ends that can extract it, though the Draft 2020-12
// emission only uses the node-level description.
type Enum struct {
	Info
	Values            []string
	ValueDescriptions map[string]string
}

func (*Enum) Kind() Kind { return KindEnum }

// Array represents a homogeneous list.
type Array struct {
	Info
	Elem     Ref
	MinItems *int
	MaxItems *int
}

func (*Array) Kind() Kind { return KindArray }

// Map represents a string-keyed dictionary with uniform value type.
type Map struct {
	Info
	Value Ref
}

func (*Map) Kind() Kind { return KindMap }

// Variant is one branch of a Union: the discriminator label plus the
// subtype reference.
type Variant struct {
	Label string
	Ref   Ref
}

// Union represents a polymorphic sum type. Variant order is declaration
// order and drives both oneOf order and discriminator mapping order.
type Union struct {
	Info
	Variants []Variant
}

func (*Union) Kind() Kind { return KindUnion }
