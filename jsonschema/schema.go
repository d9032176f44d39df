package jsonschema

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Draft2020 is the dialect URI emitted as $schema on top-level documents.
const Draft2020 = "https://json-schema.org/draft/2020-12/schema"

// Schema is the emitted JSON Schema document model. Marshalling is fully
// deterministic: keys appear in a fixed canonical order and Properties,
// Defs and discriminator Mapping preserve insertion order, which is why
// those are pair slices rather than maps.
type Schema struct {
	Version     string // $schema
	ID          string // $id
	Type        any    // string or []string; nil omits the key
	Description string
	Enum        []string
	Const       string

	Properties           []Prop
	Required             []string
	AdditionalProperties any // false or *Schema; nil omits the key

	Items    *Schema
	MinItems *int
	MaxItems *int

	Minimum *float64
	Maximum *float64

	Default    any
	HasDefault bool // distinguishes an omitted default from a zero-valued one

	Nullable bool // legacy OpenAPI encoding; emitted only when true

	OneOf []*Schema
	AnyOf []*Schema

	Discriminator *Discriminator

	Defs []Def
	Ref  string // $ref
}

// Prop is one ordered properties entry.
type Prop struct {
	Name   string
	Schema *Schema
}

// Def is one ordered $defs entry.
type Def struct {
	Name   string
	Schema *Schema
}

// Discriminator is the OpenAPI discriminator extension object. Mapping order
// follows union variant declaration order.
type Discriminator struct {
	PropertyName string
	Mapping      []MappingEntry
}

// MappingEntry maps one discriminator value to a $ref string.
type MappingEntry struct {
	Value string
	Ref   string
}

// Property returns the schema registered under name, or nil.
func (s *Schema) Property(name string) *Schema {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema
		}
	}
	return nil
}

// Def returns the $defs entry registered under name, or nil.
func (s *Schema) Def(name string) *Schema {
	for _, d := range s.Defs {
		if d.Name == name {
			return d.Schema
		}
	}
	return nil
}

// MarshalJSON writes the document with canonical key order.
func (s *Schema) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	w := fieldWriter{b: &b}

	if s.Version != "" {
		w.field("$schema", s.Version)
	}
	if s.ID != "" {
		w.field("$id", s.ID)
	}
	if s.Type != nil {
		w.field("type", s.Type)
	}
	if s.Description != "" {
		w.field("description", s.Description)
	}
	if len(s.Enum) > 0 {
		w.field("enum", s.Enum)
	}
	if s.Const != "" {
		w.field("const", s.Const)
	}
	if len(s.Properties) > 0 {
		w.key("properties")
		b.WriteByte('{')
		for i, p := range s.Properties {
			if i > 0 {
				b.WriteByte(',')
			}
			w.raw(p.Name)
			b.WriteByte(':')
			w.raw(p.Schema)
		}
		b.WriteByte('}')
	}
	if s.AdditionalProperties != nil {
		w.field("additionalProperties", s.AdditionalProperties)
	}
	if len(s.Required) > 0 {
		w.field("required", s.Required)
	}
	if s.Items != nil {
		w.field("items", s.Items)
	}
	if s.MinItems != nil {
		w.field("minItems", *s.MinItems)
	}
	if s.MaxItems != nil {
		w.field("maxItems", *s.MaxItems)
	}
	if s.Minimum != nil {
		w.field("minimum", *s.Minimum)
	}
	if s.Maximum != nil {
		w.field("maximum", *s.Maximum)
	}
	if s.HasDefault {
		w.field("default", s.Default)
	}
	if s.Nullable {
		w.field("nullable", true)
	}
	if len(s.OneOf) > 0 {
		w.field("oneOf", s.OneOf)
	}
	if len(s.AnyOf) > 0 {
		w.field("anyOf", s.AnyOf)
	}
	if s.Discriminator != nil {
		w.field("discriminator", s.Discriminator)
	}
	if len(s.Defs) > 0 {
		w.key("$defs")
		b.WriteByte('{')
		for i, d := range s.Defs {
			if i > 0 {
				b.WriteByte(',')
			}
			w.raw(d.Name)
			b.WriteByte(':')
			w.raw(d.Schema)
		}
		b.WriteByte('}')
	}
	if s.Ref != "" {
		w.field("$ref", s.Ref)
	}

	b.WriteByte('}')
	if w.err != nil {
		return nil, w.err
	}
	return b.Bytes(), nil
}

// MarshalJSON writes propertyName then mapping, preserving mapping order.
func (d *Discriminator) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	w := fieldWriter{b: &b}
	w.field("propertyName", d.PropertyName)
	if len(d.Mapping) > 0 {
		w.key("mapping")
		b.WriteByte('{')
		for i, m := range d.Mapping {
			if i > 0 {
				b.WriteByte(',')
			}
			w.raw(m.Value)
			b.WriteByte(':')
			w.raw(m.Ref)
		}
		b.WriteByte('}')
	}
	b.WriteByte('}')
	if w.err != nil {
		return nil, w.err
	}
	return b.Bytes(), nil
}

// fieldWriter appends comma-separated key/value pairs inside an object and
// remembers the first encoding error.
type fieldWriter struct {
	b   *bytes.Buffer
	n   int
	err error
}

func (w *fieldWriter) key(name string) {
	if w.n > 0 {
		w.b.WriteByte(',')
	}
	w.n++
	w.raw(name)
	w.b.WriteByte(':')
}

func (w *fieldWriter) field(name string, v any) {
	w.key(name)
	w.raw(v)
}

func (w *fieldWriter) raw(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		if w.err == nil {
			w.err = err
		}
		w.b.WriteString("null")
		return
	}
	w.b.Write(data)
}
