package jsonschema

import (
	"fmt"

	typeschema "github.com/reoring/typeschema"
)

// Transform converts a completed type graph into a JSON Schema document.
// Output is deterministic: $defs follow graph insertion order, properties
// follow declaration order, and two calls over the same graph produce
// byte-identical marshalled output.
//
// A named root is inlined at the top level unless something inside the
// graph references it (a root-level cycle), in which case the document
// becomes {$id, $defs, $ref} so the self-reference stays a plain string.
func Transform(g *typeschema.Graph, rootName string, cfg typeschema.Config) (*Schema, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &transformer{g: g, cfg: cfg, labels: variantLabels(g)}

	var doc *Schema
	root := g.Root
	if root.IsNamed() {
		node, ok := g.Node(root.ID)
		if !ok {
			return nil, &typeschema.DanglingRefError{ID: root.ID}
		}
		if referenced(g, root.ID) {
			doc = &Schema{Ref: "#/$defs/" + defName(root.ID, node)}
			defs, err := t.defs("")
			if err != nil {
				return nil, err
			}
			doc.Defs = defs
		} else {
			var err error
			doc, err = t.node(root.ID, node)
			if err != nil {
				return nil, err
			}
			defs, err := t.defs(root.ID)
			if err != nil {
				return nil, err
			}
			doc.Defs = defs
		}
	} else {
		var err error
		doc, err = t.ref(root)
		if err != nil {
			return nil, err
		}
		defs, err := t.defs("")
		if err != nil {
			return nil, err
		}
		doc.Defs = defs
	}

	doc.Version = Draft2020
	doc.ID = rootName
	return doc, nil
}

type transformer struct {
	g   *typeschema.Graph
	cfg typeschema.Config
	// labels maps union subtype ids to their discriminator label, collected
	// up front so subtype $defs entries can be stamped during emission.
	labels map[typeschema.TypeID]string
}

// variantLabels collects discriminator labels for every named union variant
// in graph insertion order; the first label registered for an id wins.
func variantLabels(g *typeschema.Graph) map[typeschema.TypeID]string {
	labels := make(map[typeschema.TypeID]string)
	for _, id := range g.IDs() {
		n, _ := g.Node(id)
		u, ok := n.(*typeschema.Union)
		if !ok {
			continue
		}
		for _, v := range u.Variants {
			if !v.Ref.IsNamed() {
				continue
			}
			if _, seen := labels[v.Ref.ID]; !seen {
				labels[v.Ref.ID] = v.Label
			}
		}
	}
	return labels
}

// referenced reports whether any node in the graph holds a named reference
// to id. The root reference itself does not count.
func referenced(g *typeschema.Graph, id typeschema.TypeID) bool {
	for _, nid := range g.IDs() {
		n, _ := g.Node(nid)
		if nodeReferences(n, id) {
			return true
		}
	}
	return false
}

func nodeReferences(n typeschema.Node, id typeschema.TypeID) bool {
	switch v := n.(type) {
	case *typeschema.Object:
		for _, p := range v.Properties {
			if refReferences(p.Value, id) {
				return true
			}
		}
	case *typeschema.Array:
		return refReferences(v.Elem, id)
	case *typeschema.Map:
		return refReferences(v.Value, id)
	case *typeschema.Union:
		for _, vr := range v.Variants {
			if refReferences(vr.Ref, id) {
				return true
			}
		}
	}
	return false
}

func refReferences(r typeschema.Ref, id typeschema.TypeID) bool {
	if r.ID == id {
		return true
	}
	if r.Inline != nil {
		return nodeReferences(r.Inline, id)
	}
	return false
}

// defName is the $defs key for a registered node: its qualifying name when
// set, otherwise the simple-name tail of its id.
func defName(id typeschema.TypeID, n typeschema.Node) string {
	if name := n.NodeInfo().Name; name != "" {
		return name
	}
	s := string(id)
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' || s[i] == '/' {
			return s[i+1:]
		}
	}
	return s
}

// defs emits every registered node except skip, in insertion order.
func (t *transformer) defs(skip typeschema.TypeID) ([]Def, error) {
	var defs []Def
	for _, id := range t.g.IDs() {
		if id == skip {
			continue
		}
		n, _ := t.g.Node(id)
		s, err := t.node(id, n)
		if err != nil {
			return nil, err
		}
		defs = append(defs, Def{Name: defName(id, n), Schema: s})
	}
	return defs, nil
}

// node emits a registered node, injecting the discriminator property when
// the node is a union variant and the config asks for one.
func (t *transformer) node(id typeschema.TypeID, n typeschema.Node) (*Schema, error) {
	s, err := t.emit(n)
	if err != nil {
		return nil, err
	}
	if label, ok := t.labels[id]; ok && t.cfg.IncludeDiscriminator {
		s.Properties = append([]Prop{{Name: "type", Schema: &Schema{Type: "string", Const: label}}}, s.Properties...)
		s.Required = append([]string{"type"}, s.Required...)
	}
	return s, nil
}

// ref resolves a usage site: named references become $ref strings, inline
// nodes are emitted in place, and nullability is layered on per config.
func (t *transformer) ref(r typeschema.Ref) (*Schema, error) {
	var s *Schema
	if r.IsNamed() {
		n, ok := t.g.Node(r.ID)
		if !ok {
			return nil, &typeschema.DanglingRefError{ID: r.ID}
		}
		s = &Schema{Ref: "#/$defs/" + defName(r.ID, n)}
	} else {
		var err error
		s, err = t.emit(r.Inline)
		if err != nil {
			return nil, err
		}
	}
	if !r.Nullable {
		return s, nil
	}
	return t.nullable(s), nil
}

// nullable applies the configured nullability encoding. Schemas without a
// type keyword ($ref, bare oneOf) cannot carry a type array, so union-types
// mode wraps them in anyOf with a null branch instead. In nullable-field
// mode the flag is emitted as a sibling keyword even beside compositions,
// matching OpenAPI 3.0 usage where nullable predates null-type unions.
func (t *transformer) nullable(s *Schema) *Schema {
	if t.cfg.UseNullableField {
		s.Nullable = true
		return s
	}
	if base, ok := s.Type.(string); ok {
		s.Type = []string{base, "null"}
		return s
	}
	return &Schema{AnyOf: []*Schema{s, {Type: "null"}}}
}

// emit is the exhaustive per-kind emission switch.
func (t *transformer) emit(n typeschema.Node) (*Schema, error) {
	switch v := n.(type) {
	case *typeschema.Primitive:
		return &Schema{Type: string(v.Name), Description: v.Description}, nil

	case *typeschema.Enum:
		return &Schema{Type: "string", Enum: v.Values, Description: v.Description}, nil

	case *typeschema.Array:
		items, err := t.ref(v.Elem)
		if err != nil {
			return nil, err
		}
		return &Schema{
			Type:        "array",
			Items:       items,
			MinItems:    v.MinItems,
			MaxItems:    v.MaxItems,
			Description: v.Description,
		}, nil

	case *typeschema.Map:
		value, err := t.ref(v.Value)
		if err != nil {
			return nil, err
		}
		return &Schema{
			Type:                 "object",
			AdditionalProperties: value,
			Description:          v.Description,
		}, nil

	case *typeschema.Object:
		s := &Schema{
			Type:                 "object",
			Description:          v.Description,
			AdditionalProperties: false,
		}
		for _, p := range v.Properties {
			ps, err := t.ref(p.Value)
			if err != nil {
				return nil, err
			}
			if p.Description != "" {
				ps.Description = p.Description
			}
			if p.Minimum != nil {
				ps.Minimum = p.Minimum
			}
			if p.Maximum != nil {
				ps.Maximum = p.Maximum
			}
			if p.HasDefault {
				ps.Default = p.Default
				ps.HasDefault = true
			}
			s.Properties = append(s.Properties, Prop{Name: p.Name, Schema: ps})
			if t.propertyRequired(p) {
				s.Required = append(s.Required, p.Name)
			}
		}
		return s, nil

	case *typeschema.Union:
		s := &Schema{Description: v.Description}
		for _, vr := range v.Variants {
			vs, err := t.ref(vr.Ref)
			if err != nil {
				return nil, err
			}
			s.OneOf = append(s.OneOf, vs)
		}
		if t.cfg.IncludeOpenAPIDiscriminator {
			d := &Discriminator{PropertyName: "type"}
			for _, vr := range v.Variants {
				if !vr.Ref.IsNamed() {
					continue
				}
				n, ok := t.g.Node(vr.Ref.ID)
				if !ok {
					return nil, &typeschema.DanglingRefError{ID: vr.Ref.ID}
				}
				d.Mapping = append(d.Mapping, MappingEntry{Value: vr.Label, Ref: "#/$defs/" + defName(vr.Ref.ID, n)})
			}
			s.Discriminator = d
		}
		return s, nil
	}
	// unreachable while Node stays closed
	return nil, fmt.Errorf("jsonschema: unknown node kind %d", n.Kind())
}

// propertyRequired applies the required-field policy: presence-driven when
// RespectDefaultPresence, otherwise nullability-driven.
func (t *transformer) propertyRequired(p typeschema.Property) bool {
	if t.cfg.RespectDefaultPresence {
		return !p.HasDefault
	}
	if t.cfg.RequireNullableFields {
		return true
	}
	return !p.Value.Nullable
}
