package jsonschema

import (
	"bytes"

	typeschema "github.com/reoring/typeschema"
)

// Function is the LLM function-calling envelope: the parameter schema
// nested under a fixed {"type":"function"} wrapper.
type Function struct {
	Name        string
	Description string
	Parameters  *Schema
}

// TransformFunction transforms the graph and wraps the result as a callable
// function declaration named name. The root node's description moves to the
// function level, and the nested schema drops $schema/$id since the
// envelope is the document.
func TransformFunction(g *typeschema.Graph, name string, cfg typeschema.Config) (*Function, error) {
	s, err := Transform(g, name, cfg)
	if err != nil {
		return nil, err
	}
	f := &Function{Name: name, Parameters: s}
	f.Description = s.Description
	s.Description = ""
	s.Version = ""
	s.ID = ""
	return f, nil
}

// MarshalJSON emits {"type":"function","name":...,"description":...,
// "parameters":...} with description omitted when empty.
func (f *Function) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	w := fieldWriter{b: &b}
	w.field("type", "function")
	w.field("name", f.Name)
	if f.Description != "" {
		w.field("description", f.Description)
	}
	w.field("parameters", f.Parameters)
	b.WriteByte('}')
	if w.err != nil {
		return nil, w.err
	}
	return b.Bytes(), nil
}
