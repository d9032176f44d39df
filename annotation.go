package typeschema

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Annotation is one documentation-bearing marker attached to a declaration:
// a convention name (struct tag key, annotation class, comment marker) plus
// its arguments in source order. Front-ends normalize whatever their
// platform exposes into this shape before asking for a description.
type Annotation struct {
	Name string
	Args []Arg
}

// Arg is a single named annotation argument.
type Arg struct {
	Name  string
	Value any
}

// DescriptionOptions configures which annotation conventions Description
// recognizes. Zero-valued lists fall back to the built-ins.
type DescriptionOptions struct {
	// Names is the annotation-name allow-list, matched case-insensitively.
	Names []string `yaml:"names"`
	// Attributes is the argument-name allow-list, matched case-insensitively
	// in argument order within each matching annotation.
	Attributes []string `yaml:"attributes"`
}

// DefaultDescriptionOptions covers the conventions the bundled front-ends
// emit: description/jsonschema struct tags, doc comments, and plain comment
// markers.
func DefaultDescriptionOptions() DescriptionOptions {
	return DescriptionOptions{
		Names:      []string{"description", "jsonschema", "doc", "comment"},
		Attributes: []string{"value", "description"},
	}
}

// LoadDescriptionOptions parses a YAML allow-list document:
//
//	names: [description, doc]
//	attributes: [value, description]
//
// Lists omitted from the document keep their built-in defaults.
func LoadDescriptionOptions(data []byte) (DescriptionOptions, error) {
	opt := DescriptionOptions{}
	if err := yaml.Unmarshal(data, &opt); err != nil {
		return DescriptionOptions{}, fmt.Errorf("typeschema: parsing description options: %w", err)
	}
	def := DefaultDescriptionOptions()
	if len(opt.Names) == 0 {
		opt.Names = def.Names
	}
	if len(opt.Attributes) == 0 {
		opt.Attributes = def.Attributes
	}
	return opt, nil
}

// Description scans annotations in order and returns the first string value
// of an allow-listed attribute on an allow-listed annotation. First match
// wins, an explicitly empty string included; the function is pure and never
// errors.
func Description(anns []Annotation, opt DescriptionOptions) (string, bool) {
	names := opt.Names
	attrs := opt.Attributes
	if len(names) == 0 {
		names = DefaultDescriptionOptions().Names
	}
	if len(attrs) == 0 {
		attrs = DefaultDescriptionOptions().Attributes
	}
	for _, a := range anns {
		if !containsFold(names, a.Name) {
			continue
		}
		for _, arg := range a.Args {
			if !containsFold(attrs, arg.Name) {
				continue
			}
			if s, ok := arg.Value.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
