package reflectscan

import (
	"fmt"
	"reflect"
	"strconv"

	typeschema "github.com/reoring/typeschema"
	"github.com/reoring/typeschema/internal/tagparse"
)

// fieldAnnotations normalizes a struct field's tags into the annotation
// shape the description extractor consumes. The description tag comes
// first, so it wins over a jsonschema description when both are present.
func fieldAnnotations(f reflect.StructField, tag tagparse.SchemaTag) []typeschema.Annotation {
	var anns []typeschema.Annotation
	if d := f.Tag.Get("description"); d != "" {
		anns = append(anns, typeschema.Annotation{
			Name: "description",
			Args: []typeschema.Arg{{Name: "value", Value: d}},
		})
	}
	if tag.Description != "" {
		anns = append(anns, typeschema.Annotation{
			Name: "jsonschema",
			Args: []typeschema.Arg{{Name: "description", Value: tag.Description}},
		})
	}
	return anns
}

// defaultRaw resolves the declared default: the jsonschema tag's default=
// entry, or the standalone `default:"..."` tag.
func defaultRaw(f reflect.StructField, tag tagparse.SchemaTag) *string {
	if tag.DefaultRaw != nil {
		return tag.DefaultRaw
	}
	if d, ok := f.Tag.Lookup("default"); ok {
		return &d
	}
	return nil
}

// parseDefault converts a raw tag default into the JSON-typed value
// matching the field's primitive kind, so an integer default emits as a
// JSON number rather than a string.
func parseDefault(raw string, t reflect.Type) (any, error) {
	switch baseKind(t) {
	case reflect.String:
		return raw, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("default %q is not an integer", raw)
		}
		return n, nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("default %q is not a number", raw)
		}
		return f, nil
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("default %q is not a boolean", raw)
		}
		return b, nil
	}
	return raw, nil
}
