package srcscan

import (
	"fmt"
	"go/types"
	"reflect"
	"strconv"
	"strings"

	typeschema "github.com/reoring/typeschema"
	"github.com/reoring/typeschema/internal/tagparse"
)

// declID is the graph identity of a named declaration.
func declID(obj *types.TypeName) typeschema.TypeID {
	path := ""
	if obj.Pkg() != nil {
		path = obj.Pkg().Path()
	}
	return typeschema.TypeID(path + "." + obj.Name())
}

// cleanDoc flattens a doc comment into a single line.
func cleanDoc(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return s
}

func isStringKind(t types.Type) bool {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	b, ok := t.Underlying().(*types.Basic)
	return ok && b.Info()&types.IsString != 0
}

// fieldAnnotations normalizes tags and the doc comment into the annotation
// shape the description extractor consumes: description tag, then
// jsonschema tag, then doc comment, so tags win over comments.
func fieldAnnotations(tag reflect.StructTag, st tagparse.SchemaTag, doc string) []typeschema.Annotation {
	var anns []typeschema.Annotation
	if d := tag.Get("description"); d != "" {
		anns = append(anns, typeschema.Annotation{
			Name: "description",
			Args: []typeschema.Arg{{Name: "value", Value: d}},
		})
	}
	if st.Description != "" {
		anns = append(anns, typeschema.Annotation{
			Name: "jsonschema",
			Args: []typeschema.Arg{{Name: "description", Value: st.Description}},
		})
	}
	if doc != "" {
		anns = append(anns, typeschema.Annotation{
			Name: "doc",
			Args: []typeschema.Arg{{Name: "value", Value: doc}},
		})
	}
	return anns
}

// parseDefault converts a raw tag default into the JSON-typed value
// matching the field's underlying primitive kind.
func parseDefault(raw string, t types.Type) (any, error) {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	b, ok := t.Underlying().(*types.Basic)
	if !ok {
		return raw, nil
	}
	info := b.Info()
	switch {
	case info&types.IsBoolean != 0:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("default %q is not a boolean", raw)
		}
		return v, nil
	case info&types.IsInteger != 0:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("default %q is not an integer", raw)
		}
		return n, nil
	case info&types.IsFloat != 0:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("default %q is not a number", raw)
		}
		return f, nil
	}
	return raw, nil
}
