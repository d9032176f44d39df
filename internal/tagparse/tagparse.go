// Package tagparse parses the struct tag conventions shared by the
// reflection and source front-ends. This package is internal and not part
// of the public API.
package tagparse

import (
	"strconv"
	"strings"
)

// SchemaTag is the parsed form of a `jsonschema:"..."` struct tag. The
// grammar is comma-separated key=value pairs; enum values are |-separated.
type SchemaTag struct {
	Description string
	DefaultRaw  *string
	Minimum     *float64
	Maximum     *float64
	Enum        []string
}

// Parse parses the jsonschema tag value. Unknown keys and malformed
// numbers are ignored rather than failing the whole scan.
func Parse(tag string) SchemaTag {
	var st SchemaTag
	if tag == "" {
		return st
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		switch key {
		case "description":
			st.Description = value
		case "default":
			v := value
			st.DefaultRaw = &v
		case "minimum":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				st.Minimum = &f
			}
		case "maximum":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				st.Maximum = &f
			}
		case "enum":
			st.Enum = strings.Split(value, "|")
		}
	}
	return st
}

// JSONName resolves a field's wire name from its json tag, falling back to
// the Go field name. skip is true for `json:"-"`.
func JSONName(tag, fallback string) (name string, skip bool) {
	if tag == "-" {
		return "", true
	}
	name = fallback
	if tag != "" {
		if c := strings.IndexByte(tag, ','); c >= 0 {
			tag = tag[:c]
		}
		if tag != "" {
			name = tag
		}
	}
	return name, false
}
