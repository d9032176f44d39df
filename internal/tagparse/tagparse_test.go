package tagparse

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tag := Parse("description=unit count,minimum=1,maximum=10,default=3,enum=a|b|c")
	if tag.Description != "unit count" {
		t.Fatalf("description=%q", tag.Description)
	}
	if tag.Minimum == nil || *tag.Minimum != 1 || tag.Maximum == nil || *tag.Maximum != 10 {
		t.Fatalf("bounds=%v,%v", tag.Minimum, tag.Maximum)
	}
	if tag.DefaultRaw == nil || *tag.DefaultRaw != "3" {
		t.Fatalf("default=%v", tag.DefaultRaw)
	}
	if !reflect.DeepEqual(tag.Enum, []string{"a", "b", "c"}) {
		t.Fatalf("enum=%v", tag.Enum)
	}
}

func TestParseIgnoresBadNumbers(t *testing.T) {
	tag := Parse("minimum=abc,maximum=")
	if tag.Minimum != nil || tag.Maximum != nil {
		t.Fatalf("bad numbers must be ignored: %v,%v", tag.Minimum, tag.Maximum)
	}
}

func TestParseEmpty(t *testing.T) {
	tag := Parse("")
	if tag.Description != "" || tag.DefaultRaw != nil || tag.Enum != nil {
		t.Fatalf("empty tag must parse to zero value: %+v", tag)
	}
}

func TestJSONName(t *testing.T) {
	cases := []struct {
		tag, fallback, want string
		skip                bool
	}{
		{"", "Field", "Field", false},
		{"name", "Field", "name", false},
		{"name,omitempty", "Field", "name", false},
		{",omitempty", "Field", "Field", false},
		{"-", "Field", "", true},
		{"-,", "Field", "-", false},
	}
	for _, c := range cases {
		name, skip := JSONName(c.tag, c.fallback)
		if skip != c.skip || (!skip && name != c.want) {
			t.Errorf("JSONName(%q)=%q,%v want %q,%v", c.tag, name, skip, c.want, c.skip)
		}
	}
}
