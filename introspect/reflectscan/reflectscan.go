// Package reflectscan builds type graphs from live Go values using runtime
// reflection. It is the runtime counterpart of srcscan; both feed the same
// transformer through the shared introspect.Context.
package reflectscan

import (
	"fmt"
	"reflect"
	"time"

	typeschema "github.com/reoring/typeschema"
	"github.com/reoring/typeschema/internal/tagparse"
	"github.com/reoring/typeschema/introspect"
)

// Enumer marks a named string type as a closed value set. Types implement
// it to surface their legal values to the scanner at runtime.
type Enumer interface {
	Enum() []string
}

var enumerType = reflect.TypeOf((*Enumer)(nil)).Elem()
var timeType = reflect.TypeOf(time.Time{})

// Scanner converts reflect types into graphs. A Scanner carries only
// configuration (union registrations, description options) and may be
// reused; every Scan builds its own Context, so concurrent Scans are safe.
type Scanner struct {
	opts   typeschema.DescriptionOptions
	unions map[reflect.Type][]reflect.Type
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithDescriptionOptions overrides the annotation allow-lists used for
// struct tag description lookup.
func WithDescriptionOptions(o typeschema.DescriptionOptions) Option {
	return func(s *Scanner) { s.opts = o }
}

// New returns a Scanner with the built-in description conventions.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		opts:   typeschema.DefaultDescriptionOptions(),
		unions: make(map[reflect.Type][]reflect.Type),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Union registers the concrete variants of an interface type, since Go
// interfaces carry no implementer list at runtime. Pass the interface as a
// nil pointer and variants as zero values:
//
//	s.Union((*Shape)(nil), Circle{}, Rectangle{})
//
// Variant order becomes oneOf order; the discriminator label is the
// variant's simple type name.
func (s *Scanner) Union(iface any, variants ...any) *Scanner {
	it := reflect.TypeOf(iface)
	for it != nil && it.Kind() == reflect.Ptr {
		it = it.Elem()
	}
	if it == nil || it.Kind() != reflect.Interface {
		panic("reflectscan: Union expects a nil interface pointer such as (*Shape)(nil)")
	}
	vts := make([]reflect.Type, 0, len(variants))
	for _, v := range variants {
		vts = append(vts, reflect.TypeOf(v))
	}
	s.unions[it] = vts
	return s
}

// Scan builds a graph rooted at v's type. v may be a value or a
// reflect.Type.
func (s *Scanner) Scan(v any) (*typeschema.Graph, error) {
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	if t == nil {
		return nil, fmt.Errorf("reflectscan: cannot scan untyped nil")
	}
	w := &walker{scanner: s, ctx: introspect.NewContext()}
	root, err := w.toRef(t)
	if err != nil {
		return nil, err
	}
	return w.ctx.Finish(root), nil
}

// Scan is the one-shot convenience over New().Scan.
func Scan(v any) (*typeschema.Graph, error) { return New().Scan(v) }

// walker is the per-request traversal state.
type walker struct {
	scanner *Scanner
	ctx     *introspect.Context
}

func typeID(t reflect.Type) typeschema.TypeID {
	return typeschema.TypeID(t.PkgPath() + "." + t.Name())
}

func (w *walker) toRef(t reflect.Type) (typeschema.Ref, error) {
	if t.Kind() == reflect.Ptr {
		ref, err := w.toRef(t.Elem())
		if err != nil {
			return typeschema.Ref{}, err
		}
		return ref.AsNullable(), nil
	}

	if variants, ok := w.scanner.unions[t]; ok {
		return w.ctx.Resolve(t, typeID(t), func() (typeschema.Node, error) {
			return w.buildUnion(t, variants)
		})
	}

	if t == timeType {
		return w.ctx.Inline(t, func() (typeschema.Node, error) {
			return &typeschema.Primitive{Name: typeschema.String}, nil
		})
	}

	if t.Kind() == reflect.String && t.Name() != "" && t.PkgPath() != "" {
		if values, ok := enumValues(t); ok {
			return w.ctx.Resolve(t, typeID(t), func() (typeschema.Node, error) {
				return &typeschema.Enum{
					Info:   typeschema.Info{Name: t.Name()},
					Values: values,
				}, nil
			})
		}
	}

	switch t.Kind() {
	case reflect.Struct:
		if t.Name() == "" {
			return w.ctx.Inline(t, func() (typeschema.Node, error) {
				return w.buildObject(t)
			})
		}
		return w.ctx.Resolve(t, typeID(t), func() (typeschema.Node, error) {
			return w.buildObject(t)
		})

	case reflect.String:
		return w.ctx.Inline(t, func() (typeschema.Node, error) {
			return &typeschema.Primitive{Name: typeschema.String}, nil
		})

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return w.ctx.Inline(t, func() (typeschema.Node, error) {
			return &typeschema.Primitive{Name: typeschema.Integer}, nil
		})

	case reflect.Float32, reflect.Float64:
		return w.ctx.Inline(t, func() (typeschema.Node, error) {
			return &typeschema.Primitive{Name: typeschema.Number}, nil
		})

	case reflect.Bool:
		return w.ctx.Inline(t, func() (typeschema.Node, error) {
			return &typeschema.Primitive{Name: typeschema.Boolean}, nil
		})

	case reflect.Slice, reflect.Array:
		elem, err := w.toRef(t.Elem())
		if err != nil {
			return typeschema.Ref{}, err
		}
		return typeschema.InlineRef(&typeschema.Array{Elem: elem}), nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return typeschema.Ref{}, fmt.Errorf("reflectscan: map key of %s must be a string", t)
		}
		value, err := w.toRef(t.Elem())
		if err != nil {
			return typeschema.Ref{}, err
		}
		return typeschema.InlineRef(&typeschema.Map{Value: value}), nil

	case reflect.Interface:
		return typeschema.Ref{}, fmt.Errorf("reflectscan: interface %s has no registered variants; call Scanner.Union first", t)
	}

	return typeschema.Ref{}, fmt.Errorf("reflectscan: unsupported type %s", t)
}

func (w *walker) buildUnion(t reflect.Type, variants []reflect.Type) (typeschema.Node, error) {
	u := &typeschema.Union{Info: typeschema.Info{Name: t.Name()}}
	for _, vt := range variants {
		ref, err := w.toRef(vt)
		if err != nil {
			return nil, err
		}
		u.Variants = append(u.Variants, typeschema.Variant{Label: simpleName(vt), Ref: ref})
	}
	return u, nil
}

func (w *walker) buildObject(t reflect.Type) (typeschema.Node, error) {
	obj := &typeschema.Object{Info: typeschema.Info{Name: t.Name()}}
	if err := w.appendFields(obj, t, map[reflect.Type]struct{}{t: {}}); err != nil {
		return nil, err
	}
	return obj, nil
}

// appendFields flattens t's fields into obj. seen holds the struct types of
// the current flattening expansion: a type that embeds itself, directly or
// through another embedded struct, flattens once and stops, the same way
// encoding/json terminates on recursive embeddings.
func (w *walker) appendFields(obj *typeschema.Object, t reflect.Type, seen map[reflect.Type]struct{}) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, skip := tagparse.JSONName(f.Tag.Get("json"), f.Name)
		if skip {
			continue
		}
		// anonymous embedded structs without an explicit json name flatten,
		// matching encoding/json
		if f.Anonymous && f.Tag.Get("json") == "" {
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if _, busy := seen[ft]; busy {
					continue
				}
				seen[ft] = struct{}{}
				if err := w.appendFields(obj, ft, seen); err != nil {
					return err
				}
				continue
			}
		}

		prop, err := w.buildProperty(name, f)
		if err != nil {
			return err
		}
		obj.Properties = append(obj.Properties, prop)
	}
	return nil
}

func (w *walker) buildProperty(name string, f reflect.StructField) (typeschema.Property, error) {
	tag := tagparse.Parse(f.Tag.Get("jsonschema"))

	var ref typeschema.Ref
	if len(tag.Enum) > 0 && baseKind(f.Type) == reflect.String {
		ref = typeschema.InlineRef(&typeschema.Enum{Values: tag.Enum})
		if f.Type.Kind() == reflect.Ptr {
			ref = ref.AsNullable()
		}
	} else {
		var err error
		ref, err = w.toRef(f.Type)
		if err != nil {
			return typeschema.Property{}, err
		}
	}

	prop := typeschema.Property{
		Name:    name,
		Value:   ref,
		Minimum: tag.Minimum,
		Maximum: tag.Maximum,
	}

	desc, _ := typeschema.Description(fieldAnnotations(f, tag), w.scanner.opts)
	prop.Description = desc

	if raw := defaultRaw(f, tag); raw != nil {
		dv, err := parseDefault(*raw, f.Type)
		if err != nil {
			return typeschema.Property{}, fmt.Errorf("reflectscan: field %s: %w", name, err)
		}
		prop.Default = dv
		prop.HasDefault = true
	}
	return prop, nil
}

func baseKind(t reflect.Type) reflect.Kind {
	if t.Kind() == reflect.Ptr {
		return t.Elem().Kind()
	}
	return t.Kind()
}

func simpleName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

func enumValues(t reflect.Type) ([]string, bool) {
	if t.Implements(enumerType) {
		return reflect.Zero(t).Interface().(Enumer).Enum(), true
	}
	if reflect.PtrTo(t).Implements(enumerType) {
		return reflect.New(t).Interface().(Enumer).Enum(), true
	}
	return nil, false
}
