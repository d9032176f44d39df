// Package srcscan builds type graphs from Go source via go/packages,
// without executing or linking the scanned code. It is the compile-time
// counterpart of reflectscan; both feed the same transformer through the
// shared introspect.Context, so cycle handling and output are identical.
//
// srcscan sees things reflection cannot: doc comments become descriptions,
// const blocks of a named string type become enums, and interfaces become
// unions of the package-local types that implement them.
package srcscan

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"reflect"

	"golang.org/x/tools/go/packages"

	typeschema "github.com/reoring/typeschema"
	"github.com/reoring/typeschema/internal/tagparse"
	"github.com/reoring/typeschema/introspect"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Package is one loaded, type-checked package plus the AST-derived indexes
// (doc comments, const blocks, declaration order) graph building needs.
type Package struct {
	pkg  *packages.Package
	opts typeschema.DescriptionOptions

	typeDocs  map[string]string
	fieldDocs map[string]map[string]string
	enums     map[string][]enumValue
	declOrder []string
}

type enumValue struct {
	value string
	doc   string
}

// Option configures a Package at load time.
type Option func(*Package)

// WithDescriptionOptions overrides the annotation allow-lists used for
// description lookup.
func WithDescriptionOptions(o typeschema.DescriptionOptions) Option {
	return func(p *Package) { p.opts = o }
}

// Load type-checks the package rooted at dir.
func Load(dir string, opts ...Option) (*Package, error) {
	cfg := &packages.Config{Mode: loadMode, Dir: dir}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, fmt.Errorf("srcscan: loading %s: %w", dir, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("srcscan: no package found in %s", dir)
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, fmt.Errorf("srcscan: loading %s: %v", dir, pkg.Errors[0])
	}
	p := &Package{pkg: pkg, opts: typeschema.DefaultDescriptionOptions()}
	for _, o := range opts {
		o(p)
	}
	p.index()
	return p, nil
}

// Path returns the loaded package's import path.
func (p *Package) Path() string { return p.pkg.PkgPath }

// Graph builds a graph rooted at the named package-level type.
func (p *Package) Graph(typeName string) (*typeschema.Graph, error) {
	obj := p.pkg.Types.Scope().Lookup(typeName)
	if obj == nil {
		return nil, fmt.Errorf("srcscan: type %s not found in package %s", typeName, p.pkg.PkgPath)
	}
	tn, ok := obj.(*types.TypeName)
	if !ok {
		return nil, fmt.Errorf("srcscan: %s is not a type in package %s", typeName, p.pkg.PkgPath)
	}
	w := &walker{p: p, ctx: introspect.NewContext()}
	root, err := w.toRef(tn.Type())
	if err != nil {
		return nil, err
	}
	return w.ctx.Finish(root), nil
}

// index walks the ASTs once, recording type declaration order, doc
// comments, and string const blocks grouped by their named type.
func (p *Package) index() {
	p.typeDocs = make(map[string]string)
	p.fieldDocs = make(map[string]map[string]string)
	p.enums = make(map[string][]enumValue)

	for _, f := range p.pkg.Syntax {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok {
				continue
			}
			switch gd.Tok {
			case token.TYPE:
				for _, spec := range gd.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}
					p.indexType(gd, ts)
				}
			case token.CONST:
				for _, spec := range gd.Specs {
					vs, ok := spec.(*ast.ValueSpec)
					if !ok {
						continue
					}
					p.indexConsts(vs)
				}
			}
		}
	}
}

func (p *Package) indexType(gd *ast.GenDecl, ts *ast.TypeSpec) {
	name := ts.Name.Name
	p.declOrder = append(p.declOrder, name)

	doc := ts.Doc
	if doc == nil && len(gd.Specs) == 1 {
		doc = gd.Doc
	}
	if doc != nil {
		p.typeDocs[name] = cleanDoc(doc.Text())
	}

	st, ok := ts.Type.(*ast.StructType)
	if !ok {
		return
	}
	fd := make(map[string]string)
	for _, field := range st.Fields.List {
		text := ""
		if field.Doc != nil {
			text = field.Doc.Text()
		} else if field.Comment != nil {
			text = field.Comment.Text()
		}
		if text == "" {
			continue
		}
		for _, nm := range field.Names {
			fd[nm.Name] = cleanDoc(text)
		}
	}
	if len(fd) > 0 {
		p.fieldDocs[name] = fd
	}
}

func (p *Package) indexConsts(vs *ast.ValueSpec) {
	for _, nm := range vs.Names {
		c, ok := p.pkg.TypesInfo.Defs[nm].(*types.Const)
		if !ok {
			continue
		}
		named, ok := c.Type().(*types.Named)
		if !ok || named.Obj().Pkg() != p.pkg.Types {
			continue
		}
		basic, ok := named.Underlying().(*types.Basic)
		if !ok || basic.Info()&types.IsString == 0 {
			continue
		}
		doc := ""
		if vs.Doc != nil {
			doc = cleanDoc(vs.Doc.Text())
		} else if vs.Comment != nil {
			doc = cleanDoc(vs.Comment.Text())
		}
		p.enums[named.Obj().Name()] = append(p.enums[named.Obj().Name()], enumValue{
			value: constant.StringVal(c.Val()),
			doc:   doc,
		})
	}
}

// walker is the per-request traversal state.
type walker struct {
	p   *Package
	ctx *introspect.Context
}

func (w *walker) toRef(t types.Type) (typeschema.Ref, error) {
	switch t := t.(type) {
	case *types.Pointer:
		ref, err := w.toRef(t.Elem())
		if err != nil {
			return typeschema.Ref{}, err
		}
		return ref.AsNullable(), nil

	case *types.Named:
		return w.namedRef(t)

	case *types.Basic:
		return w.primitiveRef(t)

	case *types.Slice:
		elem, err := w.toRef(t.Elem())
		if err != nil {
			return typeschema.Ref{}, err
		}
		return typeschema.InlineRef(&typeschema.Array{Elem: elem}), nil

	case *types.Array:
		elem, err := w.toRef(t.Elem())
		if err != nil {
			return typeschema.Ref{}, err
		}
		n := int(t.Len())
		return typeschema.InlineRef(&typeschema.Array{Elem: elem, MinItems: &n, MaxItems: &n}), nil

	case *types.Map:
		if b, ok := t.Key().Underlying().(*types.Basic); !ok || b.Info()&types.IsString == 0 {
			return typeschema.Ref{}, fmt.Errorf("srcscan: map key of %s must be a string", t)
		}
		value, err := w.toRef(t.Elem())
		if err != nil {
			return typeschema.Ref{}, err
		}
		return typeschema.InlineRef(&typeschema.Map{Value: value}), nil

	case *types.Struct:
		return w.ctx.Inline(t, func() (typeschema.Node, error) {
			obj := &typeschema.Object{}
			if err := w.appendFields(obj, "", t, make(map[*types.TypeName]struct{})); err != nil {
				return nil, err
			}
			return obj, nil
		})
	}

	return typeschema.Ref{}, fmt.Errorf("srcscan: unsupported type %s", t)
}

func (w *walker) namedRef(t *types.Named) (typeschema.Ref, error) {
	obj := t.Obj()
	if obj.Pkg() != nil && obj.Pkg().Path() == "time" && obj.Name() == "Time" {
		return w.ctx.Inline(t, func() (typeschema.Node, error) {
			return &typeschema.Primitive{Name: typeschema.String}, nil
		})
	}

	id := declID(obj)
	local := obj.Pkg() == w.p.pkg.Types

	switch u := t.Underlying().(type) {
	case *types.Struct:
		return w.ctx.Resolve(t, id, func() (typeschema.Node, error) {
			return w.buildObject(t, u, local)
		})

	case *types.Basic:
		if local && u.Info()&types.IsString != 0 {
			if values := w.p.enums[obj.Name()]; len(values) > 0 {
				return w.ctx.Resolve(t, id, func() (typeschema.Node, error) {
					return w.buildEnum(obj.Name(), values), nil
				})
			}
		}
		return w.primitiveRef(u)

	case *types.Interface:
		return w.ctx.Resolve(t, id, func() (typeschema.Node, error) {
			return w.buildUnion(t, u, local)
		})

	default:
		// named slices, maps and other aliases reduce to their shape
		return w.toRef(t.Underlying())
	}
}

func (w *walker) primitiveRef(b *types.Basic) (typeschema.Ref, error) {
	name, err := primitiveName(b)
	if err != nil {
		return typeschema.Ref{}, err
	}
	return w.ctx.Inline(b, func() (typeschema.Node, error) {
		return &typeschema.Primitive{Name: name}, nil
	})
}

func primitiveName(b *types.Basic) (typeschema.PrimitiveName, error) {
	info := b.Info()
	switch {
	case info&types.IsBoolean != 0:
		return typeschema.Boolean, nil
	case info&types.IsInteger != 0:
		return typeschema.Integer, nil
	case info&types.IsFloat != 0:
		return typeschema.Number, nil
	case info&types.IsString != 0:
		return typeschema.String, nil
	}
	return "", fmt.Errorf("srcscan: unsupported basic type %s", b)
}

func (w *walker) buildObject(t *types.Named, st *types.Struct, local bool) (typeschema.Node, error) {
	name := t.Obj().Name()
	obj := &typeschema.Object{Info: typeschema.Info{Name: name}}
	if local {
		obj.Description = w.p.typeDocs[name]
	}
	owner := ""
	if local {
		owner = name
	}
	if err := w.appendFields(obj, owner, st, map[*types.TypeName]struct{}{t.Obj(): {}}); err != nil {
		return nil, err
	}
	return obj, nil
}

func (w *walker) buildEnum(name string, values []enumValue) typeschema.Node {
	e := &typeschema.Enum{
		Info:   typeschema.Info{Name: name, Description: w.p.typeDocs[name]},
		Values: make([]string, 0, len(values)),
	}
	for _, v := range values {
		e.Values = append(e.Values, v.value)
		if v.doc != "" {
			if e.ValueDescriptions == nil {
				e.ValueDescriptions = make(map[string]string)
			}
			e.ValueDescriptions[v.value] = v.doc
		}
	}
	return e
}

// buildUnion collects the package-local named types implementing the
// interface, in declaration order; those are the union's variants.
func (w *walker) buildUnion(t *types.Named, iface *types.Interface, local bool) (typeschema.Node, error) {
	name := t.Obj().Name()
	u := &typeschema.Union{Info: typeschema.Info{Name: name}}
	if local {
		u.Description = w.p.typeDocs[name]
	}
	scope := w.p.pkg.Types.Scope()
	for _, tname := range w.p.declOrder {
		tn, ok := scope.Lookup(tname).(*types.TypeName)
		if !ok {
			continue
		}
		vt := tn.Type()
		if vt == t.Obj().Type() || types.IsInterface(vt) {
			continue
		}
		if !types.Implements(vt, iface) && !types.Implements(types.NewPointer(vt), iface) {
			continue
		}
		ref, err := w.toRef(vt)
		if err != nil {
			return nil, err
		}
		u.Variants = append(u.Variants, typeschema.Variant{Label: tname, Ref: ref})
	}
	if len(u.Variants) == 0 {
		return nil, fmt.Errorf("srcscan: interface %s has no implementations in package %s", name, w.p.pkg.PkgPath)
	}
	return u, nil
}

// appendFields flattens st's fields into obj. seen holds the named types of
// the current flattening expansion: a type that embeds itself, directly or
// through another embedded struct, flattens once and stops, the same way
// encoding/json terminates on recursive embeddings.
func (w *walker) appendFields(obj *typeschema.Object, owner string, st *types.Struct, seen map[*types.TypeName]struct{}) error {
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Exported() {
			continue
		}
		tag := reflect.StructTag(st.Tag(i))
		name, skip := tagparse.JSONName(tag.Get("json"), f.Name())
		if skip {
			continue
		}
		if f.Embedded() && tag.Get("json") == "" {
			ft := f.Type()
			if p, ok := ft.(*types.Pointer); ok {
				ft = p.Elem()
			}
			if est, ok := ft.Underlying().(*types.Struct); ok {
				eowner := ""
				if n, ok := ft.(*types.Named); ok {
					if _, busy := seen[n.Obj()]; busy {
						continue
					}
					seen[n.Obj()] = struct{}{}
					if n.Obj().Pkg() == w.p.pkg.Types {
						eowner = n.Obj().Name()
					}
				}
				if err := w.appendFields(obj, eowner, est, seen); err != nil {
					return err
				}
				continue
			}
		}

		prop, err := w.buildProperty(owner, name, f, tag)
		if err != nil {
			return err
		}
		obj.Properties = append(obj.Properties, prop)
	}
	return nil
}

func (w *walker) buildProperty(owner, name string, f *types.Var, tag reflect.StructTag) (typeschema.Property, error) {
	st := tagparse.Parse(tag.Get("jsonschema"))

	var ref typeschema.Ref
	if len(st.Enum) > 0 && isStringKind(f.Type()) {
		ref = typeschema.InlineRef(&typeschema.Enum{Values: st.Enum})
		if _, ok := f.Type().(*types.Pointer); ok {
			ref = ref.AsNullable()
		}
	} else {
		var err error
		ref, err = w.toRef(f.Type())
		if err != nil {
			return typeschema.Property{}, err
		}
	}

	prop := typeschema.Property{
		Name:    name,
		Value:   ref,
		Minimum: st.Minimum,
		Maximum: st.Maximum,
	}

	doc := ""
	if owner != "" {
		doc = w.p.fieldDocs[owner][f.Name()]
	}
	desc, _ := typeschema.Description(fieldAnnotations(tag, st, doc), w.p.opts)
	prop.Description = desc

	raw := st.DefaultRaw
	if raw == nil {
		if d, ok := tag.Lookup("default"); ok {
			raw = &d
		}
	}
	if raw != nil {
		dv, err := parseDefault(*raw, f.Type())
		if err != nil {
			return typeschema.Property{}, fmt.Errorf("srcscan: field %s: %w", name, err)
		}
		prop.Default = dv
		prop.HasDefault = true
	}
	return prop, nil
}
