// Package introspect holds the traversal state shared by every graph
// builder front-end: the node table under construction, the visiting set
// that breaks cycles, and a per-build conversion cache.
package introspect

import (
	typeschema "github.com/reoring/typeschema"
)

// Context builds one Graph. It is request-local: create a fresh Context per
// generation request and never share one across goroutines.
type Context struct {
	graph    *typeschema.Graph
	visiting map[any]struct{}
	cache    map[any]typeschema.Ref
}

// NewContext returns an empty builder context.
func NewContext() *Context {
	return &Context{
		graph:    typeschema.NewGraph(),
		visiting: make(map[any]struct{}),
		cache:    make(map[any]typeschema.Ref),
	}
}

// Graph returns the graph being built. Call Finish instead once traversal
// is complete.
func (c *Context) Graph() *typeschema.Graph { return c.graph }

// Finish sets the root reference and hands the graph over. The Context must
// not be reused afterwards.
func (c *Context) Finish(root typeschema.Ref) *typeschema.Graph {
	c.graph.Root = root
	return c.graph
}

// Resolve returns a named reference for the declaration identified by
// (handle, id), building and registering its node on first sight. It is the
// single entry point front-ends call, and it is safe to call reentrantly
// from inside build for nested fields.
//
// Cycles terminate by forward reference: if handle is already being visited
// the returned Ref(id) points at a node that does not exist in the table
// yet. That is fine downstream because the transformer resolves references
// as $ref strings, never as live pointers.
func (c *Context) Resolve(handle any, id typeschema.TypeID, build func() (typeschema.Node, error)) (typeschema.Ref, error) {
	if c.graph.Contains(id) {
		return typeschema.NamedRef(id), nil
	}
	if _, busy := c.visiting[handle]; busy {
		return typeschema.NamedRef(id), nil
	}
	c.visiting[handle] = struct{}{}
	n, err := build()
	if err != nil {
		delete(c.visiting, handle)
		return typeschema.Ref{}, err
	}
	c.graph.Add(id, n)
	delete(c.visiting, handle)
	return typeschema.NamedRef(id), nil
}

// Inline returns a cached inline reference for an anonymous or primitive
// handle, building the node once per context. The cache holds non-nullable
// refs only; callers layer nullability with Ref.AsNullable, which copies.
func (c *Context) Inline(handle any, build func() (typeschema.Node, error)) (typeschema.Ref, error) {
	if ref, ok := c.cache[handle]; ok {
		return ref, nil
	}
	n, err := build()
	if err != nil {
		return typeschema.Ref{}, err
	}
	ref := typeschema.InlineRef(n)
	c.cache[handle] = ref
	return ref, nil
}
