package typeschema

// TypeID is the stable identity of a named declaration. Front-ends produce
// it as "<import path>.<type name>"; two TypeIDs are equal iff they denote
// the same declaration.
type TypeID string

// Ref is a usage-site pointer to a type: either an inline anonymous node or
// a named reference into a Graph's node table. Nullability belongs to the
// reference, never to the referenced node.
type Ref struct {
	Inline   Node
	ID       TypeID
	Nullable bool
}

// InlineRef wraps an anonymous node as a reference.
func InlineRef(n Node) Ref { return Ref{Inline: n} }

// NamedRef points at a node registered (or about to be registered, for
// forward references) under id.
func NamedRef(id TypeID) Ref { return Ref{ID: id} }

// IsNamed reports whether the reference resolves through the node table.
func (r Ref) IsNamed() bool { return r.ID != "" }

// AsNullable returns a copy of the reference marked nullable.
func (r Ref) AsNullable() Ref {
	r.Nullable = true
	return r
}

// Graph is the unified IR handed from an introspector to the transformer:
// a root reference plus an insertion-ordered node table. Insertion order is
// preserved so $defs output is deterministic and diffable.
//
// A Graph is request-local: built once, transformed once, never shared
// across goroutines.
type Graph struct {
	Root  Ref
	nodes map[TypeID]Node
	order []TypeID
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[TypeID]Node)}
}

// Add registers a node under id. The first registration wins; re-adding an
// id is a no-op so reentrant introspection cannot clobber a finished node.
func (g *Graph) Add(id TypeID, n Node) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = n
	g.order = append(g.order, id)
}

// Node resolves id against the table.
func (g *Graph) Node(id TypeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Contains reports whether id is registered.
func (g *Graph) Contains(id TypeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// IDs returns the registered ids in insertion order. The returned slice is
// shared; callers must not mutate it.
func (g *Graph) IDs() []TypeID { return g.order }

// Len returns the number of registered nodes.
func (g *Graph) Len() int { return len(g.order) }
