package memo

import "fmt"

// NodeKind distinguishes source nodes (written directly) from derived nodes
// (computed from other nodes).
type NodeKind string

const (
	KindSource  NodeKind = "source"
	KindDerived NodeKind = "derived"
)

// Descriptor is the shared, immutable definition of a node within a schema:
// its name, its kind, and (for derived nodes) its compute function. All
// per-instance state lives in the Graph, never here.
type Descriptor struct {
	name    string
	kind    NodeKind
	compute func(ctx *EvalCtx, args []any) (any, error)
	tags    map[any]any
}

// Name returns the node's name, unique within its schema.
func (d *Descriptor) Name() string {
	return d.name
}

// Kind returns whether the node is a source or derived node.
func (d *Descriptor) Kind() NodeKind {
	return d.kind
}

// GetTag retrieves a tag value from the descriptor.
func (d *Descriptor) GetTag(tag any) (any, bool) {
	val, ok := d.tags[tag]
	return val, ok
}

// SetTag stores a tag value on the descriptor.
func (d *Descriptor) SetTag(tag any, val any) {
	d.tags[tag] = val
}

// NodeOption is a modifier applied to a descriptor at definition time.
type NodeOption func(*Descriptor)

// WithTag returns an option that sets a tag on a node's descriptor.
func WithTag[T any](tag Tag[T], val T) NodeOption {
	return func(d *Descriptor) {
		tag.Set(d, val)
	}
}

// Schema is the set of node descriptors shared by every graph instance of a
// model type. Definition happens once, before any graph is created; schemas
// are immutable afterwards and safe to share.
type Schema struct {
	name  string
	nodes map[string]*Descriptor
	order []string
}

// NewSchema creates an empty schema.
func NewSchema(name string) *Schema {
	return &Schema{
		name:  name,
		nodes: make(map[string]*Descriptor),
	}
}

// Name returns the schema's name.
func (s *Schema) Name() string {
	return s.name
}

// Names returns all node names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Descriptor returns the descriptor for a node name.
func (s *Schema) Descriptor(name string) (*Descriptor, bool) {
	d, ok := s.nodes[name]
	return d, ok
}

func (s *Schema) define(name string, kind NodeKind, compute func(*EvalCtx, []any) (any, error), opts []NodeOption) *Descriptor {
	if _, exists := s.nodes[name]; exists {
		panic(fmt.Sprintf("memo: node %q already defined on schema %q", name, s.name))
	}

	d := &Descriptor{
		name:    name,
		kind:    kind,
		compute: compute,
		tags:    make(map[any]any),
	}

	for _, opt := range opts {
		opt(d)
	}

	s.nodes[name] = d
	s.order = append(s.order, name)
	return d
}

// Reader is the surface nodes are read through: a *Graph at top level, or an
// *EvalCtx inside a compute function.
type Reader interface {
	Graph() *Graph
}

// Source is a typed handle for a source node: an externally mutable leaf,
// written directly and never computed.
type Source[V any] struct {
	desc   *Descriptor
	schema *Schema
}

// DefineSource declares a source node on a schema.
func DefineSource[V any](s *Schema, name string, opts ...NodeOption) *Source[V] {
	return &Source[V]{
		desc:   s.define(name, KindSource, nil, opts),
		schema: s,
	}
}

// Descriptor returns the node's shared descriptor.
func (n *Source[V]) Descriptor() *Descriptor {
	return n.desc
}

// Get reads the node's current value. If a node is being evaluated, the read
// is recorded as one of its dependencies.
func (n *Source[V]) Get(r Reader) (V, error) {
	g := r.Graph()
	if g.schema != n.schema {
		var zero V
		return zero, &UnboundNodeError{Node: n.desc.name, Schema: g.schema.name}
	}

	val, err := g.readSource(n.desc)
	if err != nil {
		var zero V
		return zero, err
	}
	return assertValue[V](n.desc.name, val)
}

// Set writes a new value and invalidates every transitive dependent.
func (n *Source[V]) Set(g *Graph, val V) error {
	if g.schema != n.schema {
		return &UnboundNodeError{Node: n.desc.name, Schema: g.schema.name}
	}
	return g.Write(n.desc.name, val)
}

// Derived is a typed handle for a derived node: a value computed from other
// nodes and cached until one of them changes.
type Derived[V any] struct {
	desc   *Descriptor
	schema *Schema
}

// DefineDerived declares a derived node on a schema. The compute function
// receives an EvalCtx through which it reads other nodes; every node read
// during a run becomes a dependency of this one for that run.
func DefineDerived[V any](s *Schema, name string, compute func(ctx *EvalCtx, args ...any) (V, error), opts ...NodeOption) *Derived[V] {
	wrapped := func(ctx *EvalCtx, args []any) (any, error) {
		return compute(ctx, args...)
	}
	return &Derived[V]{
		desc:   s.define(name, KindDerived, wrapped, opts),
		schema: s,
	}
}

// Descriptor returns the node's shared descriptor.
func (n *Derived[V]) Descriptor() *Descriptor {
	return n.desc
}

// Eval returns the cached value, or runs the compute function if the node is
// not valid. The cache is not keyed by args: while the node stays valid, a
// call with different arguments returns the value computed for the previous
// call's arguments.
func (n *Derived[V]) Eval(r Reader, args ...any) (V, error) {
	g := r.Graph()
	if g.schema != n.schema {
		var zero V
		return zero, &UnboundNodeError{Node: n.desc.name, Schema: g.schema.name}
	}

	val, err := g.evalDerived(n.desc, args)
	if err != nil {
		var zero V
		return zero, err
	}
	return assertValue[V](n.desc.name, val)
}

// assertValue performs a safe type assertion on a node's cached value.
func assertValue[T any](node string, value any) (T, error) {
	if value == nil {
		var zero T
		return zero, nil
	}

	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("memo: node %q holds %T, expected %T", node, value, zero)
	}
	return typed, nil
}
