package memo

import (
	"sort"
)

// Graph holds the per-instance state of every node in a schema: cached
// values, validity, and the dependency edges discovered at evaluation time.
// A Graph is the per-model-instance context; descriptors stay on the shared
// schema, everything mutable lives here.
//
// A Graph is owned by a single goroutine. Evaluation is reentrant along one
// call stack (a compute function may read further nodes), which is why there
// is exactly one watch stack and no locking.
type Graph struct {
	schema     *Schema
	states     map[string]*nodeState
	watch      watchStack
	extensions []Extension
	tags       map[any]any
}

// Option is a modifier for graphs.
type Option func(*Graph)

// WithExtension returns an option that registers an extension on a graph.
func WithExtension(ext Extension) Option {
	return func(g *Graph) {
		if err := g.UseExtension(ext); err != nil {
			panic(err)
		}
	}
}

// WithGraphTag returns an option that sets a tag on a graph.
func WithGraphTag[T any](tag Tag[T], val T) Option {
	return func(g *Graph) {
		tag.SetOnGraph(g, val)
	}
}

// New creates a graph instance over a schema. Node state is allocated
// lazily, the first time each node is touched.
func New(schema *Schema, opts ...Option) *Graph {
	g := &Graph{
		schema: schema,
		states: make(map[string]*nodeState),
		tags:   make(map[any]any),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Graph returns the graph itself, satisfying Reader.
func (g *Graph) Graph() *Graph {
	return g
}

// Schema returns the schema this graph instantiates.
func (g *Graph) Schema() *Schema {
	return g.schema
}

// UseExtension registers an extension on the graph.
func (g *Graph) UseExtension(ext Extension) error {
	g.extensions = append(g.extensions, ext)
	return ext.Init(g)
}

// GetTag retrieves a tag value from the graph.
func (g *Graph) GetTag(tag any) (any, bool) {
	val, ok := g.tags[tag]
	return val, ok
}

// SetTag stores a tag value on the graph.
func (g *Graph) SetTag(tag any, val any) {
	g.tags[tag] = val
}

// descriptor resolves a node name against the schema.
func (g *Graph) descriptor(name string) (*Descriptor, error) {
	desc, ok := g.schema.nodes[name]
	if !ok {
		return nil, &UnboundNodeError{Node: name, Schema: g.schema.name}
	}
	return desc, nil
}

// state returns the node's per-instance state, creating it on first touch.
func (g *Graph) state(name string) *nodeState {
	st, ok := g.states[name]
	if !ok {
		st = newNodeState()
		g.states[name] = st
	}
	return st
}

// Read returns a node's current value by name. Source nodes return their
// stored value; derived nodes evaluate with no arguments.
func (g *Graph) Read(name string) (any, error) {
	desc, err := g.descriptor(name)
	if err != nil {
		return nil, err
	}
	if desc.kind == KindSource {
		return g.readSource(desc)
	}
	return g.evalDerived(desc, nil)
}

// Eval evaluates a node by name, passing args through to the compute
// function of a derived node. For a source node it behaves like Read.
func (g *Graph) Eval(name string, args ...any) (any, error) {
	desc, err := g.descriptor(name)
	if err != nil {
		return nil, err
	}
	if desc.kind == KindSource {
		return g.readSource(desc)
	}
	return g.evalDerived(desc, args)
}

// Write stores a new value on a source node, marks it valid, and invalidates
// its whole downstream closure. Writing a derived node is an error.
func (g *Graph) Write(name string, value any) error {
	desc, err := g.descriptor(name)
	if err != nil {
		return err
	}
	if desc.kind != KindSource {
		return &NotWritableError{Node: name}
	}

	op := &Operation{Kind: OpWrite, Node: name, Graph: g}

	next := func() (any, error) {
		st := g.state(name)
		st.value = value
		st.valid = true
		g.invalidateDependents(name)
		return nil, nil
	}

	for i := len(g.extensions) - 1; i >= 0; i-- {
		ext := g.extensions[i]
		currentNext := next
		next = func() (any, error) {
			return ext.Wrap(currentNext, op)
		}
	}

	if _, err := next(); err != nil {
		for _, ext := range g.extensions {
			ext.OnError(err, op, g)
		}
		return err
	}
	return nil
}

// Node returns the descriptor and a state snapshot for a node, for
// introspection. It does not read the node's value and records no edges.
func (g *Graph) Node(name string) (*Descriptor, NodeInfo, error) {
	desc, err := g.descriptor(name)
	if err != nil {
		return nil, NodeInfo{}, err
	}
	if st, ok := g.states[name]; ok {
		return desc, st.snapshot(name), nil
	}
	return desc, NodeInfo{Name: name}, nil
}

// Edges exports the dependent adjacency (node -> nodes that read it), with
// sorted edge lists. Used by debug tooling.
func (g *Graph) Edges() map[string][]string {
	edges := make(map[string][]string, len(g.states))
	for name, st := range g.states {
		if len(st.children) == 0 {
			continue
		}
		edges[name] = sortedNames(st.children)
	}
	return edges
}

// Dispose runs every outstanding invalidation hook and disposes all
// extensions. The graph should not be used afterwards.
func (g *Graph) Dispose() error {
	names := make([]string, 0, len(g.states))
	for name := range g.states {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		g.runHooks(name, g.states[name], "dispose")
	}

	for _, ext := range g.extensions {
		if err := ext.Dispose(g); err != nil {
			return err
		}
	}
	return nil
}

// registerRead records name as a dependency of the node being evaluated, if
// any. Duplicate edges collapse; reads outside any evaluation record nothing.
func (g *Graph) registerRead(name string) {
	watcher, ok := g.watch.active()
	if !ok {
		return
	}
	g.state(watcher).parents[name] = struct{}{}
	g.state(name).children[watcher] = struct{}{}
}

// readSource returns a source node's stored value, recording the dependency
// edge first so even a failed read of an unset node is attributed.
func (g *Graph) readSource(desc *Descriptor) (any, error) {
	g.registerRead(desc.name)

	st := g.state(desc.name)
	if !st.valid {
		return nil, &UnsetValueError{Node: desc.name}
	}
	return st.value, nil
}

// evalDerived returns a derived node's cached value or recomputes it. The
// dependency set is rebuilt from scratch on every run: edges from the
// previous evaluation are dropped first, then reads made by the compute
// function re-create exactly the edges that hold now.
func (g *Graph) evalDerived(desc *Descriptor, args []any) (any, error) {
	g.registerRead(desc.name)

	st := g.state(desc.name)
	if st.valid {
		// Cache hits ignore args: one slot per node, not per argument tuple.
		return st.value, nil
	}

	// Cycle check first: a cyclic evaluation must not touch the edges of a
	// node still being evaluated higher up the stack.
	if err := g.watch.push(desc.name); err != nil {
		return nil, err
	}
	defer g.watch.pop()

	g.dropParentEdges(desc.name, st)

	op := &Operation{Kind: OpEval, Node: desc.name, Graph: g}
	ctx := &EvalCtx{graph: g, node: desc.name}

	next := func() (any, error) {
		return desc.compute(ctx, args)
	}
	for i := len(g.extensions) - 1; i >= 0; i-- {
		ext := g.extensions[i]
		currentNext := next
		next = func() (any, error) {
			return ext.Wrap(currentNext, op)
		}
	}

	value, err := next()
	if err != nil {
		for _, ext := range g.extensions {
			ext.OnError(err, op, g)
		}
		return nil, &EvalError{Node: desc.name, Cause: err}
	}

	st.value = value
	st.valid = true
	st.hooks = ctx.hooks
	return value, nil
}

// dropParentEdges removes the node's outgoing dependency edges, in both
// directions, ahead of a re-evaluation.
func (g *Graph) dropParentEdges(name string, st *nodeState) {
	for parent := range st.parents {
		if ps, ok := g.states[parent]; ok {
			delete(ps.children, name)
		}
	}
	clear(st.parents)
}

// invalidateDependents marks every node in the dependent closure of name
// invalid and clears its value. Traversal is iterative with a visited set
// and short-circuits nodes that are already invalid, so a diamond-shaped
// graph costs the size of the affected subgraph, not the number of paths.
func (g *Graph) invalidateDependents(name string) {
	st, ok := g.states[name]
	if !ok {
		return
	}

	stack := make([]string, 0, len(st.children))
	for child := range st.children {
		stack = append(stack, child)
	}

	visited := map[string]bool{name: true}
	var invalidated []string

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[current] {
			continue
		}
		visited[current] = true

		cs, ok := g.states[current]
		if !ok || !cs.valid {
			// Already invalid; its dependents were invalidated with it.
			continue
		}

		cs.valid = false
		cs.value = nil
		g.runHooks(current, cs, "invalidate")
		invalidated = append(invalidated, current)

		for child := range cs.children {
			if !visited[child] {
				stack = append(stack, child)
			}
		}
	}

	if len(invalidated) > 0 {
		for _, ext := range g.extensions {
			ext.OnInvalidate(g, invalidated)
		}
	}
}

// runHooks runs and clears a node's invalidation hooks in reverse
// registration order. Hook failures go to extensions; invalidation itself
// never fails.
func (g *Graph) runHooks(name string, st *nodeState, hookContext string) {
	if st == nil || len(st.hooks) == 0 {
		return
	}
	entries := st.hooks
	st.hooks = nil

	for i := len(entries) - 1; i >= 0; i-- {
		if err := entries[i].fn(); err != nil {
			hookErr := &HookError{
				Node:    name,
				Context: hookContext,
				Err:     err,
			}
			for _, ext := range g.extensions {
				if ext.OnHookError(hookErr) {
					break
				}
			}
		}
	}
}
