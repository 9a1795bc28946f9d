package memo

// EvalCtx is passed to a derived node's compute function. Node reads made
// through it are attributed to the node being evaluated.
type EvalCtx struct {
	graph *Graph
	node  string
	hooks []hookEntry
}

// Graph returns the owning graph, satisfying Reader.
func (ctx *EvalCtx) Graph() *Graph {
	return ctx.graph
}

// Node returns the name of the node being evaluated.
func (ctx *EvalCtx) Node() string {
	return ctx.node
}

// OnInvalidate registers a hook to run when this node's cached value is
// invalidated, or when the graph is disposed. Hooks run in reverse
// registration order. A hook survives exactly one cached value: it is
// registered again by the next successful evaluation, or not at all.
func (ctx *EvalCtx) OnInvalidate(fn func() error) {
	ctx.hooks = append(ctx.hooks, hookEntry{
		fn:    fn,
		order: len(ctx.hooks),
	})
}

// GetTag retrieves a typed tag value from the graph.
func GetTag[T any](ctx *EvalCtx, tag Tag[T]) (T, bool) {
	return tag.GetFromGraph(ctx.graph)
}

// GetTagOrDefault retrieves a typed tag value from the graph or returns a
// default value.
func GetTagOrDefault[T any](ctx *EvalCtx, tag Tag[T], defaultVal T) T {
	if val, ok := tag.GetFromGraph(ctx.graph); ok {
		return val
	}
	return defaultVal
}
