package memo

// OpKind identifies the graph operation an extension is observing.
type OpKind string

const (
	OpEval  OpKind = "eval"
	OpWrite OpKind = "write"
)

// Operation describes a graph operation passing through the extension chain.
type Operation struct {
	Kind  OpKind
	Node  string
	Graph *Graph
}

// Extension hooks into graph operations for cross-cutting concerns such as
// logging, metrics, or debugging. Extensions wrap evaluation and write
// operations middleware-style: the last registered extension wraps first.
type Extension interface {
	// Name identifies the extension.
	Name() string

	// Init is called when the extension is registered on a graph.
	Init(g *Graph) error

	// Wrap intercepts an operation. Call next to proceed.
	Wrap(next func() (any, error), op *Operation) (any, error)

	// OnError is called when an operation fails.
	OnError(err error, op *Operation, g *Graph)

	// OnInvalidate is called after a write with the names of every node the
	// write invalidated.
	OnInvalidate(g *Graph, nodes []string)

	// OnHookError handles an invalidation hook failure. Returning true marks
	// the error handled and stops propagation to later extensions.
	OnHookError(err *HookError) bool

	// Dispose is called when the graph is disposed.
	Dispose(g *Graph) error
}

// BaseExtension provides no-op defaults for all Extension methods. Embed it
// and override what you need.
type BaseExtension struct {
	name string
}

// NewBaseExtension creates a base extension with a name.
func NewBaseExtension(name string) BaseExtension {
	return BaseExtension{name: name}
}

func (e *BaseExtension) Name() string {
	return e.name
}

func (e *BaseExtension) Init(g *Graph) error {
	return nil
}

func (e *BaseExtension) Wrap(next func() (any, error), op *Operation) (any, error) {
	return next()
}

func (e *BaseExtension) OnError(err error, op *Operation, g *Graph) {}

func (e *BaseExtension) OnInvalidate(g *Graph, nodes []string) {}

func (e *BaseExtension) OnHookError(err *HookError) bool {
	return false
}

func (e *BaseExtension) Dispose(g *Graph) error {
	return nil
}
