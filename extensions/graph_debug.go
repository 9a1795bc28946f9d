package extensions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m1gwings/treedrawer/tree"

	memo "github.com/memo-fn/memo-go"
)

// LabelTag attaches a human-readable label to a node descriptor. The debug
// extension prefers it over the node name when rendering.
var LabelTag = memo.NewTag[string]("node.label")

// GraphDebugExtension logs a rendering of the dependent subgraph when an
// operation fails.
//
// Usage:
//
//	// Structured JSON logging
//	ext := extensions.NewGraphDebugExtension(slog.NewJSONHandler(os.Stderr, nil))
//
//	// Silent (for testing)
//	ext := extensions.NewGraphDebugExtension(extensions.NewSilentHandler())
//
// The extension logs at ERROR level and tracks which nodes evaluated
// successfully and which failed, annotating the rendered tree accordingly.
type GraphDebugExtension struct {
	memo.BaseExtension

	evaluated map[string]bool
	failed    map[string]error
	logger    *slog.Logger
}

// NewGraphDebugExtension creates a graph debug extension logging through the
// given handler.
func NewGraphDebugExtension(logHandler slog.Handler) *GraphDebugExtension {
	return &GraphDebugExtension{
		BaseExtension: memo.NewBaseExtension("graph-debug"),
		evaluated:     make(map[string]bool),
		failed:        make(map[string]error),
		logger:        slog.New(logHandler),
	}
}

// Wrap tracks evaluation outcomes for later rendering.
func (e *GraphDebugExtension) Wrap(next func() (any, error), op *memo.Operation) (any, error) {
	result, err := next()

	if op.Kind == memo.OpEval {
		if err == nil {
			e.evaluated[op.Node] = true
			delete(e.failed, op.Node)
		} else {
			e.failed[op.Node] = err
		}
	}

	return result, err
}

// OnError logs the dependent subgraph of the failing node.
func (e *GraphDebugExtension) OnError(err error, op *memo.Operation, g *memo.Graph) {
	e.logger.Error("graph operation error",
		"node", e.label(g, op.Node),
		"operation", string(op.Kind),
		"error", err.Error(),
		"dependents", e.renderDependents(g, op.Node),
	)
}

// renderDependents draws the dependent closure of name as a tree. On a DAG a
// node reachable along several paths is drawn once in full; repeats carry an
// ellipsis marker.
func (e *GraphDebugExtension) renderDependents(g *memo.Graph, name string) string {
	edges := g.Edges()
	if len(edges[name]) == 0 {
		return "(no dependents)"
	}

	t := tree.NewTree(tree.NodeString(e.annotate(g, name)))
	seen := map[string]bool{name: true}
	e.drawChildren(g, t, edges, name, seen)
	return "\n" + t.String()
}

func (e *GraphDebugExtension) drawChildren(g *memo.Graph, t *tree.Tree, edges map[string][]string, name string, seen map[string]bool) {
	for i, child := range edges[name] {
		if seen[child] {
			t.AddChild(tree.NodeString(e.annotate(g, child) + " …"))
			continue
		}
		seen[child] = true
		t.AddChild(tree.NodeString(e.annotate(g, child)))

		subtree, err := t.Child(i)
		if err != nil {
			continue
		}
		e.drawChildren(g, subtree, edges, child, seen)
	}
}

// annotate appends the node's evaluation outcome to its label.
func (e *GraphDebugExtension) annotate(g *memo.Graph, name string) string {
	label := e.label(g, name)
	if err, ok := e.failed[name]; ok {
		return fmt.Sprintf("%s [failed: %v]", label, err)
	}
	if e.evaluated[name] {
		return label + " [ok]"
	}
	return label
}

func (e *GraphDebugExtension) label(g *memo.Graph, name string) string {
	if desc, ok := g.Schema().Descriptor(name); ok {
		if label, ok := LabelTag.Get(desc); ok {
			return label
		}
	}
	return name
}

// SilentHandler is a slog.Handler that discards all log output. Useful in
// tests.
type SilentHandler struct{}

// NewSilentHandler creates a new silent log handler.
func NewSilentHandler() *SilentHandler {
	return &SilentHandler{}
}

func (h *SilentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return false
}

func (h *SilentHandler) Handle(ctx context.Context, record slog.Record) error {
	return nil
}

func (h *SilentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *SilentHandler) WithGroup(name string) slog.Handler {
	return h
}
