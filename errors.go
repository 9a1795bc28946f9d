package memo

import (
	"fmt"
	"strings"
)

// UnsetValueError is returned when a source node is read before its first
// write.
type UnsetValueError struct {
	Node string
}

func (e *UnsetValueError) Error() string {
	return fmt.Sprintf("memo: value of source node %q has not been set", e.Node)
}

// UnboundNodeError is returned when an operation targets a node that is not
// part of the graph's schema, or a handle declared on a different schema.
type UnboundNodeError struct {
	Node   string
	Schema string
}

func (e *UnboundNodeError) Error() string {
	if e.Schema != "" {
		return fmt.Sprintf("memo: node %q is not bound to schema %q", e.Node, e.Schema)
	}
	return fmt.Sprintf("memo: node %q is not bound to any schema", e.Node)
}

// CycleError is returned when evaluating a node that is already being
// evaluated further up the watch stack.
type CycleError struct {
	Node  string
	Chain []string
}

func (e *CycleError) Error() string {
	chain := append(append([]string{}, e.Chain...), e.Node)
	return fmt.Sprintf("memo: dependency cycle at node %q: %s", e.Node, strings.Join(chain, " -> "))
}

// NotWritableError is returned when writing to a derived node.
type NotWritableError struct {
	Node string
}

func (e *NotWritableError) Error() string {
	return fmt.Sprintf("memo: node %q is derived and cannot be written", e.Node)
}

// EvalError wraps a failure raised by a derived node's compute function.
type EvalError struct {
	Node  string
	Cause error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("memo: evaluating node %q: %v", e.Node, e.Cause)
}

func (e *EvalError) Unwrap() error {
	return e.Cause
}

// HookError carries a failure from an invalidation hook. Hooks run during
// invalidation, which itself never fails; extensions decide what to do with
// the error via OnHookError.
type HookError struct {
	Node    string
	Context string
	Err     error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("memo: invalidation hook for node %q (%s): %v", e.Node, e.Context, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}
