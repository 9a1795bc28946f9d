// Package memo provides a reactive computation graph that memoizes derived
// values and invalidates dependents when an upstream input changes.
//
// # Overview
//
// Memo organizes a model around three core concepts:
//
//  1. Schemas: shared, immutable declarations of a model's nodes
//  2. Nodes: source values (written directly) and derived values (computed)
//  3. Graphs: per-instance state holding caches and dependency edges
//
// Dependencies are discovered, not declared: every node read during a
// derived node's evaluation becomes a dependency of that node for that run.
// Cached values are reused until a write to an upstream source invalidates
// them; recomputation is strictly lazy, triggered only by the next read.
//
// # Basic Usage
//
// Declare a schema once, then create a graph per model instance:
//
//	schema := memo.NewSchema("pricing")
//
//	price := memo.DefineSource[float64](schema, "price")
//	taxRate := memo.DefineSource[float64](schema, "tax_rate")
//
//	total := memo.DefineDerived(schema, "total",
//	    func(ctx *memo.EvalCtx, _ ...any) (float64, error) {
//	        p, err := price.Get(ctx)
//	        if err != nil {
//	            return 0, err
//	        }
//	        r, err := taxRate.Get(ctx)
//	        if err != nil {
//	            return 0, err
//	        }
//	        return p * (1 + r), nil
//	    })
//
//	g := memo.New(schema)
//	price.Set(g, 100)
//	taxRate.Set(g, 0.2)
//
//	v, err := total.Eval(g) // computes 120, caches it
//	v, err = total.Eval(g)  // cache hit, compute does not run
//
//	price.Set(g, 50)        // invalidates total
//	v, err = total.Eval(g)  // recomputes 60
//
// # Caching
//
// A derived node caches exactly one value, irrespective of call arguments:
// while the node stays valid, Eval with different args returns the value
// computed for the previous call's arguments. Code that needs
// argument-sensitive results must model the arguments as source nodes.
//
// A failed compute caches nothing; the next read retries.
//
// # Errors
//
// All errors are terminal for the triggering operation and carry the
// offending node's name:
//
//   - UnsetValueError: a source node read before its first write
//   - UnboundNodeError: a name or handle not bound to the graph's schema
//   - CycleError: a node evaluated while already on the watch stack
//   - NotWritableError: a write to a derived node
//   - EvalError: wraps a compute failure, supports errors.Unwrap
//
// # Introspection
//
// Node returns a state snapshot without reading the value:
//
//	desc, info, err := g.Node("total")
//	fmt.Println(info.Valid, info.Parents, info.Children)
//
// # Extensions
//
// Extensions hook into evaluation and writes for cross-cutting concerns:
//
//	type timing struct {
//	    memo.BaseExtension
//	}
//
//	func (t *timing) Wrap(next func() (any, error), op *memo.Operation) (any, error) {
//	    start := time.Now()
//	    v, err := next()
//	    log.Printf("%s %s took %v", op.Kind, op.Node, time.Since(start))
//	    return v, err
//	}
//
//	g := memo.New(schema, memo.WithExtension(&timing{
//	    BaseExtension: memo.NewBaseExtension("timing"),
//	}))
//
// The extensions subpackage ships a slog-based operation logger and a
// dependency-tree debug renderer.
//
// # Invalidation Hooks
//
// A compute function may register hooks that run when its cached value is
// dropped, for values that own resources:
//
//	conn := memo.DefineDerived(schema, "conn",
//	    func(ctx *memo.EvalCtx, _ ...any) (*Conn, error) {
//	        c, err := dial(addr)
//	        if err != nil {
//	            return nil, err
//	        }
//	        ctx.OnInvalidate(c.Close)
//	        return c, nil
//	    })
//
// Graph.Dispose runs all outstanding hooks.
//
// # Thread Safety
//
// A Graph is owned by a single goroutine. Evaluation is reentrant along one
// call stack, which is what the watch stack models; there is no internal
// locking. Schemas and descriptors are immutable after definition and safe
// to share across goroutines and graphs.
package memo
