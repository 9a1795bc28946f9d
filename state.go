package memo

import "sort"

// nodeState is the mutable, per-instance half of a node: the cached value,
// its validity, and the edge sets discovered during the last evaluation.
// One nodeState exists per (graph, node name) pair, created lazily on first
// touch and never shared between graphs.
type nodeState struct {
	value    any
	valid    bool
	parents  map[string]struct{} // nodes this one read during its last evaluation
	children map[string]struct{} // nodes that read this one
	hooks    []hookEntry
}

type hookEntry struct {
	fn    func() error
	order int
}

func newNodeState() *nodeState {
	return &nodeState{
		parents:  make(map[string]struct{}),
		children: make(map[string]struct{}),
	}
}

// NodeInfo is a point-in-time snapshot of a node's per-instance state, for
// introspection and testing. Edge lists are sorted.
type NodeInfo struct {
	Name     string
	Valid    bool
	Value    any
	Parents  []string
	Children []string
}

func (st *nodeState) snapshot(name string) NodeInfo {
	info := NodeInfo{
		Name:  name,
		Valid: st.valid,
		Value: st.value,
	}
	info.Parents = sortedNames(st.parents)
	info.Children = sortedNames(st.children)
	return info
}

func sortedNames(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
