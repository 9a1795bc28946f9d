package memo

// watchStack tracks which node is currently being evaluated, so reads that
// happen during that evaluation are attributed to it as dependencies. Frames
// follow strict LIFO discipline: evalDerived pairs every successful push with
// a deferred pop, so the stack unwinds correctly on error exits too.
type watchStack struct {
	frames []string
}

// active returns the node currently being evaluated, if any.
func (w *watchStack) active() (string, bool) {
	if len(w.frames) == 0 {
		return "", false
	}
	return w.frames[len(w.frames)-1], true
}

// push installs name as the new active watch. A name already on the stack
// means the node is evaluating itself, directly or through intermediates;
// that fails fast with a CycleError instead of recursing unbounded.
func (w *watchStack) push(name string) error {
	for _, frame := range w.frames {
		if frame == name {
			chain := make([]string, len(w.frames))
			copy(chain, w.frames)
			return &CycleError{Node: name, Chain: chain}
		}
	}
	w.frames = append(w.frames, name)
	return nil
}

// pop restores the previous watch.
func (w *watchStack) pop() {
	if len(w.frames) == 0 {
		return
	}
	w.frames = w.frames[:len(w.frames)-1]
}

func (w *watchStack) depth() int {
	return len(w.frames)
}
