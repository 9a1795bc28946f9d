package memo

// Tag is a type-safe key for metadata on descriptors and graphs.
type Tag[T any] struct {
	key string
}

// NewTag creates a new tag with the given key.
func NewTag[T any](key string) Tag[T] {
	return Tag[T]{key: key}
}

// Key returns the tag's key (for debugging).
func (t Tag[T]) Key() string {
	return t.key
}

// Get retrieves the tag value from a descriptor.
func (t Tag[T]) Get(d *Descriptor) (T, bool) {
	val, ok := d.GetTag(t)
	if !ok {
		var zero T
		return zero, false
	}
	return val.(T), true
}

// GetOrDefault retrieves the tag value from a descriptor or returns a default.
func (t Tag[T]) GetOrDefault(d *Descriptor, defaultVal T) T {
	if val, ok := t.Get(d); ok {
		return val
	}
	return defaultVal
}

// Set stores the tag value on a descriptor.
func (t Tag[T]) Set(d *Descriptor, val T) {
	d.SetTag(t, val)
}

// GetFromGraph retrieves the tag value from a graph.
func (t Tag[T]) GetFromGraph(g *Graph) (T, bool) {
	val, ok := g.GetTag(t)
	if !ok {
		var zero T
		return zero, false
	}
	return val.(T), true
}

// SetOnGraph stores the tag value on a graph.
func (t Tag[T]) SetOnGraph(g *Graph, val T) {
	g.SetTag(t, val)
}
