package weft

// Tag is a type-safe key for invocation metadata
type Tag[T any] struct {
	key string
}

// NewTag creates a new tag with the given key
func NewTag[T any](key string) Tag[T] {
	return Tag[T]{key: key}
}

// Key returns the tag's key (for debugging)
func (t Tag[T]) Key() string {
	return t.key
}

// Get retrieves the tag value from an invocation
func (t Tag[T]) Get(inv *Invocation) (T, bool) {
	val, ok := inv.Get(t)
	if !ok {
		var zero T
		return zero, false
	}
	return val.(T), true
}

// GetOrDefault retrieves the tag value or returns a default
func (t Tag[T]) GetOrDefault(inv *Invocation, defaultVal T) T {
	if val, ok := t.Get(inv); ok {
		return val
	}
	return defaultVal
}

// Set stores the tag value on an invocation
func (t Tag[T]) Set(inv *Invocation, val T) {
	inv.Set(t, val)
}

// GetFromNode retrieves the tag value from a finished invocation node
func (t Tag[T]) GetFromNode(node *InvocationNode) (T, bool) {
	val, ok := node.GetTag(t)
	if !ok {
		var zero T
		return zero, false
	}
	return val.(T), true
}
