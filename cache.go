package weft

import (
	"sync"
)

// typedCache is a concurrency-safe map with typed values, keyed by object
// identity. The registry uses it for per-instance side tables.
type typedCache[T any] struct {
	data sync.Map
}

func (c *typedCache[T]) Load(key any) (T, bool) {
	value, ok := c.data.Load(key)
	if !ok {
		var zero T
		return zero, false
	}
	return value.(T), true
}

func (c *typedCache[T]) LoadOrStore(key any, value T) (T, bool) {
	actual, loaded := c.data.LoadOrStore(key, value)
	return actual.(T), loaded
}

func (c *typedCache[T]) Store(key any, value T) {
	c.data.Store(key, value)
}

func (c *typedCache[T]) Delete(key any) {
	c.data.Delete(key)
}

func (c *typedCache[T]) Range(fn func(key any, value T) bool) {
	c.data.Range(func(key, value any) bool {
		return fn(key, value.(T))
	})
}

func (c *typedCache[T]) Size() int {
	count := 0
	c.data.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}
