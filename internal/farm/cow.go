package farm

import (
	"slices"
	"sync"
	"sync/atomic"
)

// children is a copy-on-write list. Readers load a whole snapshot without
// locking; writers are serialised by mu and publish a new slice.
type children[T any] struct {
	mu   sync.Mutex
	list atomic.Pointer[[]T]
}

func (c *children[T]) load() []T {
	p := c.list.Load()
	if p == nil {
		return nil
	}
	return *p
}

func (c *children[T]) add(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := append(slices.Clone(c.load()), v)
	c.list.Store(&next)
}

// remove destroys the first element matching and then detaches it. It
// reports false when nothing matched.
func (c *children[T]) remove(match func(T) bool, destroy func(T)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := c.load()
	i := slices.IndexFunc(cur, match)
	if i < 0 {
		return false
	}
	destroy(cur[i])
	next := slices.Delete(slices.Clone(cur), i, i+1)
	c.list.Store(&next)
	return true
}

// drain destroys every element and empties the list.
func (c *children[T]) drain(destroy func(T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.load() {
		destroy(v)
	}
	c.list.Store(&[]T{})
}

func find[T any](list []T, match func(T) bool) (T, bool) {
	i := slices.IndexFunc(list, match)
	if i < 0 {
		var zero T
		return zero, false
	}
	return list[i], true
}
