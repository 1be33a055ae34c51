package selfdeadlock

import "sync"

type Counter struct {
	mu sync.Mutex
	n  int
}

// Bad re-acquires mu while already holding it — a single-thread deadlock,
// regardless of how many other goroutines exist.
func (c *Counter) Bad() {
	c.mu.Lock() // want `Potential self deadlock in .*Bad: lock .* acquired twice\.`
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
	c.mu.Unlock()
}

// Good never re-acquires mu and reports nothing.
func (c *Counter) Good() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}
