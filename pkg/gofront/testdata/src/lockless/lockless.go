package lockless

import "sync"

type Cache struct {
	mu sync.Mutex
	v  int
}

//lockpair:lockless
func (c *Cache) Get() int {
	c.mu.Lock() // want `Method annotated lockless acquires .*\.`
	v := c.v
	c.mu.Unlock()
	return v
}

func (c *Cache) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}
