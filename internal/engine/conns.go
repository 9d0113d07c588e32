package engine

import (
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/momentics/nilservice/service"
)

// Conns is the engine-owned map of live peers keyed by ID, matching
// spec.md §3's "engine uniquely owns its connections keyed by ID in a
// mapping." Transports mutate it from their accept, read-loop and
// request goroutines and read it from Publish/Send callers; the mutex
// here guards every access.
type Conns struct {
	mu sync.RWMutex
	m  map[service.ID]io.Closer
}

// NewConns builds an empty connection set.
func NewConns() *Conns {
	return &Conns{m: make(map[service.ID]io.Closer)}
}

// Put inserts or replaces the connection for id.
func (c *Conns) Put(id service.ID, conn io.Closer) {
	c.mu.Lock()
	c.m[id] = conn
	c.mu.Unlock()
}

// Delete removes id, closing nothing itself — callers close the
// connection before or after removing it as their error paths require.
func (c *Conns) Delete(id service.ID) {
	c.mu.Lock()
	delete(c.m, id)
	c.mu.Unlock()
}

// Get returns the connection for id, if any.
func (c *Conns) Get(id service.ID) (io.Closer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	conn, ok := c.m[id]
	return conn, ok
}

// Each calls fn for every known peer. fn must not mutate the set.
func (c *Conns) Each(fn func(id service.ID, conn io.Closer)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for id, conn := range c.m {
		fn(id, conn)
	}
}

// Len returns the number of known peers.
func (c *Conns) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// CloseAll closes every known connection and empties the set, aggregating
// any close errors.
func (c *Conns) CloseAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result *multierror.Error
	for _, conn := range c.m {
		if err := conn.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	c.m = make(map[service.ID]io.Closer)
	return result.ErrorOrNil()
}
