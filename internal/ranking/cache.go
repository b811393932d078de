package ranking

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrParentFailed is returned to entries whose inherit_from entry failed.
var ErrParentFailed = errors.New("inherited entry failed")

// Cache holds the sealed set of every entry computed during one run.
// Each key is written once, either with a set or with a failure.
type Cache struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	done chan struct{}
	set  *WeightedSet
	err  error
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{slots: make(map[string]*slot)}
}

// slot returns the slot for key, creating it if needed. Caller holds mu.
func (c *Cache) slot(key string) *slot {
	s, ok := c.slots[key]
	if !ok {
		s = &slot{done: make(chan struct{})}
		c.slots[key] = s
	}
	return s
}

func (s *slot) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Store records the set for key and wakes every waiter.
func (c *Cache) Store(key string, set *WeightedSet) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.slot(key)
	if s.closed() {
		return fmt.Errorf("ranking for %q already cached", key)
	}
	set.seal()
	s.set = set
	close(s.done)
	return nil
}

// Fail marks key as failed. It is a no-op if key was already written.
func (c *Cache) Fail(key string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.slot(key)
	if s.closed() {
		return
	}
	s.err = err
	close(s.done)
}

// Wait blocks until key is stored or failed, or ctx is done.
func (c *Cache) Wait(ctx context.Context, key string) (*WeightedSet, error) {
	c.mu.Lock()
	s := c.slot(key)
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
	}
	if s.err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrParentFailed, key, s.err)
	}
	return s.set, nil
}

// Get returns the set for key without blocking.
func (c *Cache) Get(key string) (*WeightedSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[key]
	if !ok || !s.closed() || s.err != nil {
		return nil, false
	}
	return s.set, true
}
