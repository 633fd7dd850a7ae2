// Package observable provides reactive value cells with synchronous, ordered
// delivery to subscribers and derived projections.
package observable

import "sync"

// Readable is a value that can be read and observed.
type Readable[T any] interface {
	// Get returns the latest published value.
	Get() T
	// Subscribe registers fn and immediately calls it with the current value.
	// The returned func removes the subscription.
	Subscribe(fn func(T)) func()
}

// Cell holds a value and fans out every published value to its subscribers.
//
// Values are delivered in publish order. A Set issued while a delivery is in
// progress (including from inside a subscriber) is queued and delivered by the
// goroutine already delivering, after the current value reaches every
// subscriber.
type Cell[T any] struct {
	mu         sync.Mutex
	value      T
	subs       map[uint64]func(T)
	order      []uint64
	next       uint64
	delivering bool
	queue      []T
}

// New constructs a Cell holding initial.
func New[T any](initial T) *Cell[T] {
	return &Cell[T]{
		value: initial,
		subs:  make(map[uint64]func(T)),
	}
}

// Get implements Readable.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Subscribe implements Readable.
func (c *Cell[T]) Subscribe(fn func(T)) func() {
	if c == nil || fn == nil {
		return func() {}
	}
	c.mu.Lock()
	c.next++
	id := c.next
	c.subs[id] = fn
	c.order = append(c.order, id)
	current := c.value
	c.mu.Unlock()
	fn(current)
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			for i, sid := range c.order {
				if sid == id {
					c.order = append(c.order[:i], c.order[i+1:]...)
					break
				}
			}
			c.mu.Unlock()
		})
	}
}

// Set publishes v.
func (c *Cell[T]) Set(v T) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.value = v
	c.queue = append(c.queue, v)
	if c.delivering {
		c.mu.Unlock()
		return
	}
	c.delivering = true
	c.mu.Unlock()
	c.drain()
}

// Update publishes fn applied to the current value. The read and write happen
// under one lock, so concurrent updates are not lost.
func (c *Cell[T]) Update(fn func(T) T) {
	if c == nil || fn == nil {
		return
	}
	c.mu.Lock()
	v := fn(c.value)
	c.value = v
	c.queue = append(c.queue, v)
	if c.delivering {
		c.mu.Unlock()
		return
	}
	c.delivering = true
	c.mu.Unlock()
	c.drain()
}

// Subscribers returns the number of active subscriptions.
func (c *Cell[T]) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

func (c *Cell[T]) drain() {
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			c.delivering = false
			c.mu.Unlock()
			return
		}
		v := c.queue[0]
		var zero T
		c.queue[0] = zero
		c.queue = c.queue[1:]
		fns := make([]func(T), 0, len(c.order))
		for _, id := range c.order {
			fns = append(fns, c.subs[id])
		}
		c.mu.Unlock()
		for _, fn := range fns {
			fn(v)
		}
	}
}
