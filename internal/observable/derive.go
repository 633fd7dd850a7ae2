package observable

import "sync"

// Derived is a read-only projection of another Readable.
type Derived[T comparable] struct {
	cell   *Cell[T]
	mu     sync.Mutex
	cancel func()
}

// Derive returns a projection of src through fn. The projection republishes
// only when fn's result changes.
func Derive[S any, T comparable](src Readable[S], fn func(S) T) *Derived[T] {
	d := &Derived[T]{cell: New(fn(src.Get()))}
	cancel := src.Subscribe(func(v S) {
		next := fn(v)
		d.cell.mu.Lock()
		same := d.cell.value == next
		d.cell.mu.Unlock()
		if !same {
			d.cell.Set(next)
		}
	})
	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()
	return d
}

// Get implements Readable.
func (d *Derived[T]) Get() T {
	return d.cell.Get()
}

// Subscribe implements Readable.
func (d *Derived[T]) Subscribe(fn func(T)) func() {
	return d.cell.Subscribe(fn)
}

// Close detaches the projection from its source.
func (d *Derived[T]) Close() {
	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
