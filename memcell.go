package memcell

import "errors"

// ErrConsumed is the fault raised when a cell is used after one of the
// Take operations extracted its contents.
var ErrConsumed = errors.New("memcell: use of consumed cell")

// MemoryCell holds a current value and the value it held immediately
// before the most recent Update, if any. It keeps exactly one prior
// value, never more.
//
// A cell is not safe for unsynchronized concurrent mutation. Callers
// that share a cell across goroutines must guard it externally.
type MemoryCell[T any] struct {
	current  T
	last     T
	hasLast  bool
	consumed bool
}

// New creates a cell holding v with no previous value.
func New[T any](v T) *MemoryCell[T] {
	return &MemoryCell[T]{
		current: v,
	}
}

// WithLast creates a cell holding both values directly, for restoring
// previously captured state. hasLast reports whether last is present;
// when false, last is ignored. The cell does not check that the two
// values are related.
func WithLast[T any](current T, last T, hasLast bool) *MemoryCell[T] {
	c := &MemoryCell[T]{
		current: current,
	}
	if hasLast {
		c.last = last
		c.hasLast = true
	}
	return c
}

// Update shifts the current value into the previous slot, discarding
// whatever that slot held before, and installs v as the new current
// value.
func (c *MemoryCell[T]) Update(v T) {
	c.mustLive()
	c.last = c.current
	c.hasLast = true
	c.current = v
}

// Current returns the current value.
func (c *MemoryCell[T]) Current() T {
	c.mustLive()
	return c.current
}

// Last returns the previous value. The second result is false if no
// update has occurred since construction and no previous value was
// supplied at construction; the first result is then the zero value.
func (c *MemoryCell[T]) Last() (T, bool) {
	c.mustLive()
	return c.last, c.hasLast
}

// HasPrevious reports whether Last would return a present value.
func (c *MemoryCell[T]) HasPrevious() bool {
	c.mustLive()
	return c.hasLast
}

// TakeCurrent consumes the cell and returns the current value. The
// previous value, if any, is discarded. Any use of the cell after this
// call panics with ErrConsumed.
func (c *MemoryCell[T]) TakeCurrent() T {
	cur, _, _ := c.TakeBoth()
	return cur
}

// TakeLast consumes the cell and returns the previous value, comma-ok.
// The current value is discarded. Any use of the cell after this call
// panics with ErrConsumed.
func (c *MemoryCell[T]) TakeLast() (T, bool) {
	_, last, hasLast := c.TakeBoth()
	return last, hasLast
}

// TakeBoth consumes the cell and returns the current value and the
// previous value, comma-ok. Any use of the cell after this call panics
// with ErrConsumed.
func (c *MemoryCell[T]) TakeBoth() (T, T, bool) {
	c.mustLive()
	cur, last, hasLast := c.current, c.last, c.hasLast

	var zero T
	c.current = zero
	c.last = zero
	c.hasLast = false
	c.consumed = true

	return cur, last, hasLast
}

// Clone returns a new, independent cell holding shallow copies of both
// values. If T contains references, the clones share the referenced
// data.
func (c *MemoryCell[T]) Clone() *MemoryCell[T] {
	c.mustLive()
	return &MemoryCell[T]{
		current: c.current,
		last:    c.last,
		hasLast: c.hasLast,
	}
}

func (c *MemoryCell[T]) mustLive() {
	if c.consumed {
		panic(ErrConsumed)
	}
}
