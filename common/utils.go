package common

import "sync/atomic"

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Shared is a reference counted handle to a value with a single disposer.
// Every owner holds its own handle obtained via Clone, and the disposer runs exactly once when the
// last handle is released.
type Shared[T any] struct {
	state    *sharedState[T]
	released atomic.Bool
}

type sharedState[T any] struct {
	value   T
	refs    atomic.Int32
	dispose func(T)
}

// NewShared wraps a value in a new handle with a reference count of one.
//
// Parameters:
//   - value: the value to share
//   - dispose: called with the value when the last handle is released (may be nil)
//
// Returns:
//   - *Shared[T]: the first handle to the value
func NewShared[T any](value T, dispose func(T)) *Shared[T] {
	st := &sharedState[T]{value: value, dispose: dispose}
	st.refs.Store(1)
	return &Shared[T]{state: st}
}

// Clone returns a new handle to the same value and increments the reference count.
// Cloning a released handle panics.
func (s *Shared[T]) Clone() *Shared[T] {
	if s.released.Load() {
		panic("common: clone of released shared handle")
	}
	s.state.refs.Add(1)
	return &Shared[T]{state: s.state}
}

// Value returns the shared value.
func (s *Shared[T]) Value() T {
	return s.state.value
}

// Refs returns the number of live handles.
func (s *Shared[T]) Refs() int {
	return int(s.state.refs.Load())
}

// Release drops this handle. The disposer runs when the count reaches zero.
// Releasing the same handle twice panics.
func (s *Shared[T]) Release() {
	if !s.released.CompareAndSwap(false, true) {
		panic("common: shared handle released twice")
	}
	if s.state.refs.Add(-1) == 0 && s.state.dispose != nil {
		s.state.dispose(s.state.value)
	}
}
