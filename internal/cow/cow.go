// Package cow provides a copy-on-write value container.
//
// A Value shares one immutable snapshot between any number of holders
// until a mutation is requested, at which point the mutating holder
// transparently clones if the snapshot is shared. Copying a Value with
// Acquire is O(1); the clone happens lazily on first mutable access.
//
// Values are not thread-safe for mutation; callers must handle
// synchronization. Concurrent readers are safe as long as no holder
// mutates.
package cow

import "sync/atomic"

// box is the shared backing store for one snapshot.
// refs counts the holders that may still read this snapshot. Holders
// dropped without Release never decrement it; the only cost of that is a
// spurious clone on a later mutation, never an aliased write.
type box[T any] struct {
	value T
	refs  atomic.Int32
}

// Value is a copy-on-write container for a value of type T.
//
// The zero Value is empty: Get returns the zero T and Mutable starts from
// it. Copy a Value with Acquire, not by assignment; a plain struct copy
// aliases the holder and defeats the sharing bookkeeping.
type Value[T any] struct {
	b *box[T]
}

// New creates a Value holding v.
func New[T any](v T) Value[T] {
	b := &box[T]{value: v}
	b.refs.Store(1)
	return Value[T]{b: b}
}

// Acquire returns a new holder sharing this Value's snapshot. O(1).
func (v *Value[T]) Acquire() Value[T] {
	if v.b == nil {
		return Value[T]{}
	}
	v.b.refs.Add(1)
	return Value[T]{b: v.b}
}

// Get returns the current snapshot. For reference types such as slices the
// caller must not modify the returned value; use Mutable instead.
func (v *Value[T]) Get() T {
	if v.b == nil {
		var zero T
		return zero
	}
	return v.b.value
}

// Shared reports whether the snapshot is currently shared by more than
// one holder.
func (v *Value[T]) Shared() bool {
	return v.b != nil && v.b.refs.Load() > 1
}

// Mutable returns a pointer to a snapshot this holder owns exclusively,
// cloning with clone if-and-only-if the snapshot is shared. No holder
// ever observes a mutation made through a different holder.
func (v *Value[T]) Mutable(clone func(T) T) *T {
	switch {
	case v.b == nil:
		b := &box[T]{}
		b.refs.Store(1)
		v.b = b
	case v.b.refs.Load() > 1:
		b := &box[T]{value: clone(v.b.value)}
		b.refs.Store(1)
		v.b.refs.Add(-1)
		v.b = b
	}
	return &v.b.value
}

// Emplace replaces the held value outright, detaching from any shared
// snapshot without cloning it.
func (v *Value[T]) Emplace(nv T) {
	if v.b != nil && v.b.refs.Load() == 1 {
		v.b.value = nv
		return
	}
	if v.b != nil {
		v.b.refs.Add(-1)
	}
	b := &box[T]{value: nv}
	b.refs.Store(1)
	v.b = b
}

// Release drops this holder's snapshot, returning the Value to its empty
// state.
func (v *Value[T]) Release() {
	if v.b != nil {
		v.b.refs.Add(-1)
		v.b = nil
	}
}
