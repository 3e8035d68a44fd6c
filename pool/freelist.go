// File: pool/freelist.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

// ObjectPool is a generic object pool.
type ObjectPool[T any] interface {
	Get() T
	Put(T)
}

// Resettable is implemented by pooled objects that scrub their own state.
// Put calls Reset before parking the object, so a Get never hands out
// stale payload bytes or descriptors.
type Resettable interface {
	Reset()
}

// FreeList is a LIFO free list with a single owner. The event loop is the
// only caller, so there is no locking; use SyncPool where multiple
// goroutines share a pool.
type FreeList[T Resettable] struct {
	creator func() T
	free    []T

	allocs  uint64
	reuses  uint64
	returns uint64
}

// NewFreeList creates a free list that manufactures objects with creator
// when empty.
func NewFreeList[T Resettable](creator func() T) *FreeList[T] {
	return &FreeList[T]{creator: creator}
}

// Get pops the most recently returned object, or makes a new one.
func (f *FreeList[T]) Get() T {
	if n := len(f.free); n > 0 {
		obj := f.free[n-1]
		var zero T
		f.free[n-1] = zero
		f.free = f.free[:n-1]
		f.reuses++
		return obj
	}
	f.allocs++
	return f.creator()
}

// Put resets obj and parks it for reuse.
func (f *FreeList[T]) Put(obj T) {
	obj.Reset()
	f.free = append(f.free, obj)
	f.returns++
}

// Idle returns the number of parked objects.
func (f *FreeList[T]) Idle() int {
	return len(f.free)
}

// Allocs returns how many objects the creator has manufactured.
func (f *FreeList[T]) Allocs() uint64 {
	return f.allocs
}

// Reuses returns how many Gets were served from the free list.
func (f *FreeList[T]) Reuses() uint64 {
	return f.reuses
}
