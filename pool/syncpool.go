// File: pool/syncpool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import "sync"

// SyncPool wraps sync.Pool for generic usage. Unlike FreeList it is safe
// for concurrent Get/Put; the client uses one for frame scratch buffers.
type SyncPool[T any] struct {
	pool *sync.Pool
}

// NewSyncPool creates a new SyncPool with a creator function.
func NewSyncPool[T any](creator func() T) *SyncPool[T] {
	return &SyncPool[T]{
		pool: &sync.Pool{New: func() any { return creator() }},
	}
}

// Get takes an object from the pool, manufacturing one if necessary.
func (sp *SyncPool[T]) Get() T {
	return sp.pool.Get().(T)
}

// Put returns an object to the pool.
func (sp *SyncPool[T]) Put(obj T) {
	sp.pool.Put(obj)
}
