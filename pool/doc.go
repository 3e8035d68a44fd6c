// Package pool
// Author: momentics <momentics@gmail.com>
//
// Object reuse for the event loop and the client. FreeList recycles
// connection states on the loop thread without locks; SyncPool wraps
// sync.Pool for callers that share scratch buffers across goroutines.
package pool
