// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime observability for the event loop: atomic counters and debug
// probe registration. The loop thread writes, observer goroutines read.
//
// Nothing in this package blocks or allocates on the hot path; counters
// are plain atomics and probes are sampled on demand.
package control
