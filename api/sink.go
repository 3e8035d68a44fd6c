// File: api/sink.go
// Author: momentics <momentics@gmail.com>
//
// One-way diagnostics channel for per-connection events.

package api

// Sink receives human-readable event strings from the event loop and the
// I/O driver: peer EOFs, read/write errors, protocol violations, accept
// failures. The core never halts because of a per-connection failure; it
// reports the event here and moves on.
//
// Event is called from the event-loop thread and must not block.
type Sink interface {
	Event(msg string)
}

// NopSink discards every event.
type NopSink struct{}

// Event implements Sink.
func (NopSink) Event(string) {}
