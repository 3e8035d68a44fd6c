// File: api/handler.go
// Package api defines the Handler interface.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Handler turns one complete request payload into one response payload.
//
// The event loop invokes Handle synchronously on its own thread, so the
// implementation must not block. The request slice aliases the connection's
// read buffer and is only valid until Handle returns; the returned slice is
// copied into the connection's write buffer before the next request is
// decoded. A response longer than protocol.MaxMsgBytes terminates the
// connection as a protocol violation.
type Handler interface {
	Handle(req []byte) []byte
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(req []byte) []byte

// Handle calls fn(req).
func (fn HandlerFunc) Handle(req []byte) []byte { return fn(req) }
