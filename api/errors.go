// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error values shared across the hioload-reqrep library.

package api

import "fmt"

// Sentinel errors. Per-connection failures wrap these so callers can
// classify with errors.Is while diagnostics keep the full context.
var (
	// ErrWouldBlock reports that a non-blocking socket operation cannot
	// progress right now. It is consumed inside the I/O driver and never
	// escapes to the event loop.
	ErrWouldBlock = fmt.Errorf("operation would block")

	// ErrPeerClosed reports an orderly close from the remote side.
	ErrPeerClosed = fmt.Errorf("peer closed connection")

	// ErrMessageTooLarge reports an outbound payload above the frame limit.
	ErrMessageTooLarge = fmt.Errorf("message exceeds maximum size")

	// ErrProtocolViolation reports an inbound frame whose declared length
	// exceeds the frame limit. The wire format has no resync point, so the
	// violation is fatal to that connection.
	ErrProtocolViolation = fmt.Errorf("protocol violation")

	// ErrNotSupported is returned by platform constructors on targets
	// without a usable readiness-polling primitive.
	ErrNotSupported = fmt.Errorf("operation not supported on this platform")

	// ErrInvalidArgument reports a malformed constructor argument, such as
	// a negative listener descriptor or a nil handler.
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// ErrServerClosed is returned from Run after Close tears the loop down.
	ErrServerClosed = fmt.Errorf("server closed")
)
