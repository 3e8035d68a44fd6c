// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Implements the length-prefixed wire format for hioload-reqrep.
//
// Every message, request and response alike, is one frame:
//
//	[4 bytes: payload length N, little-endian unsigned]
//	[N bytes: opaque payload]
//
// N never exceeds MaxMsgBytes. Frames travel back-to-back on a connection
// with no delimiter beyond the prefix, so a decoder that loses sync has no
// way to recover; an oversized declared length is therefore fatal to the
// connection that sent it.
//
// The codec is pure: it inspects and produces byte slices, performs no I/O,
// and keeps no state between calls. Streaming reassembly is the caller's
// job; TryDecodeFrame simply reports "incomplete" until a whole frame is
// present.
package protocol
