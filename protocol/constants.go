// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Wire protocol constants.

package protocol

const (
	// MaxMsgBytes is the maximum payload length of a single frame, in
	// either direction. The limit bounds per-connection buffer memory and
	// protects the server from hostile length declarations.
	MaxMsgBytes = 4096

	// HeaderLen is the size of the little-endian length prefix.
	HeaderLen = 4

	// MaxFrameBytes is the largest possible encoded frame.
	MaxFrameBytes = HeaderLen + MaxMsgBytes
)
