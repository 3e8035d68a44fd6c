// File: protocol/frame_codec.go
// Package protocol implements the length-prefixed frame codec with size enforcement.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/momentics/hioload-reqrep/api"
)

// EncodeFrame serializes payload into a freshly allocated frame.
// Fails with api.ErrMessageTooLarge when payload exceeds MaxMsgBytes.
func EncodeFrame(payload []byte) ([]byte, error) {
	if len(payload) > MaxMsgBytes {
		return nil, fmt.Errorf("%w: %d > %d", api.ErrMessageTooLarge, len(payload), MaxMsgBytes)
	}
	frame := make([]byte, HeaderLen+len(payload))
	binary.LittleEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[HeaderLen:], payload)
	return frame, nil
}

// AppendFrame appends one encoded frame to dst and returns the extended
// slice. The I/O driver uses it to fill a connection's preallocated write
// buffer without a per-response allocation. Same size rule as EncodeFrame.
func AppendFrame(dst, payload []byte) ([]byte, error) {
	if len(payload) > MaxMsgBytes {
		return dst, fmt.Errorf("%w: %d > %d", api.ErrMessageTooLarge, len(payload), MaxMsgBytes)
	}
	var hdr [HeaderLen]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(payload)))
	dst = append(dst, hdr[:]...)
	return append(dst, payload...), nil
}

// TryDecodeFrame inspects the prefix of buf for one complete frame.
//
// Results:
//   - incomplete frame: (nil, 0, nil). Nothing is consumed; call again once
//     more bytes have arrived.
//   - complete frame: payload aliases buf, consumed = HeaderLen+len(payload).
//   - declared length above MaxMsgBytes: error wrapping
//     api.ErrProtocolViolation. The buffer contents are unusable from here
//     on; the connection must be torn down.
func TryDecodeFrame(buf []byte) (payload []byte, consumed int, err error) {
	if len(buf) < HeaderLen {
		return nil, 0, nil
	}
	declared := binary.LittleEndian.Uint32(buf)
	if declared > MaxMsgBytes {
		return nil, 0, fmt.Errorf("%w: declared length %d > %d", api.ErrProtocolViolation, declared, MaxMsgBytes)
	}
	total := HeaderLen + int(declared)
	if len(buf) < total {
		return nil, 0, nil
	}
	return buf[HeaderLen:total], total, nil
}

// PeekComplete reports whether the prefix of buf holds one whole frame.
// A violating length declaration counts as complete: the next decode will
// surface the error rather than wait for bytes that change nothing.
func PeekComplete(buf []byte) bool {
	if len(buf) < HeaderLen {
		return false
	}
	declared := binary.LittleEndian.Uint32(buf)
	if declared > MaxMsgBytes {
		return true
	}
	return len(buf) >= HeaderLen+int(declared)
}
