// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral poll-mode reactor interface.

package reactor

// Interest names the readiness a descriptor is waiting for.
type Interest uint8

const (
	// Readable requests notification when a read would make progress.
	Readable Interest = 1 << iota
	// Writable requests notification when a write would make progress.
	Writable
)

// Readiness is the per-slot poll result.
type Readiness uint8

const (
	// ReadyRead reports readable data, including a pending EOF.
	ReadyRead Readiness = 1 << iota
	// ReadyWrite reports available send buffer space.
	ReadyWrite
	// ReadyErr reports an error or hangup condition. It is delivered
	// regardless of the requested Interest.
	ReadyErr
)

// Slot is one entry of the per-iteration readiness request list.
// The caller fills FD and Interest; Poll fills Ready.
type Slot struct {
	FD       int
	Interest Interest
	Ready    Readiness
}

// Poller blocks on a slot list until at least one descriptor is ready or
// the timeout elapses.
type Poller interface {
	// Poll submits set, waits up to timeoutMs (negative blocks
	// indefinitely), and writes results into each Slot.Ready. Returns the
	// number of slots with non-zero readiness. A signal interruption
	// returns (0, nil).
	Poll(set []Slot, timeoutMs int) (int, error)

	// Close releases poller resources.
	Close() error
}
