//go:build !unix

// File: reactor/poll_stub.go
// Author: momentics <momentics@gmail.com>
//
// Build stub for unsupported platforms.

package reactor

import "github.com/momentics/hioload-reqrep/api"

// NewPoller reports that no readiness-polling backend exists here.
func NewPoller() (Poller, error) {
	return nil, api.ErrNotSupported
}
