//go:build !linux

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub for platforms without thread affinity support.

package affinity

import "github.com/momentics/hioload-reqrep/api"

func setAffinityPlatform(int) error {
	return api.ErrNotSupported
}
