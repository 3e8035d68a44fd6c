// File: server/middleware.go
// Package server implements middleware chain utilities.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import "github.com/momentics/hioload-reqrep/api"

// Middleware augments an api.Handler. Wrappers run on the loop thread,
// so the no-blocking rule applies to them exactly as to the handler.
type Middleware func(api.Handler) api.Handler

// NewHandlerChain applies middleware in order: first in slice is outermost.
func NewHandlerChain(base api.Handler, mw ...Middleware) api.Handler {
	h := base
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
