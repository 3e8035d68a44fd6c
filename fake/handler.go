// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import "sync"

// Handler records every request it sees. Replies with Fn when set,
// otherwise echoes the request back.
type Handler struct {
	Fn func(req []byte) []byte

	mu   sync.Mutex
	reqs [][]byte
}

// Handle implements api.Handler.
func (h *Handler) Handle(req []byte) []byte {
	cp := append([]byte(nil), req...)
	h.mu.Lock()
	h.reqs = append(h.reqs, cp)
	h.mu.Unlock()
	if h.Fn != nil {
		return h.Fn(req)
	}
	return req
}

// Requests returns copies of all requests seen, in arrival order.
func (h *Handler) Requests() [][]byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([][]byte, len(h.reqs))
	copy(out, h.reqs)
	return out
}

// Count returns how many requests were handled.
func (h *Handler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.reqs)
}
