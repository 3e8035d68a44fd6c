// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"strings"
	"sync"
)

// Recorder is an api.Sink capturing every event line.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

// Event implements api.Sink.
func (r *Recorder) Event(msg string) {
	r.mu.Lock()
	r.events = append(r.events, msg)
	r.mu.Unlock()
}

// Events returns a copy of all recorded lines.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// Len returns the number of recorded lines.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Contains reports whether any recorded line contains substr.
func (r *Recorder) Contains(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if strings.Contains(ev, substr) {
			return true
		}
	}
	return false
}
