// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"
	"time"

	"github.com/momentics/hioload-reqrep/reactor"
)

// Round maps descriptors to the readiness one Poll call reports.
type Round map[int]reactor.Readiness

// Poller replays scripted readiness rounds, one per Poll call. Once the
// script is exhausted every call sleeps out its timeout and reports an
// idle cycle, like a quiet poll(2).
type Poller struct {
	mu     sync.Mutex
	script []Round
	calls  int
	closed bool
}

// Push appends one round to the script.
func (p *Poller) Push(r Round) {
	p.mu.Lock()
	p.script = append(p.script, r)
	p.mu.Unlock()
}

// Poll implements reactor.Poller.
func (p *Poller) Poll(set []reactor.Slot, timeoutMs int) (int, error) {
	p.mu.Lock()
	p.calls++
	var round Round
	if len(p.script) > 0 {
		round = p.script[0]
		p.script = p.script[1:]
	}
	p.mu.Unlock()

	for i := range set {
		set[i].Ready = 0
	}
	if round == nil {
		if timeoutMs > 0 {
			time.Sleep(time.Duration(timeoutMs) * time.Millisecond)
		}
		return 0, nil
	}
	ready := 0
	for i := range set {
		if r, ok := round[set[i].FD]; ok && r != 0 {
			set[i].Ready = r
			ready++
		}
	}
	return ready, nil
}

// Calls returns how many times Poll ran.
func (p *Poller) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Close implements reactor.Poller.
func (p *Poller) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// Closed reports whether Close ran.
func (p *Poller) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
