// control/probes.go
// Author: momentics <momentics@gmail.com>
//
// Named probe registry for loop-internal inspection. The server registers
// closures over its registry and pending queue; diagnostic surfaces call
// Dump to materialize the values.

package control

import (
	"sort"
	"sync"
)

// Probes maps probe names to sampling functions.
type Probes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewProbes creates an empty probe registry.
func NewProbes() *Probes {
	return &Probes{
		probes: make(map[string]func() any),
	}
}

// Register inserts or replaces a named probe.
func (p *Probes) Register(name string, fn func() any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probes[name] = fn
}

// Names returns all registered probe names, sorted.
func (p *Probes) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.probes))
	for name := range p.probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sample evaluates one probe. The second result is false for unknown names.
func (p *Probes) Sample(name string) (any, bool) {
	p.mu.RLock()
	fn, ok := p.probes[name]
	p.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return fn(), true
}

// Dump evaluates every probe and returns the results keyed by name.
//
// Probe functions read loop-owned state, so values observed during a live
// loop are instantaneous and may be mutually inconsistent.
func (p *Probes) Dump() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]any, len(p.probes))
	for name, fn := range p.probes {
		out[name] = fn()
	}
	return out
}
