// internal/status/machine.go
package status

import (
	"fmt"
	"sync"
)

// allowed lists the legal transitions.
var allowed = map[Phase][]Phase{
	PhaseUninitialized: {PhaseReady, PhaseTerminated},
	PhaseReady:         {PhaseRunning, PhaseShuttingDown},
	PhaseRunning:       {PhaseShuttingDown},
	PhaseShuttingDown:  {PhaseTerminated},
}

// Machine tracks the process lifecycle. Safe for concurrent use.
type Machine struct {
	mu      sync.Mutex
	current Phase
	onEnter func(from, to Phase)
}

// NewMachine starts in PhaseUninitialized.
// onEnter, when non-nil, is called after every successful transition.
func NewMachine(onEnter func(from, to Phase)) *Machine {
	return &Machine{current: PhaseUninitialized, onEnter: onEnter}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Advance moves to next or fails if the transition is illegal.
func (m *Machine) Advance(next Phase) error {
	m.mu.Lock()
	from := m.current
	ok := false
	for _, p := range allowed[from] {
		if p == next {
			ok = true
			break
		}
	}
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("status: illegal transition %s -> %s", from, next)
	}
	m.current = next
	m.mu.Unlock()

	if m.onEnter != nil {
		m.onEnter(from, next)
	}
	return nil
}
