package utils

import (
	"sync"
	"time"
)

// Phase is one named, timed section of a run.
type Phase struct {
	Name     string
	Start    time.Time
	Duration time.Duration
}

// Timer measures named phases of a benchmark or analysis run. Safe for
// concurrent use.
type Timer struct {
	mu     sync.Mutex
	clock  Clock
	phases []*Phase
	open   map[string]*Phase
}

// NewTimer creates a timer using the given clock (nil means the real
// clock).
func NewTimer(clock Clock) *Timer {
	if clock == nil {
		clock = NewRealClock()
	}
	return &Timer{clock: clock, open: make(map[string]*Phase)}
}

// StartPhase begins timing the named phase.
func (t *Timer) StartPhase(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := &Phase{Name: name, Start: t.clock.Now()}
	t.phases = append(t.phases, p)
	t.open[name] = p
}

// StopPhase ends the named phase and returns its duration. Stopping an
// unknown or already-stopped phase returns zero.
func (t *Timer) StopPhase(name string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.open[name]
	if !ok {
		return 0
	}
	delete(t.open, name)
	p.Duration = t.clock.Since(p.Start)
	return p.Duration
}

// Time runs fn as the named phase.
func (t *Timer) Time(name string, fn func()) time.Duration {
	t.StartPhase(name)
	fn()
	return t.StopPhase(name)
}

// Phases returns the recorded phases in start order.
func (t *Timer) Phases() []Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Phase, len(t.phases))
	for i, p := range t.phases {
		out[i] = *p
	}
	return out
}

// Report writes one line per completed phase through the logger.
func (t *Timer) Report(log Logger) {
	for _, p := range t.Phases() {
		if p.Duration > 0 {
			log.Info("%-20s %v", p.Name, p.Duration)
		}
	}
}
