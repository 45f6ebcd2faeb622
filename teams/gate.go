package teams

import "sync/atomic"

// Gate is the runtime switch for team creation. Operators flip it with the
// enable/disable commands; it starts from the configured value.
type Gate struct {
	open atomic.Bool
}

// NewGate returns a gate that is open when enabled is true.
func NewGate(enabled bool) *Gate {
	g := &Gate{}
	g.open.Store(enabled)
	return g
}

// Open reports whether team creation is currently allowed.
func (g *Gate) Open() bool { return g.open.Load() }

// Set opens or closes the gate and returns the previous state.
func (g *Gate) Set(open bool) bool { return g.open.Swap(open) }
