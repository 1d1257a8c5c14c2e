// Package component provides the enable/disable/close lifecycle
// shared by peripherals.
package component

// State is the lifecycle state of a component.
type State int

// Lifecycle states. Closed is terminal.
const (
	Disabled State = iota
	Enabled
	Closed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case Enabled:
		return "enabled"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Lifecycle implements the Disabled/Enabled/Closed state machine.
// Embed it to give a component the standard lifecycle. Transition
// methods report whether a transition actually happened, so embedders
// can run side effects exactly once. Repeats are harmless no-ops.
type Lifecycle struct {
	state State
}

// State returns the current state.
func (l *Lifecycle) State() State {
	return l.state
}

// Enabled indicates the component is enabled.
func (l *Lifecycle) Enabled() bool {
	return l.state == Enabled
}

// Closed indicates the component has been closed.
func (l *Lifecycle) Closed() bool {
	return l.state == Closed
}

// Enable transitions Disabled to Enabled.
func (l *Lifecycle) Enable() bool {
	if l.state != Disabled {
		return false
	}
	l.state = Enabled
	return true
}

// Disable transitions Enabled to Disabled.
func (l *Lifecycle) Disable() bool {
	if l.state != Enabled {
		return false
	}
	l.state = Disabled
	return true
}

// Close transitions to Closed from any state. There are no
// transitions out of Closed.
func (l *Lifecycle) Close() bool {
	if l.state == Closed {
		return false
	}
	l.state = Closed
	return true
}
