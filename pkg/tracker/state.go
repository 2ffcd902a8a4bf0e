package tracker

import (
	"errors"
	"fmt"
)

// SessionState is the state of the protocol controller.
type SessionState int

// Session states.
const (
	// Idle means no session is open.
	Idle SessionState = iota
	// Tracking means a session is open and watermarks are live.
	Tracking
	// Errored means a protocol violation was observed.
	// It's absorbing until reset.
	Errored
)

var stateNames = map[SessionState]string{
	Idle:     "idle",
	Tracking: "tracking",
	Errored:  "errored",
}

// String implements fmt.Stringer.
func (s SessionState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ParseSessionState converts a name produced by String back to SessionState.
func ParseSessionState(name string) (SessionState, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return Idle, fmt.Errorf("unknown session state %q", name)
}

// Event describes what the most recent tick did.
type Event int

// Events.
const (
	EventNone Event = iota
	EventSessionOpened
	EventSessionClosed
	EventViolation
	EventReset
)

var eventNames = [...]string{"none", "open", "close", "violation", "reset"}

// String implements fmt.Stringer.
func (e Event) String() string {
	if e >= 0 && int(e) < len(eventNames) {
		return eventNames[e]
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// ErrProtocolViolation is reported when the error latch is set.
var ErrProtocolViolation = errors.New("protocol violation")
