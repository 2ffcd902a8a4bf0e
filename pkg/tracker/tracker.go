// Package tracker implements the range tracker core.
//
// The tracker is a single synchronous state machine clocked one tick at a
// time. A session is opened by go and closed by finish; when it closes
// validly the spread of the samples seen in between is latched as the range
// output. Simultaneous go/finish, or finish without a session, latches the
// error until reset.
package tracker

import "fmt"

// Inputs are the signals sampled on one clock edge.
type Inputs struct {
	Sample uint8
	Go     bool
	Finish bool
	// Reset overrides everything else for the tick.
	Reset bool
}

// String implements fmt.Stringer.
func (in Inputs) String() string {
	return fmt.Sprintf("sample=%#02x go=%v finish=%v reset=%v", in.Sample, in.Go, in.Finish, in.Reset)
}

// Outputs are the externally visible registers.
type Outputs struct {
	Range uint8
	Error bool
}

// Err returns ErrProtocolViolation when the error latch is set.
func (o Outputs) Err() error {
	if o.Error {
		return ErrProtocolViolation
	}
	return nil
}

// Registers is a snapshot of the complete register set.
type Registers struct {
	State      SessionState
	Watermarks Watermarks
	Range      uint8
}

// Outputs derives the output registers.
func (r Registers) Outputs() Outputs {
	return Outputs{Range: r.Range, Error: r.State == Errored}
}

// String implements fmt.Stringer.
func (r Registers) String() string {
	return fmt.Sprintf("state=%s high=%#02x low=%#02x range=%#02x",
		r.State, r.Watermarks.High, r.Watermarks.Low, r.Range)
}

// Tracker owns the register set.
type Tracker struct {
	regs  Registers
	event Event
}

// New creates a Tracker in reset state.
func New() *Tracker {
	t := &Tracker{}
	t.Reset()
	return t
}

// Reset re-initializes all registers.
func (t *Tracker) Reset() {
	t.regs = Registers{State: Idle}
	t.event = EventReset
}

// Tick advances one clock edge and returns the outputs after the edge.
func (t *Tracker) Tick(goSig, finish bool, sample uint8) (uint8, bool) {
	out := t.Advance(Inputs{Sample: sample, Go: goSig, Finish: finish})
	return out.Range, out.Error
}

// Advance advances one clock edge with explicit inputs.
func (t *Tracker) Advance(in Inputs) Outputs {
	if in.Reset {
		t.Reset()
		return t.regs.Outputs()
	}
	t.regs, t.event = next(t.regs, in)
	return t.regs.Outputs()
}

// Outputs reads the output registers.
func (t *Tracker) Outputs() Outputs {
	return t.regs.Outputs()
}

// State reads the session state.
func (t *Tracker) State() SessionState {
	return t.regs.State
}

// Watermarks reads the watermarks.
func (t *Tracker) Watermarks() Watermarks {
	return t.regs.Watermarks
}

// Registers reads the complete register set.
func (t *Tracker) Registers() Registers {
	return t.regs
}

// LastEvent reports what the most recent tick did.
func (t *Tracker) LastEvent() Event {
	return t.event
}

// next computes the register set after one edge from the pre-edge snapshot.
func next(cur Registers, in Inputs) (Registers, Event) {
	nxt := cur
	switch {
	case in.Go && in.Finish:
		nxt.State = Errored
		if cur.State == Errored {
			return nxt, EventNone
		}
		return nxt, EventViolation
	case cur.State == Errored:
		return nxt, EventNone
	case cur.State == Idle && in.Finish:
		nxt.State = Errored
		return nxt, EventViolation
	case cur.State == Idle && in.Go:
		nxt.Watermarks.Start(in.Sample)
		nxt.State = Tracking
		return nxt, EventSessionOpened
	case cur.State == Tracking && in.Finish:
		// the sample on the closing edge isn't folded.
		nxt.Range = cur.Watermarks.Spread()
		nxt.State = Idle
		return nxt, EventSessionClosed
	case cur.State == Tracking:
		nxt.Watermarks.Observe(in.Sample)
	}
	return nxt, EventNone
}
