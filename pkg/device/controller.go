package device

import (
	"errors"
	"fmt"

	"github.com/golang/glog"

	fx "github.com/robotalks/rangetrk/pkg/framework"
	"github.com/robotalks/rangetrk/pkg/l1"
	"github.com/robotalks/rangetrk/pkg/l1/msgs"
	"github.com/robotalks/rangetrk/pkg/tracker"
)

// MaxTickCycles limits the cycles clocked by one TrackerTick, the loop
// does nothing else while they run.
const MaxTickCycles = 4096

var (
	// ErrSampleRange indicates a sample wider than 8 bits.
	ErrSampleRange = errors.New("sample out of range")
	// ErrTooManyCycles indicates a TrackerTick above MaxTickCycles.
	ErrTooManyCycles = fmt.Errorf("too many cycles, max %d", MaxTickCycles)
)

// Controller hosts a tracker as a device.
type Controller struct {
	Registrar   l1.Registrar
	Tracker     *tracker.Tracker
	FreeRun     bool
	NotifyEvery uint64

	name    string
	held    tracker.Inputs
	clocks  uint64
	pending []*msgs.TrackerEvent
}

// NewController creates the controller.
func NewController(reg l1.Registrar) *Controller {
	c := &Controller{Registrar: reg, Tracker: tracker.New(), name: "rangetrk"}
	// announce the initial registers.
	c.queue(tracker.EventReset)
	return c
}

// Name implements Named.
func (c *Controller) Name() string {
	return c.name
}

// Clocks returns the number of clock edges the tracker has seen.
func (c *Controller) Clocks() uint64 {
	return c.clocks
}

// Held returns the inputs applied when free running.
func (c *Controller) Held() tracker.Inputs {
	return c.held
}

// Status builds the status reply from current registers.
func (c *Controller) Status() *msgs.TrackerStatus {
	return msgs.StatusFrom(c.Tracker.Registers(), c.clocks)
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvSample, fx.ControlFunc(c.HandleCommand))
	l.AddController(fx.PrLvClock, fx.ControlFunc(c.Clock))
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(c.NotifyChanges))
}

// HandleCommand is a controller processing commands.
func (c *Controller) HandleCommand(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		cmdMsg, ok := mctx.CurrentMessage().(*l1.CommandMsg)
		if !ok {
			return
		}
		switch m := cmdMsg.Command.Msg().(type) {
		case *msgs.TrackerStatusQuery:
			mctx.MessageTaken()
			cmdMsg.Command.Done(c.Status())
		case *msgs.TrackerTick:
			mctx.MessageTaken()
			if err := c.Tick(m); err != nil {
				cmdMsg.Command.Done(msgs.NewCommandErr(err))
				return
			}
			cmdMsg.Command.Done(c.Status())
		case *msgs.TrackerDrive:
			mctx.MessageTaken()
			if err := c.Drive(m); err != nil {
				cmdMsg.Command.Done(msgs.NewCommandErr(err))
				return
			}
			cmdMsg.Command.Done(msgs.NewCommandOK())
		case *msgs.TrackerReset:
			mctx.MessageTaken()
			c.step(tracker.Inputs{Reset: true})
			cmdMsg.Command.Done(c.Status())
		}
	}))
	return nil
}

// Tick clocks the tracker m.Cycles times (at least once).
// Invalid commands leave the tracker unclocked.
func (c *Controller) Tick(m *msgs.TrackerTick) error {
	if m.Sample > 0xff {
		return ErrSampleRange
	}
	if m.Cycles > MaxTickCycles {
		return ErrTooManyCycles
	}
	in := m.Inputs()
	cycles := m.Cycles
	if cycles == 0 {
		cycles = 1
	}
	for n := uint32(0); n < cycles; n++ {
		c.step(in)
	}
	return nil
}

// Drive sets the inputs applied when free running.
func (c *Controller) Drive(m *msgs.TrackerDrive) error {
	if m.Sample > 0xff {
		return ErrSampleRange
	}
	c.held = m.Inputs()
	glog.V(2).Infof("%s: drive %s", c.name, c.held)
	return nil
}

// Clock is a controller clocking the tracker when free running.
func (c *Controller) Clock(cc fx.ControlContext) error {
	if c.FreeRun {
		c.step(c.held)
	}
	return nil
}

// NotifyChanges is a controller sending queued events.
func (c *Controller) NotifyChanges(cc fx.ControlContext) error {
	events := c.pending
	c.pending = nil
	if c.Registrar == nil {
		return nil
	}
	var errs fx.AggregatedError
	for _, ev := range events {
		errs.Add(c.Registrar.SendEvent(cc.Context(), ev))
	}
	return errs.Aggregate()
}

func (c *Controller) step(in tracker.Inputs) {
	c.clocks++
	c.Tracker.Advance(in)
	ev := c.Tracker.LastEvent()
	if glog.V(4) {
		glog.Infof("%s: clock %d %s => %s", c.name, c.clocks, in, c.Tracker.Registers())
	}
	switch ev {
	case tracker.EventSessionOpened:
		glog.V(1).Infof("%s: session opened at %d", c.name, in.Sample)
	case tracker.EventSessionClosed:
		glog.V(1).Infof("%s: session closed, range %d", c.name, c.Tracker.Outputs().Range)
	case tracker.EventViolation:
		glog.Warningf("%s: protocol violation at clock %d (%s)", c.name, c.clocks, in)
	case tracker.EventReset:
		glog.V(1).Infof("%s: reset", c.name)
	}
	if ev != tracker.EventNone {
		c.queue(ev)
	} else if c.NotifyEvery > 0 && c.clocks%c.NotifyEvery == 0 {
		c.queue(ev)
	}
}

func (c *Controller) queue(ev tracker.Event) {
	c.pending = append(c.pending, &msgs.TrackerEvent{Event: ev.String(), Status: c.Status()})
}
