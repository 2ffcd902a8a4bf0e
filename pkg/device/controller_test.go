package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/rangetrk/pkg/framework"
	"github.com/robotalks/rangetrk/pkg/l1"
	"github.com/robotalks/rangetrk/pkg/l1/comm"
	"github.com/robotalks/rangetrk/pkg/l1/msgs"
	"github.com/robotalks/rangetrk/pkg/tracker"
)

type testRegistrar struct {
	events []*msgs.TrackerEvent
}

func (r *testRegistrar) SendEvent(ctx context.Context, msg fx.Message) error {
	r.events = append(r.events, msg.(*msgs.TrackerEvent))
	return nil
}

func (r *testRegistrar) names() (names []string) {
	for _, ev := range r.events {
		names = append(names, ev.Event)
	}
	r.events = nil
	return
}

type testCommand struct {
	msg   fx.Message
	reply fx.Message
}

func (c *testCommand) Msg() fx.Message { return c.msg }

func (c *testCommand) Done(msg fx.Message) error {
	c.reply = msg
	return nil
}

type testDevice struct {
	t    *testing.T
	reg  *testRegistrar
	ctl  *Controller
	loop *fx.Loop
}

func newTestDevice(t *testing.T, conf *Config) *testDevice {
	d := &testDevice{t: t, reg: &testRegistrar{}}
	d.ctl = conf.NewControllerWith(d.reg)
	d.loop = conf.NewLoop()
	d.loop.Add(d.ctl, &comm.UnsupportedCommands{})
	return d
}

func (d *testDevice) do(msg fx.Message) fx.Message {
	cmd := &testCommand{msg: msg}
	d.loop.PostMessage(&l1.CommandMsg{Command: cmd})
	d.loop.Step(context.Background())
	require.NotNil(d.t, cmd.reply, "no reply")
	return cmd.reply
}

func (d *testDevice) status(msg fx.Message) *msgs.TrackerStatus {
	status, ok := d.do(msg).(*msgs.TrackerStatus)
	require.True(d.t, ok)
	return status
}

func TestCommands(t *testing.T) {
	d := newTestDevice(t, NewConfig())
	d.loop.Step(context.Background())
	require.Equal(t, []string{"reset"}, d.reg.names())

	status := d.status(&msgs.TrackerTick{Sample: 0x80, Go: true})
	require.Equal(t, tracker.Tracking, status.SessionState())
	require.Equal(t, uint64(1), status.Cycle)
	require.Equal(t, []string{"open"}, d.reg.names())

	status = d.status(&msgs.TrackerTick{Sample: 0x85, Cycles: 3})
	require.Equal(t, uint32(0x85), status.High)
	require.Equal(t, uint32(0x80), status.Low)
	require.Equal(t, uint64(4), status.Cycle)
	require.Empty(t, d.reg.names())

	status = d.status(&msgs.TrackerTick{Sample: 0xff, Finish: true})
	require.Equal(t, tracker.Idle, status.SessionState())
	require.Equal(t, uint32(5), status.Range)
	require.False(t, status.Error)
	require.Equal(t, []string{"close"}, d.reg.names())

	status = d.status(&msgs.TrackerStatusQuery{})
	require.Equal(t, uint32(5), status.Range)
	require.Equal(t, uint64(5), status.Cycle)

	status = d.status(&msgs.TrackerTick{Finish: true})
	require.True(t, status.Error)
	require.Equal(t, uint32(5), status.Range)
	require.Equal(t, []string{"violation"}, d.reg.names())

	status = d.status(&msgs.TrackerTick{Go: true, Finish: true, Cycles: 2})
	require.True(t, status.Error)
	require.Empty(t, d.reg.names(), "errored is absorbing")

	status = d.status(&msgs.TrackerReset{})
	require.Equal(t, tracker.Idle, status.SessionState())
	require.False(t, status.Error)
	require.Zero(t, status.Range)
	require.Equal(t, []string{"reset"}, d.reg.names())
}

func TestRejectInvalidCommands(t *testing.T) {
	testCases := []struct {
		name string
		msg  fx.Message
		err  error
	}{
		{"tick sample", &msgs.TrackerTick{Sample: 0x100, Go: true}, ErrSampleRange},
		{"tick wide sample", &msgs.TrackerTick{Sample: 0x1ff}, ErrSampleRange},
		{"drive sample", &msgs.TrackerDrive{Sample: 0x100, Go: true}, ErrSampleRange},
		{"cycles", &msgs.TrackerTick{Cycles: MaxTickCycles + 1}, ErrTooManyCycles},
		{"max cycles", &msgs.TrackerTick{Cycles: 0xffffffff}, ErrTooManyCycles},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := newTestDevice(t, NewConfig())
			reply, ok := d.do(tc.msg).(*msgs.CommandErr)
			require.True(t, ok)
			require.Equal(t, tc.err.Error(), reply.Message)
			require.Zero(t, d.ctl.Clocks())
			require.Equal(t, tracker.Inputs{}, d.ctl.Held())
			require.Equal(t, []string{"reset"}, d.reg.names())
		})
	}
}

func TestTickCycleLimit(t *testing.T) {
	d := newTestDevice(t, NewConfig())
	status := d.status(&msgs.TrackerTick{Cycles: MaxTickCycles})
	require.Equal(t, uint64(MaxTickCycles), status.Cycle)
}

func TestUnsupportedCommand(t *testing.T) {
	d := newTestDevice(t, NewConfig())
	reply := d.do(&msgs.CommandOK{})
	require.Equal(t, msgs.ErrUnsupportedCommand.Error(), reply.(*msgs.CommandErr).Message)
}

func TestFreeRun(t *testing.T) {
	conf := NewConfig()
	conf.FreeRun = true
	d := newTestDevice(t, conf)
	require.False(t, d.loop.Manual)

	_, ok := d.do(&msgs.TrackerDrive{Sample: 10, Go: true}).(*msgs.CommandOK)
	require.True(t, ok)
	require.Equal(t, tracker.Tracking, d.ctl.Tracker.State())
	require.Equal(t, uint64(1), d.ctl.Clocks())

	d.do(&msgs.TrackerDrive{Sample: 30})
	d.loop.Step(context.Background())
	d.do(&msgs.TrackerDrive{Sample: 99, Finish: true})
	require.Equal(t, tracker.Idle, d.ctl.Tracker.State())
	require.Equal(t, uint8(20), d.ctl.Tracker.Outputs().Range)
	require.Equal(t, []string{"reset", "open", "close"}, d.reg.names())

	// finish is still held.
	d.loop.Step(context.Background())
	require.Equal(t, tracker.Errored, d.ctl.Tracker.State())
	require.Equal(t, tracker.Inputs{Sample: 99, Finish: true}, d.ctl.Held())
}

func TestNotifyEvery(t *testing.T) {
	conf := NewConfig()
	conf.NotifyEvery = 2
	d := newTestDevice(t, conf)
	d.status(&msgs.TrackerTick{Cycles: 5})
	require.Equal(t, []string{"reset", "none", "none"}, d.reg.names())
}

func TestOverLoopback(t *testing.T) {
	devEnd, cliEnd := comm.NewLoopback()
	var reg comm.Registrar
	reg.Init(devEnd)
	conf := NewConfig()
	ctl := conf.NewControllerWith(&reg)
	device := conf.NewLoop()
	device.Add(&reg, ctl, &comm.UnsupportedCommands{})

	var conn comm.ControllerConn
	conn.Init(cliEnd)
	evCh := make(chan *msgs.TrackerEvent, 8)
	conn.OnEvent = func(msg fx.Message) { evCh <- msg.(*msgs.TrackerEvent) }
	client := fx.NewLoop()
	client.Manual = true
	client.Add(&conn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go device.Run(ctx)
	go client.Run(ctx)

	res := <-conn.DoCommand(&msgs.TrackerTick{Sample: 7, Go: true}).ResultChan()
	require.NoError(t, res.Err)
	require.Equal(t, tracker.Tracking, res.Msg.(*msgs.TrackerStatus).SessionState())
	require.Equal(t, "reset", (<-evCh).Event)
	require.Equal(t, "open", (<-evCh).Event)
	conn.Close()
}
