package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rangetrk/pkg/l1"
	"github.com/robotalks/rangetrk/pkg/tracker"
)

func TestTypedEnvelope(t *testing.T) {
	typed, err := TypedFrom(&TrackerTick{Sample: 0x7e, Go: true, Cycles: 3})
	require.NoError(t, err)
	require.True(t, typed.IsCommand())
	require.False(t, typed.IsReply())
	typed.Sequence = 42

	data, err := typed.Encode()
	require.NoError(t, err)
	decoded, err := DecodeTyped(data)
	require.NoError(t, err)
	require.Equal(t, uint32(42), decoded.Sequence)
	msg, err := decoded.Decode()
	require.NoError(t, err)
	tick, ok := msg.(*TrackerTick)
	require.True(t, ok)
	require.Equal(t, tracker.Inputs{Sample: 0x7e, Go: true}, tick.Inputs())
	require.Equal(t, uint32(3), tick.Cycles)
}

func TestKinds(t *testing.T) {
	testCases := []struct {
		name    string
		msg     SerializableMessage
		command bool
		reply   bool
		event   bool
	}{
		{"ok", NewCommandOK(), true, true, false},
		{"err", NewCommandErrFromMsg("bad"), true, true, false},
		{"query", &TrackerStatusQuery{}, true, false, false},
		{"status", &TrackerStatus{}, true, true, false},
		{"reset", &TrackerReset{}, true, false, false},
		{"drive", &TrackerDrive{}, true, false, false},
		{"event", &TrackerEvent{}, false, false, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			typed, err := TypedFrom(tc.msg)
			require.NoError(t, err)
			require.Equal(t, tc.command, typed.IsCommand())
			require.Equal(t, tc.reply, typed.IsReply())
			require.Equal(t, tc.event, typed.IsEvent())
			require.Contains(t, MessageTypes, tc.msg.TypeID())
		})
	}
}

func TestEventCarriesStatus(t *testing.T) {
	regs := tracker.Registers{
		State:      tracker.Errored,
		Watermarks: tracker.Watermarks{High: 0x81, Low: 0x7e},
		Range:      3,
	}
	typed, err := TypedFrom(&TrackerEvent{Event: tracker.EventViolation.String(), Status: StatusFrom(regs, 9)})
	require.NoError(t, err)
	msg, err := typed.Decode()
	require.NoError(t, err)
	ev := msg.(*TrackerEvent)
	require.Equal(t, "violation", ev.Event)
	require.Equal(t, tracker.Errored, ev.Status.SessionState())
	require.True(t, ev.Status.Error)
	require.Equal(t, uint32(3), ev.Status.Range)
	require.Equal(t, uint64(9), ev.Status.Cycle)
}

func TestDecodeErrors(t *testing.T) {
	_, err := (&Typed{TypeId: GroupCustom | 1}).Decode()
	require.Equal(t, &ErrUnknownType{TypeID: GroupCustom | 1}, err)

	_, err = TypedFrom(&l1.CommandMsg{})
	require.Equal(t, ErrNotSerializable, err)

	cmdErr := NewCommandErr(tracker.ErrProtocolViolation)
	require.Equal(t, "protocol violation", cmdErr.Error())
}
