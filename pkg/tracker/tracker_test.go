package tracker

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type tick struct {
	sample      uint8
	goSig       bool
	finish      bool
	reset       bool
	expectRange uint8
	expectError bool
	expectState SessionState
}

func runTicks(t *testing.T, tr *Tracker, ticks []tick) {
	for n, tc := range ticks {
		out := tr.Advance(Inputs{Sample: tc.sample, Go: tc.goSig, Finish: tc.finish, Reset: tc.reset})
		require.Equalf(t, tc.expectRange, out.Range, "tick %d range", n)
		require.Equalf(t, tc.expectError, out.Error, "tick %d error", n)
		require.Equalf(t, tc.expectState, tr.State(), "tick %d state", n)
		require.Equalf(t, tr.State() == Errored, tr.Outputs().Error, "tick %d error flag", n)
	}
}

func TestScenarios(t *testing.T) {
	testCases := []struct {
		name  string
		ticks []tick
	}{
		{
			name: "simple session",
			ticks: []tick{
				{sample: 0x7f, expectState: Idle},
				{sample: 0x7f, expectState: Idle},
				{sample: 0x7f, goSig: true, expectState: Tracking},
				{sample: 0x80, expectState: Tracking},
				{sample: 0x81, expectState: Tracking},
				{sample: 0x7e, expectState: Tracking},
				{sample: 0x7f, expectState: Tracking},
				{sample: 0x7f, finish: true, expectRange: 3, expectState: Idle},
				{expectRange: 3, expectState: Idle},
			},
		},
		{
			name: "go and finish together",
			ticks: []tick{
				{goSig: true, finish: true, expectError: true, expectState: Errored},
			},
		},
		{
			name: "go and finish together while tracking",
			ticks: []tick{
				{sample: 9, goSig: true, expectState: Tracking},
				{sample: 1, goSig: true, finish: true, expectError: true, expectState: Errored},
			},
		},
		{
			name: "finish without go persists",
			ticks: []tick{
				{expectState: Idle},
				{expectState: Idle},
				{finish: true, expectError: true, expectState: Errored},
				{expectError: true, expectState: Errored},
				{expectError: true, expectState: Errored},
			},
		},
		{
			name: "go ignored while errored",
			ticks: []tick{
				{finish: true, expectError: true, expectState: Errored},
				{sample: 5, goSig: true, expectError: true, expectState: Errored},
				{sample: 6, finish: true, expectError: true, expectState: Errored},
			},
		},
		{
			name: "reset clears error then widest range",
			ticks: []tick{
				{finish: true, expectError: true, expectState: Errored},
				{reset: true, expectState: Idle},
				{sample: 0x01, goSig: true, expectState: Tracking},
				{sample: 0x00, expectState: Tracking},
				{sample: 0xff, expectState: Tracking},
				{sample: 0x00, finish: true, expectRange: 0xff, expectState: Idle},
			},
		},
		{
			name: "finish sample not folded",
			ticks: []tick{
				{sample: 10, goSig: true, expectState: Tracking},
				{sample: 12, expectState: Tracking},
				{sample: 200, finish: true, expectRange: 2, expectState: Idle},
			},
		},
		{
			name: "single sample session",
			ticks: []tick{
				{sample: 42, goSig: true, expectState: Tracking},
				{sample: 0, finish: true, expectRange: 0, expectState: Idle},
			},
		},
		{
			name: "range retained across error",
			ticks: []tick{
				{sample: 1, goSig: true, expectState: Tracking},
				{sample: 8, expectState: Tracking},
				{finish: true, expectRange: 7, expectState: Idle},
				{finish: true, expectRange: 7, expectError: true, expectState: Errored},
				{sample: 3, goSig: true, expectRange: 7, expectError: true, expectState: Errored},
			},
		},
		{
			name: "range overwritten by next session",
			ticks: []tick{
				{sample: 1, goSig: true, expectState: Tracking},
				{sample: 8, expectState: Tracking},
				{finish: true, expectRange: 7, expectState: Idle},
				{sample: 50, goSig: true, expectRange: 7, expectState: Tracking},
				{sample: 60, expectRange: 7, expectState: Tracking},
				{finish: true, expectRange: 10, expectState: Idle},
			},
		},
		{
			name: "go while tracking folds sample",
			ticks: []tick{
				{sample: 20, goSig: true, expectState: Tracking},
				{sample: 30, goSig: true, expectState: Tracking},
				{finish: true, expectRange: 10, expectState: Idle},
			},
		},
		{
			name: "reset during session",
			ticks: []tick{
				{sample: 1, goSig: true, expectState: Tracking},
				{sample: 9, expectState: Tracking},
				{finish: true, expectRange: 8, expectState: Idle},
				{sample: 4, goSig: true, expectRange: 8, expectState: Tracking},
				{reset: true, goSig: true, finish: true, expectState: Idle},
				{finish: true, expectError: true, expectState: Errored},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			runTicks(t, New(), tc.ticks)
		})
	}
}

func TestTick(t *testing.T) {
	tr := New()
	rng, errFlag := tr.Tick(true, false, 0x40)
	require.Equal(t, uint8(0), rng)
	require.False(t, errFlag)
	tr.Tick(false, false, 0x10)
	rng, errFlag = tr.Tick(false, true, 0x99)
	require.Equal(t, uint8(0x30), rng)
	require.False(t, errFlag)
	_, errFlag = tr.Tick(true, true, 0)
	require.True(t, errFlag)
	require.Equal(t, ErrProtocolViolation, tr.Outputs().Err())
}

func TestReset(t *testing.T) {
	tr := New()
	tr.Tick(true, false, 0xf0)
	tr.Tick(false, false, 0x0f)
	tr.Tick(false, true, 0)
	tr.Tick(true, false, 0x33)
	require.Equal(t, uint8(0xe1), tr.Outputs().Range)
	tr.Reset()
	require.Equal(t, Registers{State: Idle}, tr.Registers())
	require.Equal(t, Outputs{}, tr.Outputs())
	require.Equal(t, EventReset, tr.LastEvent())
	require.NoError(t, tr.Outputs().Err())
}

func TestEvents(t *testing.T) {
	tr := New()
	require.Equal(t, EventReset, tr.LastEvent())
	tr.Tick(false, false, 0)
	require.Equal(t, EventNone, tr.LastEvent())
	tr.Tick(true, false, 0)
	require.Equal(t, EventSessionOpened, tr.LastEvent())
	tr.Tick(false, false, 3)
	require.Equal(t, EventNone, tr.LastEvent())
	tr.Tick(false, true, 0)
	require.Equal(t, EventSessionClosed, tr.LastEvent())
	tr.Tick(false, true, 0)
	require.Equal(t, EventViolation, tr.LastEvent())
	tr.Tick(true, true, 0)
	require.Equal(t, EventNone, tr.LastEvent())
	tr.Advance(Inputs{Reset: true})
	require.Equal(t, EventReset, tr.LastEvent())
}

func TestWatermarks(t *testing.T) {
	var w Watermarks
	w.Start(0x80)
	for _, s := range []uint8{0x81, 0x7e, 0x7f, 0xff, 0x00} {
		w.Observe(s)
		require.True(t, w.High >= w.Low)
	}
	require.Equal(t, Watermarks{High: 0xff, Low: 0x00}, w)
	require.Equal(t, uint8(0xff), w.Spread())
	require.Equal(t, uint8(0xff), Watermarks{High: 0, Low: 1}.Spread())
}

func TestRandomSessions(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	tr := New()
	for round := 0; round < 200; round++ {
		n := rnd.Intn(20)
		first := uint8(rnd.Intn(256))
		tr.Tick(true, false, first)
		hi, lo := first, first
		for i := 0; i < n; i++ {
			s := uint8(rnd.Intn(256))
			tr.Tick(false, false, s)
			if s > hi {
				hi = s
			}
			if s < lo {
				lo = s
			}
			wm := tr.Watermarks()
			require.True(t, wm.High >= wm.Low)
		}
		rng, errFlag := tr.Tick(false, true, uint8(rnd.Intn(256)))
		require.False(t, errFlag)
		require.Equal(t, hi-lo, rng)
		for i := rnd.Intn(3); i > 0; i-- {
			rng2, _ := tr.Tick(false, false, uint8(rnd.Intn(256)))
			require.Equal(t, rng, rng2)
		}
	}
}

func TestErrorIsSticky(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	tr := New()
	tr.Tick(false, true, 0)
	for i := 0; i < 500; i++ {
		_, errFlag := tr.Tick(rnd.Intn(2) == 0, rnd.Intn(2) == 0, uint8(rnd.Intn(256)))
		require.True(t, errFlag)
		require.Equal(t, uint8(0), tr.Outputs().Range)
	}
}

func TestParseSessionState(t *testing.T) {
	for _, s := range []SessionState{Idle, Tracking, Errored} {
		parsed, err := ParseSessionState(s.String())
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}
	_, err := ParseSessionState("running")
	require.Error(t, err)
	require.Equal(t, "state(7)", SessionState(7).String())
}
