package pins

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rangetrk/pkg/tracker"
)

func setInputs(sample uint8, goSig, finish uint8) Pins {
	return Pins{UIIn: sample, UIOIn: (finish << 1) | goSig, RstN: true, Ena: true}
}

func getError(uio uint8) uint8 {
	return (uio >> 2) & 1
}

func TestInputs(t *testing.T) {
	testCases := []struct {
		name   string
		in     tracker.Inputs
		expect Pins
	}{
		{"idle", tracker.Inputs{Sample: 0x7f}, Pins{UIIn: 0x7f, RstN: true, Ena: true}},
		{"go", tracker.Inputs{Sample: 1, Go: true}, Pins{UIIn: 1, UIOIn: 1, RstN: true, Ena: true}},
		{"finish", tracker.Inputs{Finish: true}, Pins{UIOIn: 2, RstN: true, Ena: true}},
		{"both", tracker.Inputs{Go: true, Finish: true}, Pins{UIOIn: 3, RstN: true, Ena: true}},
		{"reset", tracker.Inputs{Reset: true}, Pins{Ena: true}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := EncodeInputs(tc.in)
			require.Equal(t, tc.expect, p)
			require.Equal(t, tc.in, DecodeInputs(p))
		})
	}
}

func TestDecodeIgnoresUnmappedBits(t *testing.T) {
	in := DecodeInputs(Pins{UIIn: 0x55, UIOIn: 0xfc, RstN: true})
	require.Equal(t, tracker.Inputs{Sample: 0x55}, in)
	require.Equal(t, tracker.Outputs{Range: 9}, DecodeOutputs(9, 0xfb))
	require.Equal(t, tracker.Outputs{Range: 9, Error: true}, DecodeOutputs(9, 0x04))
}

func TestOutputs(t *testing.T) {
	uo, uio := EncodeOutputs(tracker.Outputs{Range: 0x81, Error: true})
	require.Equal(t, uint8(0x81), uo)
	require.Equal(t, uint8(1), getError(uio))
	require.Equal(t, uint8(0), uio&^UIOEnable)
	require.Equal(t, tracker.Outputs{Range: 0x81, Error: true}, DecodeOutputs(uo, uio))
}

func TestChipSequence(t *testing.T) {
	c := NewChip()
	c.Clock(Pins{Ena: true})
	c.Clock(Pins{Ena: true})
	for _, s := range []uint8{0x7f, 0x7f} {
		c.Clock(setInputs(s, 0, 0))
	}
	c.Clock(setInputs(0x7f, 1, 0))
	for _, s := range []uint8{0x80, 0x81, 0x7e, 0x7f} {
		c.Clock(setInputs(s, 0, 0))
	}
	uo, uio := c.Clock(setInputs(0x7f, 0, 1))
	require.Equal(t, uint8(3), uo)
	require.Equal(t, uint8(0), getError(uio))

	_, uio = c.Clock(setInputs(0, 1, 1))
	require.Equal(t, uint8(1), getError(uio))

	_, uio = c.Clock(Pins{Ena: true})
	require.Equal(t, uint8(0), getError(uio))
	c.Clock(setInputs(0x01, 1, 0))
	c.Clock(setInputs(0x00, 0, 0))
	c.Clock(setInputs(0xff, 0, 0))
	uo, uio = c.Clock(setInputs(0x00, 0, 1))
	require.Equal(t, uint8(0xff), uo)
	require.Equal(t, uint8(0), getError(uio))
}

func TestChipClockGated(t *testing.T) {
	c := NewChip()
	c.Clock(setInputs(0x10, 1, 0))
	gated := setInputs(0xff, 0, 0)
	gated.Ena = false
	c.Clock(gated)
	gated.RstN = false
	c.Clock(gated)
	uo, uio := c.Clock(setInputs(0x00, 0, 1))
	require.Equal(t, uint8(0), uo)
	require.Equal(t, uint8(0), getError(uio))
	require.Equal(t, tracker.Idle, c.Tracker.State())

	c.Clock(setInputs(0, 0, 1))
	gated = setInputs(0, 0, 0)
	gated.Ena = false
	uo, uio = c.Clock(gated)
	require.Equal(t, uint8(1), getError(uio))
	uo2, uio2 := c.Read()
	require.Equal(t, uo, uo2)
	require.Equal(t, uio, uio2)
}
