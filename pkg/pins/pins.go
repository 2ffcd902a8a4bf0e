// Package pins maps the tracker onto the tile pin interface.
//
//	ui_in[7:0]  = sample
//	uio_in[0]   = go
//	uio_in[1]   = finish
//	uo_out[7:0] = range
//	uio_out[2]  = error
//	rst_n       = reset, active low
//	ena         = clock enable
package pins

import (
	"fmt"

	"github.com/robotalks/rangetrk/pkg/tracker"
)

// Bits on the bidirectional bus.
const (
	UIOGo     uint8 = 1 << 0
	UIOFinish uint8 = 1 << 1
	UIOError  uint8 = 1 << 2

	// UIOEnable is the output enable mask of uio: only the error bit drives.
	UIOEnable = UIOError
)

// Pins are the input pin levels for one clock edge.
type Pins struct {
	UIIn  uint8
	UIOIn uint8
	RstN  bool
	Ena   bool
}

// String implements fmt.Stringer.
func (p Pins) String() string {
	return fmt.Sprintf("ui_in=%#02x uio_in=%#02x rst_n=%v ena=%v", p.UIIn, p.UIOIn, p.RstN, p.Ena)
}

// DecodeInputs extracts tracker inputs from pin levels.
func DecodeInputs(p Pins) tracker.Inputs {
	return tracker.Inputs{
		Sample: p.UIIn,
		Go:     p.UIOIn&UIOGo != 0,
		Finish: p.UIOIn&UIOFinish != 0,
		Reset:  !p.RstN,
	}
}

// EncodeInputs builds pin levels driving the given inputs with ena set.
func EncodeInputs(in tracker.Inputs) Pins {
	p := Pins{UIIn: in.Sample, RstN: !in.Reset, Ena: true}
	if in.Go {
		p.UIOIn |= UIOGo
	}
	if in.Finish {
		p.UIOIn |= UIOFinish
	}
	return p
}

// EncodeOutputs drives uo_out and uio_out from the output registers.
func EncodeOutputs(out tracker.Outputs) (uo, uio uint8) {
	uo = out.Range
	if out.Error {
		uio = UIOError
	}
	return
}

// DecodeOutputs reads the output registers back from output pins.
// Bits outside UIOEnable are ignored.
func DecodeOutputs(uo, uio uint8) tracker.Outputs {
	return tracker.Outputs{Range: uo, Error: uio&UIOError != 0}
}

// Chip is a tracker clocked through its pins.
type Chip struct {
	Tracker *tracker.Tracker
}

// NewChip creates a Chip with a tracker in reset state.
func NewChip() *Chip {
	return &Chip{Tracker: tracker.New()}
}

// Clock applies one rising edge. When ena is low the clock is gated
// and registers hold, a low rst_n included: reset only takes effect on an
// enabled edge, unlike a real tile where reset doesn't depend on ena.
func (c *Chip) Clock(p Pins) (uo, uio uint8) {
	if !p.Ena {
		return c.Read()
	}
	return EncodeOutputs(c.Tracker.Advance(DecodeInputs(p)))
}

// Read samples the output pins without clocking.
func (c *Chip) Read() (uo, uio uint8) {
	return EncodeOutputs(c.Tracker.Outputs())
}
