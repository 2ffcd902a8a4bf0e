package bench

import (
	"fmt"
	"io"
	"text/tabwriter"

	fx "github.com/robotalks/rangetrk/pkg/framework"
	"github.com/robotalks/rangetrk/pkg/pins"
	"github.com/robotalks/rangetrk/pkg/tracker"
)

// TraceRow records one tick.
type TraceRow struct {
	Tick      int
	Step      int
	Inputs    tracker.Inputs
	Registers tracker.Registers
	Event     tracker.Event
	Note      string
}

// Trace is the waveform of a run.
type Trace []TraceRow

// WriteTo implements io.WriterTo as a table.
func (t Trace) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	tw := tabwriter.NewWriter(cw, 0, 4, 1, ' ', 0)
	fmt.Fprintln(tw, "TICK\tSTEP\tSAMPLE\tGO\tFIN\tRST\tSTATE\tHIGH\tLOW\tRANGE\tERR\tEVENT\tNOTE")
	for _, row := range t {
		out := row.Registers.Outputs()
		fmt.Fprintf(tw, "%d\t%d\t%#02x\t%s\t%s\t%s\t%s\t%#02x\t%#02x\t%#02x\t%s\t%s\t%s\n",
			row.Tick, row.Step, row.Inputs.Sample,
			bit(row.Inputs.Go), bit(row.Inputs.Finish), bit(row.Inputs.Reset),
			row.Registers.State, row.Registers.Watermarks.High, row.Registers.Watermarks.Low,
			out.Range, bit(out.Error), eventCol(row.Event), row.Note)
	}
	err := tw.Flush()
	return cw.n, err
}

func bit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func eventCol(ev tracker.Event) string {
	if ev == tracker.EventNone {
		return "-"
	}
	return ev.String()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// MismatchError reports an output not matching the expectation.
type MismatchError struct {
	Step   int
	Tick   int
	Field  string
	Expect interface{}
	Actual interface{}
}

// Error implements error.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("step %d (tick %d): %s expected %v, got %v",
		e.Step, e.Tick, e.Field, e.Expect, e.Actual)
}

// Report summarizes a run.
type Report struct {
	Script     string
	Trace      Trace
	Checks     int
	Mismatches []*MismatchError
}

// Passed indicates all expectations were met.
func (r *Report) Passed() bool {
	return len(r.Mismatches) == 0
}

// String implements fmt.Stringer.
func (r *Report) String() string {
	result := "PASS"
	if !r.Passed() {
		result = "FAIL"
	}
	return fmt.Sprintf("%s: %s, %d ticks, %d checks, %d mismatches",
		r.Script, result, len(r.Trace), r.Checks, len(r.Mismatches))
}

// Run clocks the tracker through the script. All mismatches are collected,
// the returned error aggregates them.
func Run(t *tracker.Tracker, s *Script) (*Report, error) {
	return run(t, s, t.Advance)
}

// RunChip is Run with every tick driven and sampled through the pins.
func RunChip(c *pins.Chip, s *Script) (*Report, error) {
	return run(c.Tracker, s, func(in tracker.Inputs) tracker.Outputs {
		return pins.DecodeOutputs(c.Clock(pins.EncodeInputs(in)))
	})
}

func run(t *tracker.Tracker, s *Script, clock func(tracker.Inputs) tracker.Outputs) (*Report, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	report := &Report{Script: s.Name}
	var errs fx.AggregatedError
	for n := range s.Steps {
		step := &s.Steps[n]
		in := step.Inputs()
		var out tracker.Outputs
		for i := step.Ticks(); i > 0; i-- {
			out = clock(in)
			report.Trace = append(report.Trace, TraceRow{
				Tick:      len(report.Trace) + 1,
				Step:      n + 1,
				Inputs:    in,
				Registers: t.Registers(),
				Event:     t.LastEvent(),
				Note:      step.Note,
			})
		}
		if step.Expect == nil {
			continue
		}
		for _, m := range check(out, t.State(), step.Expect) {
			m.Step, m.Tick = n+1, len(report.Trace)
			report.Mismatches = append(report.Mismatches, m)
			errs.Add(m)
		}
		report.Checks++
	}
	return report, errs.Aggregate()
}

func check(out tracker.Outputs, cur tracker.SessionState, exp *Expect) (mismatches []*MismatchError) {
	if exp.Range != nil && *exp.Range != out.Range {
		mismatches = append(mismatches, &MismatchError{Field: "range", Expect: *exp.Range, Actual: out.Range})
	}
	if exp.Error != nil && *exp.Error != out.Error {
		mismatches = append(mismatches, &MismatchError{Field: "error", Expect: *exp.Error, Actual: out.Error})
	}
	if exp.State != "" {
		// validated before running.
		state, _ := tracker.ParseSessionState(exp.State)
		if state != cur {
			mismatches = append(mismatches, &MismatchError{Field: "state", Expect: state, Actual: cur})
		}
	}
	return
}
