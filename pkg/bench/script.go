// Package bench drives a tracker with stimulus scripts and checks the
// outputs against expectations, tick by tick.
package bench

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/rangetrk/pkg/tracker"
)

// Script is a named list of stimulus steps.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step holds the inputs for Repeat ticks and what to expect after the last one.
type Step struct {
	Sample uint8 `yaml:"sample,omitempty"`
	Go     bool  `yaml:"go,omitempty"`
	Finish bool  `yaml:"finish,omitempty"`
	Reset  bool  `yaml:"reset,omitempty"`
	// Repeat is the number of ticks, 0 means 1.
	Repeat int     `yaml:"repeat,omitempty"`
	Expect *Expect `yaml:"expect,omitempty"`
	Note   string  `yaml:"note,omitempty"`
}

// Expect lists the outputs to check, unset fields are not checked.
type Expect struct {
	Range *uint8 `yaml:"range,omitempty"`
	Error *bool  `yaml:"error,omitempty"`
	State string `yaml:"state,omitempty"`
}

// Inputs converts the step to tracker inputs.
func (s *Step) Inputs() tracker.Inputs {
	return tracker.Inputs{Sample: s.Sample, Go: s.Go, Finish: s.Finish, Reset: s.Reset}
}

// Ticks returns the number of ticks of the step.
func (s *Step) Ticks() int {
	if s.Repeat == 0 {
		return 1
	}
	return s.Repeat
}

// Load reads and validates a script in YAML.
func Load(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse script: %v", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile loads a script from a file. The file name is used when the
// script is not named.
func LoadFile(fn string) (*Script, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", fn, err)
	}
	if s.Name == "" {
		s.Name = fn
	}
	return s, nil
}

// Validate checks the script without running it.
func (s *Script) Validate() error {
	for n := range s.Steps {
		step := &s.Steps[n]
		if step.Repeat < 0 {
			return fmt.Errorf("step %d: negative repeat %d", n+1, step.Repeat)
		}
		if exp := step.Expect; exp != nil && exp.State != "" {
			if _, err := tracker.ParseSessionState(exp.State); err != nil {
				return fmt.Errorf("step %d: %v", n+1, err)
			}
		}
	}
	return nil
}

// Marshal encodes the script in YAML.
func (s *Script) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
