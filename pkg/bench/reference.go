package bench

import "strings"

const referenceYAML = `
name: reference
steps:
  - {reset: true, repeat: 2, note: power-on reset}
  - {sample: 0x7f, repeat: 2}
  - {sample: 0x7f, go: true, note: session opens}
  - {sample: 0x80}
  - {sample: 0x81}
  - {sample: 0x7e}
  - {sample: 0x7f}
  - sample: 0x7f
    finish: true
    note: range latches
    expect: {range: 3, error: false, state: idle}
  - {}
  - go: true
    finish: true
    note: go and finish together
    expect: {error: true, state: errored}
  - {}
  - {repeat: 2}
  - finish: true
    note: finish without session
    expect: {error: true}
  - {expect: {error: true}}
  - {expect: {error: true, range: 3}, note: error is sticky}
  - reset: true
    expect: {error: false, range: 0, state: idle}
  - {sample: 0x01, go: true}
  - {sample: 0x00}
  - {sample: 0xff}
  - sample: 0x00
    finish: true
    note: widest range
    expect: {range: 0xff, error: false}
  - {repeat: 2, expect: {range: 0xff, state: idle}}
`

// Reference returns the built-in script covering the basic session, both
// violations, sticky error, reset and the widest range.
func Reference() *Script {
	s, err := Load(strings.NewReader(referenceYAML))
	if err != nil {
		panic(err)
	}
	return s
}
