package tracker

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/rangetrk/pkg/cli/sh"
	"github.com/robotalks/rangetrk/pkg/l1/msgs"
)

// Levels are the go/finish levels applied with a sample.
type Levels struct {
	Go     bool
	Finish bool
}

// ParseSample parses a sample in decimal, hex (0x) or binary (0b).
func ParseSample(s string) (uint32, error) {
	val, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid SAMPLE %q: %v", s, err)
	}
	return uint32(val), nil
}

// ParseLevels parses go, finish, both or none.
func ParseLevels(s string) (lv Levels, err error) {
	switch s {
	case "none", "-":
	case "go", "g":
		lv.Go = true
	case "finish", "fin", "f":
		lv.Finish = true
	case "both":
		lv.Go, lv.Finish = true, true
	default:
		err = fmt.Errorf("invalid level %q, expect go, finish, both or none", s)
	}
	return
}

// ParseTick parses SAMPLE [go|finish|both] [CYCLES].
func ParseTick(args []string) (*msgs.TrackerTick, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("SAMPLE required")
	}
	var msg msgs.TrackerTick
	var err error
	if msg.Sample, err = ParseSample(args[0]); err != nil {
		return nil, err
	}
	if len(args) > 1 {
		lv, err := ParseLevels(args[1])
		if err != nil {
			return nil, err
		}
		msg.Go, msg.Finish = lv.Go, lv.Finish
	}
	if len(args) > 2 {
		cycles, err := strconv.ParseUint(args[2], 10, 32)
		if err != nil || cycles == 0 {
			return nil, fmt.Errorf("invalid CYCLES %q", args[2])
		}
		msg.Cycles = uint32(cycles)
	}
	return &msg, nil
}

// ParseDrive parses SAMPLE [go|finish|both].
func ParseDrive(args []string) (*msgs.TrackerDrive, error) {
	if len(args) > 2 {
		return nil, fmt.Errorf("too many arguments")
	}
	tick, err := ParseTick(args)
	if err != nil {
		return nil, err
	}
	return &msgs.TrackerDrive{Sample: tick.Sample, Go: tick.Go, Finish: tick.Finish}, nil
}

var (
	// TickCmd exposes TrackerTick command.
	TickCmd = ishell.Cmd{
		Name:    "tr.tick",
		Aliases: []string{"tt"},
		Help:    "SAMPLE [go|finish|both] [CYCLES]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			msg, err := ParseTick(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msg)
		}),
	}

	// DriveCmd exposes TrackerDrive command.
	DriveCmd = ishell.Cmd{
		Name:    "tr.drive",
		Aliases: []string{"td"},
		Help:    "SAMPLE [go|finish|both]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			msg, err := ParseDrive(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msg)
		}),
	}

	// ResetCmd exposes TrackerReset command.
	ResetCmd = ishell.Cmd{
		Name:    "tr.reset",
		Aliases: []string{"tr"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.TrackerReset{})
		}),
	}

	// StatusCmd exposes TrackerStatusQuery command.
	StatusCmd = ishell.Cmd{
		Name:    "tr.status",
		Aliases: []string{"ts"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.TrackerStatusQuery{})
		}),
	}
)

func init() {
	sh.AddCmds(
		&TickCmd,
		&DriveCmd,
		&ResetCmd,
		&StatusCmd,
	)
}
