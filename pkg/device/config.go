package device

import (
	"flag"
	"time"

	fx "github.com/robotalks/rangetrk/pkg/framework"
	"github.com/robotalks/rangetrk/pkg/l1"
	env "github.com/robotalks/rangetrk/pkg/l1/env/controller"
)

// Config defines the configuration for the device.
type Config struct {
	// ClockInterval is the clock period when free running.
	ClockInterval time.Duration
	// FreeRun clocks the tracker on every loop cycle with the inputs set by
	// TrackerDrive. Otherwise the tracker is only clocked by TrackerTick.
	FreeRun bool
	// NotifyEvery sends the status every N clocks even when nothing
	// changed. 0 disables it.
	NotifyEvery uint64
}

// DefaultClockInterval is the default clock period.
const DefaultClockInterval = fx.DefaultInterval

var defaultConfig = Config{
	ClockInterval: DefaultClockInterval,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.DurationVar(&defaultConfig.ClockInterval, "clock", defaultConfig.ClockInterval, "Clock period when free running.")
	flag.BoolVar(&defaultConfig.FreeRun, "free-run", defaultConfig.FreeRun, "Clock the tracker continuously with driven inputs.")
	flag.Uint64Var(&defaultConfig.NotifyEvery, "notify-every", defaultConfig.NotifyEvery, "Send status every N clocks, 0 only on changes.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates the default configuration.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewLoop creates the loop clocking the device.
func (c *Config) NewLoop() *fx.Loop {
	loop := fx.NewLoop()
	loop.Interval = c.ClockInterval
	loop.Manual = !c.FreeRun
	return loop
}

// NewController creates the Controller publishing through the env.
func (c *Config) NewController(e *env.Env) *Controller {
	ctl := c.NewControllerWith(e.Registrar)
	ctl.name = e.Config.Info.Ref.Name()
	return ctl
}

// NewControllerWith creates the Controller publishing through reg.
func (c *Config) NewControllerWith(reg l1.Registrar) *Controller {
	ctl := NewController(reg)
	ctl.FreeRun = c.FreeRun
	ctl.NotifyEvery = c.NotifyEvery
	return ctl
}
