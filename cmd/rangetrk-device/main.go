package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/rangetrk/pkg/device"
	"github.com/robotalks/rangetrk/pkg/l1"
	env "github.com/robotalks/rangetrk/pkg/l1/env/controller"
)

func init() {
	env.SetControllerType("rangetrk", l1.ControllerMeta{Description: "Range tracker"})
	env.SetupFlags()
	device.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	env := env.NewConfig().MustNewEnv()
	conf := device.NewConfig()
	ctl := conf.NewController(env)
	glog.Infof("device %s registered at %v", ctl.Name(), env.RegistryURLs)

	conf.NewLoop().
		Add(env, ctl).
		RunOrFail()
}
