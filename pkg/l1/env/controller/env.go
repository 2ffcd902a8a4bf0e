package controller

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/rangetrk/pkg/framework"
	"github.com/robotalks/rangetrk/pkg/l1"
	"github.com/robotalks/rangetrk/pkg/l1/comm"
	"github.com/robotalks/rangetrk/pkg/l1/comm/mqtt"
	"github.com/robotalks/rangetrk/pkg/l1/comm/stream"
	wsrw "github.com/robotalks/rangetrk/pkg/l1/comm/websocket"
	"github.com/robotalks/rangetrk/pkg/l1/env"
)

// Config provides common options to setup an env for devices.
type Config struct {
	Info l1.ControllerInfo

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// TCPListen is the address accepting length-prefixed packet streams.
	TCPListen string
	// WSListen is the address serving websocket on WSPath.
	WSListen string
}

// WSPath is the HTTP path of the websocket endpoint.
const WSPath = "/rangetrk"

var defaultConfig = Config{
	MQTTBrokerURL: "mqtt://localhost:1883/rangetrk/",
}

func init() {
	if val := os.Getenv("RANGETRK_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("RANGETRK_TCP_LISTEN"); val != "" {
		defaultConfig.TCPListen = val
	}
	if val := os.Getenv("RANGETRK_WS_LISTEN"); val != "" {
		defaultConfig.WSListen = val
	}
	defaultConfig.Info.Ref.ID = env.MachineID()
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.Type, "type", defaultConfig.Info.Ref.Type, "Device type")
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Device ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&defaultConfig.TCPListen, "tcp", defaultConfig.TCPListen, "TCP listen address, e.g. :7420")
	flag.StringVar(&defaultConfig.WSListen, "ws", defaultConfig.WSListen, "Websocket listen address, e.g. :7421")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// SetControllerType should be called in init with basic info about the device.
func SetControllerType(typ string, meta l1.ControllerMeta) {
	defaultConfig.Info.Ref.Type = typ
	defaultConfig.Info.Meta = meta
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Env is the env for devices.
type Env struct {
	Config       *Config
	RegistryURLs []string
	Registrar    *comm.RegistrarMux
	// Hub serves clients connected over TCP or websocket.
	Hub *comm.Hub
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("device type and id must be specified")
	}
	env := &Env{
		Config:    c,
		Registrar: &comm.RegistrarMux{},
		Hub:       &comm.Hub{},
	}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar error: %v", err)
		}
		env.Registrar.Add(reg)
		env.RegistryURLs = append(env.RegistryURLs, c.MQTTBrokerURL)
	}
	if c.TCPListen != "" {
		env.RegistryURLs = append(env.RegistryURLs, "tcp://"+c.TCPListen)
	}
	if c.WSListen != "" {
		env.RegistryURLs = append(env.RegistryURLs, "ws://"+c.WSListen+WSPath)
	}
	if c.TCPListen != "" || c.WSListen != "" {
		env.Registrar.Add(env.Hub)
	}
	if len(env.Registrar.Registrars) == 0 {
		return nil, fmt.Errorf("at least one registrar is required")
	}
	return env, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// AddToLoop adds registrars and listeners to loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Registrar)
	loop.Add(&comm.UnsupportedCommands{})
	if addr := e.Config.TCPListen; addr != "" {
		loop.AddRunnable(fx.NamedRun("tcp", &tcpListener{addr: addr, hub: e.Hub}))
	}
	if addr := e.Config.WSListen; addr != "" {
		loop.AddRunnable(fx.NamedRun("websocket", &wsListener{addr: addr, hub: e.Hub}))
	}
}

type tcpListener struct {
	addr string
	hub  *comm.Hub
}

func (l *tcpListener) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return err
	}
	glog.Infof("listening on tcp %s", ln.Addr())
	return fx.RunWithContextCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return err
			}
			glog.V(1).Infof("accepted %s", conn.RemoteAddr())
			go l.hub.Serve(ctx, stream.New(conn))
		}
	})
}

type wsListener struct {
	addr string
	hub  *comm.Hub
}

func (l *wsListener) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(WSPath, websocket.Handler(func(conn *websocket.Conn) {
		glog.V(1).Infof("accepted websocket %s", conn.Request().RemoteAddr)
		l.hub.Serve(ctx, wsrw.New(conn))
	}))
	server := &http.Server{Addr: l.addr, Handler: mux}
	glog.Infof("listening on websocket %s%s", l.addr, WSPath)
	return fx.RunWithContextCloser(ctx, server, server.ListenAndServe)
}
