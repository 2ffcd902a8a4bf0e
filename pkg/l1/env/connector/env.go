package connector

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"

	"github.com/robotalks/rangetrk/pkg/l1"
	"github.com/robotalks/rangetrk/pkg/l1/comm"
	"github.com/robotalks/rangetrk/pkg/l1/comm/mqtt"
	"github.com/robotalks/rangetrk/pkg/l1/comm/stream"
	"github.com/robotalks/rangetrk/pkg/l1/comm/websocket"
)

// Config provides common options to setup Connectors.
type Config struct {
	Ref l1.ControllerRef

	// RegistryURL specifies where devices are found, one of
	//   mqtt://host:port/topic-prefix
	//   tcp://host:port
	//   ws://host:port/rangetrk
	RegistryURL string
}

var defaultConfig = Config{
	Ref:         l1.ControllerRef{Type: "rangetrk"},
	RegistryURL: "mqtt://localhost:1883/rangetrk/",
}

func init() {
	if val := os.Getenv("RANGETRK_TYPE"); val != "" {
		defaultConfig.Ref.Type = val
	}
	if val := os.Getenv("RANGETRK_ID"); val != "" {
		defaultConfig.Ref.ID = val
	}
	if val := os.Getenv("RANGETRK_REGISTRY_URL"); val != "" {
		defaultConfig.RegistryURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "device-type", defaultConfig.Ref.Type, "Device type to connect.")
	flag.StringVar(&defaultConfig.Ref.ID, "device-id", defaultConfig.Ref.ID, "Device ID to connect.")
	flag.StringVar(&defaultConfig.RegistryURL, "reg", defaultConfig.RegistryURL, "Device registry URL.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewConnector creates a Connector using current config.
func (c *Config) NewConnector() (l1.Connector, error) {
	parsedURL, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %v", err)
	}
	switch parsedURL.Scheme {
	case "mqtt":
		return mqtt.NewConnector(c.RegistryURL)
	case "tcp":
		return &directConnector{url: parsedURL, dial: dialTCP}, nil
	case "ws", "wss":
		return &directConnector{url: parsedURL, dial: dialWebsocket}, nil
	default:
		return nil, fmt.Errorf("unknown registry URL scheme: %q", parsedURL.Scheme)
	}
}

// MustNewConnector creates a Connector and fails on error.
func (c *Config) MustNewConnector() l1.Connector {
	conn, err := c.NewConnector()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}

// Connect directly connects to a device.
func (c *Config) Connect() (l1.ControllerConn, error) {
	if !c.Ref.IsValid() {
		return nil, fmt.Errorf("device type and id must be specified")
	}
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Connect(context.TODO(), c.Ref)
}

// MustConnect connects to a device or fails.
func (c *Config) MustConnect() l1.ControllerConn {
	conn, err := c.Connect()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}

type dialFunc func(*url.URL) (comm.PacketConn, error)

func dialTCP(u *url.URL) (comm.PacketConn, error) {
	conn, err := net.Dial("tcp", u.Host)
	if err != nil {
		return nil, err
	}
	return stream.New(conn), nil
}

func dialWebsocket(u *url.URL) (comm.PacketConn, error) {
	return websocket.Dial(u.String())
}

// directConnector reaches exactly one device at a known address.
// Discovery asks the device for nothing, the address is the device.
type directConnector struct {
	url  *url.URL
	dial dialFunc
}

// Discover implements Connector.
func (c *directConnector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	return []l1.ControllerInfo{{
		Ref:  l1.ControllerRef{Type: "rangetrk", ID: c.url.Host},
		Meta: l1.ControllerMeta{Description: c.url.String()},
	}}, nil
}

// Connect implements Connector. The ref is ignored as the address already
// identifies the device.
func (c *directConnector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	rw, err := c.dial(c.url)
	if err != nil {
		return nil, err
	}
	conn := &comm.ControllerConn{}
	conn.Init(rw)
	return conn, nil
}
