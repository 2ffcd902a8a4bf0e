package connector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rangetrk/pkg/l1/comm/mqtt"
)

func TestNewConnector(t *testing.T) {
	testCases := []struct {
		url    string
		direct bool
		fail   bool
	}{
		{"mqtt://localhost:1883/rangetrk/", false, false},
		{"tcp://localhost:7420", true, false},
		{"ws://localhost:7421/rangetrk", true, false},
		{"udp://localhost:7420", false, true},
		{"://", false, true},
	}
	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			conf := NewConfig()
			conf.RegistryURL = tc.url
			connector, err := conf.NewConnector()
			if tc.fail {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tc.direct {
				require.IsType(t, &directConnector{}, connector)
			} else {
				require.IsType(t, &mqtt.Connector{}, connector)
			}
		})
	}
}

func TestDirectDiscover(t *testing.T) {
	conf := NewConfig()
	conf.RegistryURL = "tcp://bench:7420"
	connector, err := conf.NewConnector()
	require.NoError(t, err)
	infos, err := connector.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	require.Equal(t, "rangetrk/bench:7420", infos[0].Ref.Name())
}

func TestConnectRequiresRef(t *testing.T) {
	conf := NewConfig()
	conf.Ref.ID = ""
	_, err := conf.Connect()
	require.Error(t, err)
}
