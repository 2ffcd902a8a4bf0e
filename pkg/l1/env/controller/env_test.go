package controller

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rangetrk/pkg/l1"
)

func TestNewEnv(t *testing.T) {
	conf := NewConfig()
	conf.Info.Ref = l1.ControllerRef{Type: "rangetrk", ID: "t0"}
	conf.MQTTBrokerURL, conf.TCPListen, conf.WSListen = "", "", ""
	_, err := conf.NewEnv()
	require.Error(t, err, "no registrar")

	conf.TCPListen = "127.0.0.1:0"
	conf.WSListen = "127.0.0.1:0"
	env, err := conf.NewEnv()
	require.NoError(t, err)
	require.Len(t, env.Registrar.Registrars, 1)
	require.Equal(t, []string{"tcp://127.0.0.1:0", "ws://127.0.0.1:0" + WSPath}, env.RegistryURLs)

	conf.Info.Ref.ID = ""
	_, err = conf.NewEnv()
	require.Error(t, err)
}
