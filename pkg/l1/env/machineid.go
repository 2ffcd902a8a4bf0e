// Package env holds what device and client environments share.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID salts the machine ID so it's not leaked verbatim over the wire.
const AppID = "rangetrk"

// MachineID retrieves the unique ID identifying the machine. It falls back
// to the hostname when the machine ID is unavailable (e.g. in containers).
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err == nil {
		return id[:16]
	}
	glog.V(1).Infof("machine ID unavailable: %v", err)
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "local"
}
