// Package all registers all shell commands.
package all

import (
	_ "github.com/robotalks/rangetrk/pkg/cli/cmds/tracker"
)
