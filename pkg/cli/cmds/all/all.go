// Package all registers all shell commands.
package all

import (
	_ "github.com/robotalks/bluedisplay.go/pkg/cli/cmds/host"
)
