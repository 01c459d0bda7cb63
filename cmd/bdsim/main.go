package main

import (
	"github.com/robotalks/bluedisplay.go/pkg/cli/sh"
	"github.com/robotalks/bluedisplay.go/pkg/display"

	_ "github.com/robotalks/bluedisplay.go/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	display.SetupFlags()
}

func main() {
	sh.Main()
}
