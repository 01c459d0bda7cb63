package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"

	"github.com/golang/glog"

	"github.com/robotalks/bluedisplay.go/pkg/demo"
	"github.com/robotalks/bluedisplay.go/pkg/device"
	"github.com/robotalks/bluedisplay.go/pkg/display"
)

func init() {
	display.SetupFlags()
	device.SetupFlags()
}

func main() {
	flag.Parse()

	conf, err := device.NewConfig()
	if err != nil {
		log.Fatalln(err)
	}
	env := conf.MustNewEnv(context.Background())
	app := demo.NewSketch(env.Display)
	if err := app.EnableLongTouch(); err != nil {
		glog.Warningf("long touch: %v", err)
	}
	app.AddToLoop(env.Loop)
	env.Loop.Post(func() {
		if err := app.RequestHost(context.Background()); err != nil {
			glog.Warningf("request canvas size: %v", err)
		}
	})
	env.RunOrFail()
}
