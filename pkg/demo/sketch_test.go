package demo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bluedisplay.go/pkg/display"
	"github.com/robotalks/bluedisplay.go/pkg/framework"
	"github.com/robotalks/bluedisplay.go/pkg/protocol"
	"github.com/robotalks/bluedisplay.go/pkg/sim"
)

func functions(cmds []*protocol.Command) []protocol.FunctionID {
	fns := make([]protocol.FunctionID, len(cmds))
	for i, cmd := range cmds {
		fns[i] = cmd.Function
	}
	return fns
}

func TestSketch(t *testing.T) {
	r := sim.NewDMARig(320, 240, nil, 256)
	s := NewSketch(r.Display)

	require.NoError(t, r.Host.Connect())
	r.Display.CheckAndHandleEvents()
	cmds := r.Host.TakeCommands()
	require.Equal(t, []protocol.FunctionID{protocol.FunctionClearDisplay, protocol.FunctionDrawString}, functions(cmds))
	require.Equal(t, Title, string(cmds[1].Payload))

	require.NoError(t, r.Host.Touch(protocol.EventTouchDown, 10, 10))
	require.NoError(t, r.Host.Touch(protocol.EventTouchMove, 12, 11))
	require.NoError(t, r.Host.Touch(protocol.EventTouchUp, 14, 12))
	r.Display.CheckAndHandleEvents()
	cmds = r.Host.TakeCommands()
	require.Equal(t, []protocol.FunctionID{protocol.FunctionDrawPixel, protocol.FunctionDrawLine, protocol.FunctionDrawLine}, functions(cmds))
	require.Equal(t, []uint16{10, 10, 12, 11, 0}, cmds[1].Args)
	require.Equal(t, []uint16{12, 11, 14, 12, 0}, cmds[2].Args)
	require.Equal(t, 1, s.Strokes())

	require.NoError(t, r.Host.Drag(0, 100, 200, 100, 1))
	r.Display.CheckAndHandleEvents()
	cmds = r.Host.TakeCommands()
	require.Equal(t, []protocol.FunctionID{
		protocol.FunctionDrawPixel,
		protocol.FunctionDrawLine,
		protocol.FunctionClearDisplay,
		protocol.FunctionDrawString,
	}, functions(cmds))
	require.Zero(t, s.Strokes())
}

func TestSketchLongTouch(t *testing.T) {
	r := sim.NewDMARig(320, 240, nil, 256)
	s := NewSketch(r.Display)
	require.NoError(t, s.EnableLongTouch())
	r.Host.TakeCommands()

	require.NoError(t, r.Host.Touch(protocol.EventTouchDown, 2, 50))
	require.NoError(t, r.Host.Touch(protocol.EventLongTouchDownCallback, 2, 50))
	require.NoError(t, r.Host.Touch(protocol.EventTouchUp, 2, 50))
	r.Display.CheckAndHandleEvents()
	cmds := r.Host.TakeCommands()
	require.Equal(t, []protocol.FunctionID{protocol.FunctionDrawPixel, protocol.FunctionFillRect}, functions(cmds))
	require.Equal(t, []uint16{0, 47, 5, 53, 0xF800}, cmds[1].Args)
	require.Zero(t, s.Strokes())
}

func probeRig() *sim.Rig {
	conf := display.NewConfig()
	conf.ConnectTimeout = 20 * time.Millisecond
	conf.PollInterval = time.Millisecond
	return sim.NewDMARig(320, 240, conf, 256)
}

func TestSketchRequestHost(t *testing.T) {
	r := probeRig()
	s := NewSketch(r.Display)
	r.Host.MaxWidth, r.Host.MaxHeight = 640, 480

	require.NoError(t, s.RequestHost(context.Background()))
	require.False(t, s.Lost())
	require.True(t, r.Display.Dispatcher.IsConnected())

	r.Host.Mute = true
	err := s.RequestHost(context.Background())
	require.True(t, errors.Is(err, display.ErrConnectTimeout), "got %v", err)
	require.True(t, s.Lost())
}

func TestSketchProbesIdleHost(t *testing.T) {
	r := probeRig()
	s := NewSketch(r.Display)
	s.IdleTimeout = time.Millisecond
	loop := framework.NewLoop(r.Display)
	s.AddToLoop(loop)
	ctx := context.Background()

	require.NoError(t, r.Host.Connect())
	loop.RunOnce(ctx)
	r.Host.TakeCommands()

	time.Sleep(5 * time.Millisecond)
	loop.RunOnce(ctx)
	require.Contains(t, functions(r.Host.TakeCommands()), protocol.FunctionRequestMaxCanvasSize)
	require.False(t, s.Lost())

	r.Host.Mute = true
	time.Sleep(5 * time.Millisecond)
	loop.RunOnce(ctx)
	require.True(t, s.Lost())

	// a lost host is not probed again until it shows up.
	r.Host.TakeCommands()
	time.Sleep(5 * time.Millisecond)
	loop.RunOnce(ctx)
	require.Empty(t, r.Host.TakeCommands())

	r.Host.Mute = false
	require.NoError(t, r.Host.Redraw())
	loop.RunOnce(ctx)
	require.False(t, s.Lost())
}
