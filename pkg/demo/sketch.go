// Package demo contains a small drawing application on top of the engine.
package demo

import (
	"context"
	"errors"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bluedisplay.go/pkg/display"
	"github.com/robotalks/bluedisplay.go/pkg/framework"
	"github.com/robotalks/bluedisplay.go/pkg/protocol"
)

// Title is drawn on top of the canvas.
const Title = "BlueDisplay sketch"

// DefaultIdleTimeout is the time without host events before the host is
// probed with a canvas size request.
const DefaultIdleTimeout = 30 * time.Second

// Sketch draws lines following the touch pointer. A swipe clears the
// canvas and a long touch drops a marker.
type Sketch struct {
	Display    *display.Display
	Foreground display.Color
	Background display.Color
	MarkerSize uint16

	// IdleTimeout enables probing an idle host when positive.
	IdleTimeout time.Duration

	lost    bool
	size    protocol.SizeInfo
	last    protocol.TouchInfo
	drawing bool
	strokes int
}

// NewSketch creates a Sketch and registers its callbacks.
func NewSketch(d *display.Display) *Sketch {
	s := &Sketch{
		Display:     d,
		Foreground:  display.ColorBlack,
		Background:  display.ColorWhite,
		MarkerSize:  6,
		IdleTimeout: DefaultIdleTimeout,
	}
	d.SetConnectCallback(s.connected)
	d.SetRedrawCallback(s.redraw)
	d.SetReorientationCallback(s.reoriented)
	d.SetTouchDownCallback(s.touchDown)
	d.SetTouchMoveCallback(s.touchMove)
	d.SetTouchUpCallback(s.touchUp)
	d.SetSwipeCallback(s.swipe)
	d.SetDisconnectCallback(func() {
		glog.Info("host disconnected")
		s.drawing = false
	})
	return s
}

// EnableLongTouch registers the marker callback with the configured
// long-touch timeout.
func (s *Sketch) EnableLongTouch() error {
	return s.Display.SetLongTouchDownCallback(s.longTouch, -1)
}

// Strokes returns the number of finished strokes since the last clear.
func (s *Sketch) Strokes() int {
	return s.strokes
}

// Lost indicates the host did not answer the last probe. It is cleared by
// the next connect or redraw.
func (s *Sketch) Lost() bool {
	return s.lost
}

// RequestHost asks the host for its canvas size. A host not answering
// within the connect timeout is marked lost and ErrConnectTimeout is
// returned.
func (s *Sketch) RequestHost(ctx context.Context) error {
	size, err := s.Display.RequestMaxCanvasSize(ctx)
	if err != nil {
		if errors.Is(err, display.ErrConnectTimeout) {
			if !s.lost {
				glog.Warningf("host lost: %v", err)
			}
			s.lost = true
		}
		return err
	}
	s.lost = false
	s.size.MaxWidth, s.size.MaxHeight = size.MaxWidth, size.MaxHeight
	glog.V(2).Infof("host canvas max %dx%d", size.MaxWidth, size.MaxHeight)
	return nil
}

// AddToLoop registers the sketch with the loop.
func (s *Sketch) AddToLoop(l *framework.Loop) {
	l.AddTask(framework.TaskFunc(s.checkConnection))
}

func (s *Sketch) connected(size protocol.SizeInfo) {
	glog.Infof("host connected %dx%d (max %dx%d)", size.Width, size.Height, size.MaxWidth, size.MaxHeight)
	s.size, s.lost = size, false
}

func (s *Sketch) reoriented(size protocol.SizeInfo) {
	s.size = size
	s.redraw(size)
}

func (s *Sketch) redraw(size protocol.SizeInfo) {
	if size.Width != 0 {
		s.size = size
	}
	s.strokes = 0
	s.drawing, s.lost = false, false
	s.check(s.Display.ClearDisplay(s.Background))
	s.check(s.Display.DrawText(2, 2, Title, 11, s.Foreground, s.Background))
}

func (s *Sketch) touchDown(pos protocol.TouchInfo) {
	s.last, s.drawing = pos, true
	s.check(s.Display.DrawPixel(pos.X, pos.Y, s.Foreground))
}

func (s *Sketch) touchMove(pos protocol.TouchInfo) {
	if !s.drawing {
		return
	}
	s.check(s.Display.DrawLine(s.last.X, s.last.Y, pos.X, pos.Y, s.Foreground))
	s.last = pos
}

func (s *Sketch) touchUp(pos protocol.TouchInfo) {
	if s.drawing {
		s.touchMove(pos)
		s.strokes++
	}
	s.drawing = false
}

func (s *Sketch) swipe(swipe protocol.SwipeInfo) {
	glog.V(2).Infof("swipe dx=%d dy=%d, clear", swipe.DeltaX, swipe.DeltaY)
	s.redraw(s.size)
}

func (s *Sketch) longTouch(pos protocol.TouchInfo) {
	s.drawing = false
	half := s.MarkerSize / 2
	x1, y1 := sub(pos.X, half), sub(pos.Y, half)
	s.check(s.Display.FillRect(x1, y1, pos.X+half, pos.Y+half, display.ColorRed))
}

// checkConnection probes a connected host once it has been idle for
// IdleTimeout. The answer counts as an event so the next probe waits for
// another idle period.
func (s *Sketch) checkConnection(iter framework.Iteration) error {
	if s.IdleTimeout <= 0 || s.lost || !s.Display.Dispatcher.IsConnected() {
		return nil
	}
	if !s.Display.IsConnectionTimedOut(s.IdleTimeout) {
		return nil
	}
	if err := s.RequestHost(iter.Context()); err != nil && !errors.Is(err, display.ErrConnectTimeout) {
		return err
	}
	return nil
}

func (s *Sketch) check(err error) {
	if err != nil {
		glog.V(2).Infof("sketch: %v", err)
	}
}

func sub(v, d uint16) uint16 {
	if v < d {
		return 0
	}
	return v - d
}
