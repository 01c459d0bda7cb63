package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bluedisplay.go/pkg/protocol"
	"github.com/robotalks/bluedisplay.go/pkg/transport"
)

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped int
}

func (t *fakeTimer) AfterFunc(d time.Duration, fn func()) transport.Stopper {
	t.d, t.fn = d, fn
	return t
}

func (t *fakeTimer) Stop() bool {
	t.stopped++
	t.fn = nil
	return true
}

func (t *fakeTimer) expire() {
	if fn := t.fn; fn != nil {
		t.fn = nil
		fn()
	}
}

type recorder struct {
	calls []string
	touch []protocol.TouchInfo
	swipe []protocol.SwipeInfo
	sizes []protocol.SizeInfo
}

func (r *recorder) touchFunc(name string) TouchFunc {
	return func(pos protocol.TouchInfo) {
		r.calls = append(r.calls, name)
		r.touch = append(r.touch, pos)
	}
}

func (r *recorder) sizeFunc(name string) SizeFunc {
	return func(size protocol.SizeInfo) {
		r.calls = append(r.calls, name)
		r.sizes = append(r.sizes, size)
	}
}

func (r *recorder) install(d *Dispatcher) {
	d.SetTouchDownCallback(r.touchFunc("down"))
	d.SetTouchMoveCallback(r.touchFunc("move"))
	d.SetTouchUpCallback(r.touchFunc("up"))
	d.SetTouchErrorCallback(r.touchFunc("error"))
	d.SetSwipeCallback(func(swipe protocol.SwipeInfo) {
		r.calls = append(r.calls, "swipe")
		r.swipe = append(r.swipe, swipe)
	})
	d.SetConnectCallback(r.sizeFunc("connect"))
	d.SetRedrawCallback(r.sizeFunc("redraw"))
	d.SetReorientationCallback(r.sizeFunc("reorientation"))
	d.SetDisconnectCallback(func() { r.calls = append(r.calls, "disconnect") })
}

func touchEvent(kind protocol.EventKind, x, y uint16) *protocol.Event {
	ev := protocol.NewEvent()
	ev.Kind = kind
	ev.Touch = protocol.TouchInfo{X: x, Y: y}
	return &ev
}

func sizeEvent(kind protocol.EventKind, w, h uint16) *protocol.Event {
	ev := protocol.NewEvent()
	ev.Kind = kind
	ev.Size = protocol.SizeInfo{Width: w, Height: h, MaxWidth: w * 2, MaxHeight: h * 2}
	return &ev
}

func newTestDispatcher() (*Dispatcher, *recorder, *fakeTimer) {
	d := New()
	timer := &fakeTimer{}
	d.Timer = timer
	r := &recorder{}
	r.install(d)
	return d, r, timer
}

func TestTouchDownUpWithoutMovement(t *testing.T) {
	d, r, _ := newTestDispatcher()
	d.Dispatch(touchEvent(protocol.EventTouchDown, 100, 200))
	d.Dispatch(touchEvent(protocol.EventTouchUp, 100, 200))
	require.Equal(t, []string{"down", "up"}, r.calls)
	require.Equal(t, protocol.TouchInfo{X: 100, Y: 200}, r.touch[0])
	require.Equal(t, protocol.TouchInfo{X: 100, Y: 200}, r.touch[1])
	require.Empty(t, r.swipe)
}

func TestSwipe(t *testing.T) {
	d, r, _ := newTestDispatcher()
	d.Dispatch(touchEvent(protocol.EventTouchDown, 0, 0))
	d.Dispatch(touchEvent(protocol.EventTouchMove, 25, 2))
	d.Dispatch(touchEvent(protocol.EventTouchUp, 50, 0))
	require.Equal(t, []string{"down", "move", "swipe"}, r.calls)
	require.Len(t, r.swipe, 1)
	require.Equal(t, protocol.SwipeInfo{
		MainDirectionIsX: true,
		DeltaX:           50,
		DeltaAbsMax:      50,
	}, r.swipe[0])
}

func TestSwipeDirection(t *testing.T) {
	tests := []struct {
		name   string
		from   [2]uint16
		to     [2]uint16
		swipe  bool
		mainX  bool
		absMax uint16
	}{
		{"at threshold", [2]uint16{10, 10}, [2]uint16{20, 20}, false, false, 0},
		{"x positive", [2]uint16{10, 10}, [2]uint16{30, 15}, true, true, 20},
		{"x negative", [2]uint16{50, 10}, [2]uint16{10, 20}, true, true, 40},
		{"y", [2]uint16{10, 10}, [2]uint16{15, 60}, true, false, 50},
		{"y negative", [2]uint16{10, 60}, [2]uint16{5, 0}, true, false, 60},
		{"diagonal", [2]uint16{0, 0}, [2]uint16{30, 30}, true, true, 30},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d, r, _ := newTestDispatcher()
			d.Dispatch(touchEvent(protocol.EventTouchDown, test.from[0], test.from[1]))
			d.Dispatch(touchEvent(protocol.EventTouchUp, test.to[0], test.to[1]))
			if !test.swipe {
				require.Equal(t, []string{"down", "up"}, r.calls)
				return
			}
			require.Equal(t, []string{"down", "swipe"}, r.calls)
			s := r.swipe[0]
			require.Equal(t, test.mainX, s.MainDirectionIsX)
			require.Equal(t, test.absMax, s.DeltaAbsMax)
			require.Equal(t, test.from[0], s.StartX)
			require.Equal(t, test.from[1], s.StartY)
			require.Equal(t, int16(int(test.to[0])-int(test.from[0])), s.DeltaX)
			require.Equal(t, int16(int(test.to[1])-int(test.from[1])), s.DeltaY)
		})
	}
}

func TestSwipeWithoutCallbackDeliversTouchUp(t *testing.T) {
	d, r, _ := newTestDispatcher()
	d.SetSwipeCallback(nil)
	d.Dispatch(touchEvent(protocol.EventTouchDown, 0, 0))
	d.Dispatch(touchEvent(protocol.EventTouchUp, 50, 0))
	require.Equal(t, []string{"down", "up"}, r.calls)
}

func TestHostSwipeSuppressesTouchUp(t *testing.T) {
	d, r, _ := newTestDispatcher()
	d.Dispatch(touchEvent(protocol.EventTouchDown, 0, 0))
	ev := protocol.NewEvent()
	ev.Kind = protocol.EventSwipeCallback
	ev.Swipe = protocol.SwipeInfo{DeltaY: 40, DeltaAbsMax: 40}
	d.Dispatch(&ev)
	d.Dispatch(touchEvent(protocol.EventTouchUp, 0, 40))
	require.Equal(t, []string{"down", "swipe"}, r.calls)

	d.Dispatch(touchEvent(protocol.EventTouchDown, 1, 1))
	d.Dispatch(touchEvent(protocol.EventTouchUp, 1, 1))
	require.Equal(t, []string{"down", "swipe", "down", "up"}, r.calls)
}

func TestIdempotentSlotClearing(t *testing.T) {
	kinds := []protocol.EventKind{
		protocol.EventTouchDown,
		protocol.EventTouchUp,
		protocol.EventTouchMove,
		protocol.EventTouchError,
		protocol.EventConnectionBuildUp,
		protocol.EventRedraw,
		protocol.EventReorientation,
		protocol.EventDisconnect,
		protocol.EventButtonCallback,
		protocol.EventSliderCallback,
		protocol.EventSwipeCallback,
		protocol.EventLongTouchDownCallback,
		protocol.EventNumberCallback,
		protocol.EventInfoCallback,
		protocol.EventRequestedCanvasSize,
		protocol.EventFirstSensor,
		protocol.EventLastSensor,
		protocol.EventKind(0x55),
	}
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			d, _, _ := newTestDispatcher()
			ev := protocol.NewEvent()
			ev.Kind = kind
			d.Dispatch(&ev)
			require.True(t, ev.IsNone())
			require.EqualValues(t, 1, d.Dispatched())
		})
	}
}

func TestNoneIsIgnored(t *testing.T) {
	d, r, _ := newTestDispatcher()
	ev := protocol.NewEvent()
	d.Dispatch(&ev)
	require.Empty(t, r.calls)
	require.Zero(t, d.Dispatched())
	require.True(t, d.LastEventTime().IsZero())
	require.Zero(t, d.SinceLastEvent())
}

func TestLastEventTime(t *testing.T) {
	d, _, _ := newTestDispatcher()
	now := time.Unix(1000, 0)
	d.Now = func() time.Time { return now }
	d.Dispatch(touchEvent(protocol.EventTouchMove, 1, 1))
	require.True(t, d.LastEventTime().Equal(now))
	now = now.Add(3 * time.Second)
	require.Equal(t, 3*time.Second, d.SinceLastEvent())
}

func TestLocalLongTouch(t *testing.T) {
	d, r, timer := newTestDispatcher()
	woken := 0
	d.Wake = func() { woken++ }
	d.SetLongTouchDownCallback(r.touchFunc("long"), 800*time.Millisecond, true)

	d.Dispatch(touchEvent(protocol.EventTouchDown, 10, 20))
	require.Equal(t, 800*time.Millisecond, timer.d)
	d.CheckTimers()
	require.Equal(t, []string{"down"}, r.calls)

	timer.expire()
	require.Equal(t, 1, woken)
	require.Equal(t, []string{"down"}, r.calls)
	d.CheckTimers()
	require.Equal(t, []string{"down", "long"}, r.calls)
	require.Equal(t, protocol.TouchInfo{X: 10, Y: 20}, r.touch[1])
	d.CheckTimers()
	require.Len(t, r.calls, 2)

	d.Dispatch(touchEvent(protocol.EventTouchUp, 10, 20))
	require.Equal(t, []string{"down", "long"}, r.calls)
}

func TestLocalLongTouchCancelled(t *testing.T) {
	t.Run("touch up", func(t *testing.T) {
		d, r, timer := newTestDispatcher()
		d.SetLongTouchDownCallback(r.touchFunc("long"), time.Second, true)
		d.Dispatch(touchEvent(protocol.EventTouchDown, 10, 20))
		fn := timer.fn
		d.Dispatch(touchEvent(protocol.EventTouchUp, 10, 20))
		require.Equal(t, 1, timer.stopped)
		// the timer fires anyway after being stopped
		fn()
		d.CheckTimers()
		require.Equal(t, []string{"down", "up"}, r.calls)
	})
	t.Run("move", func(t *testing.T) {
		d, r, timer := newTestDispatcher()
		d.SetLongTouchDownCallback(r.touchFunc("long"), time.Second, true)
		d.Dispatch(touchEvent(protocol.EventTouchDown, 10, 20))
		d.Dispatch(touchEvent(protocol.EventTouchMove, 12, 22))
		require.Zero(t, timer.stopped)
		d.Dispatch(touchEvent(protocol.EventTouchMove, 40, 22))
		require.Equal(t, 1, timer.stopped)
		d.CheckTimers()
		require.Equal(t, []string{"down", "move", "move"}, r.calls)
	})
	t.Run("stale expiry", func(t *testing.T) {
		d, r, timer := newTestDispatcher()
		d.SetLongTouchDownCallback(r.touchFunc("long"), time.Second, true)
		d.Dispatch(touchEvent(protocol.EventTouchDown, 10, 20))
		stale := timer.fn
		d.Dispatch(touchEvent(protocol.EventTouchUp, 10, 20))
		d.Dispatch(touchEvent(protocol.EventTouchDown, 30, 40))
		stale()
		d.CheckTimers()
		require.Equal(t, []string{"down", "up", "down"}, r.calls)
		timer.expire()
		d.CheckTimers()
		require.Equal(t, []string{"down", "up", "down", "long"}, r.calls)
		require.Equal(t, protocol.TouchInfo{X: 30, Y: 40}, r.touch[3])
	})
}

func TestHostLongTouch(t *testing.T) {
	d, r, timer := newTestDispatcher()
	d.SetLongTouchDownCallback(r.touchFunc("long"), time.Second, false)
	d.Dispatch(touchEvent(protocol.EventTouchDown, 10, 20))
	require.Nil(t, timer.fn)
	d.Dispatch(touchEvent(protocol.EventLongTouchDownCallback, 10, 20))
	d.Dispatch(touchEvent(protocol.EventTouchUp, 10, 20))
	require.Equal(t, []string{"down", "long"}, r.calls)
}

func TestLongTouchWithoutCallback(t *testing.T) {
	d, r, timer := newTestDispatcher()
	d.Dispatch(touchEvent(protocol.EventTouchDown, 10, 20))
	require.Nil(t, timer.fn)
	d.Dispatch(touchEvent(protocol.EventLongTouchDownCallback, 10, 20))
	d.Dispatch(touchEvent(protocol.EventTouchUp, 10, 20))
	require.Equal(t, []string{"down", "up"}, r.calls)
}

func TestFirstContactRedraw(t *testing.T) {
	d, r, _ := newTestDispatcher()
	require.False(t, d.IsConnected())
	d.Dispatch(sizeEvent(protocol.EventConnectionBuildUp, 320, 240))
	require.Equal(t, []string{"connect", "redraw"}, r.calls)
	require.True(t, d.IsConnected())
	s := d.Session()
	require.True(t, s.IsLandscape())
	require.EqualValues(t, 320, s.Width)
	require.EqualValues(t, 480, s.MaxHeight)

	d.Dispatch(sizeEvent(protocol.EventConnectionBuildUp, 320, 240))
	require.Equal(t, []string{"connect", "redraw", "connect"}, r.calls)

	d.Dispatch(sizeEvent(protocol.EventReorientation, 240, 320))
	require.Equal(t, []string{"connect", "redraw", "connect", "reorientation"}, r.calls)
	s = d.Session()
	require.False(t, s.IsLandscape())

	d.Dispatch(sizeEvent(protocol.EventRedraw, 240, 320))
	require.Equal(t, "redraw", r.calls[len(r.calls)-1])
}

func TestFirstContactByReorientation(t *testing.T) {
	d, r, _ := newTestDispatcher()
	d.Dispatch(sizeEvent(protocol.EventReorientation, 240, 320))
	require.Equal(t, []string{"reorientation", "redraw"}, r.calls)
	require.False(t, d.IsConnected())
}

func TestDisconnect(t *testing.T) {
	d, r, _ := newTestDispatcher()
	d.Dispatch(sizeEvent(protocol.EventConnectionBuildUp, 320, 240))
	ev := protocol.NewEvent()
	ev.Kind = protocol.EventDisconnect
	d.Dispatch(&ev)
	require.False(t, d.IsConnected())
	require.Equal(t, "disconnect", r.calls[len(r.calls)-1])
}

func TestRequestedCanvasSize(t *testing.T) {
	d, r, _ := newTestDispatcher()
	ev := sizeEvent(protocol.EventRequestedCanvasSize, 1920, 1080)
	ev.Size.Timestamp = 5000
	d.Now = func() time.Time { return time.Unix(4000, 0) }
	d.Dispatch(ev)
	require.Empty(t, r.calls)
	s := d.Session()
	require.True(t, s.CanvasSizeReceived)
	require.True(t, s.Connected)
	require.EqualValues(t, 3840, s.MaxWidth)
	require.Equal(t, 1000*time.Second, s.HostClockOffset)
	require.True(t, s.HostTime(time.Unix(4010, 0)).Equal(time.Unix(5010, 0)))
}

func TestSensor(t *testing.T) {
	d, _, _ := newTestDispatcher()
	ev := protocol.NewEvent()
	ev.Kind = protocol.SensorEventKind(protocol.SensorType(1))
	ev.Sensor = protocol.SensorInfo{Type: 1, Values: [3]float32{1, 2, 3}}
	// no callback registered
	d.Dispatch(&ev)
	require.True(t, ev.IsNone())

	var samples []protocol.SensorInfo
	d.SetSensorCallback(func(s protocol.SensorInfo) { samples = append(samples, s) })
	ev.Kind = protocol.SensorEventKind(protocol.SensorType(1))
	ev.Sensor = protocol.SensorInfo{Type: 1, Values: [3]float32{1, 2, 3}}
	d.Dispatch(&ev)
	require.Len(t, samples, 1)
	require.Equal(t, [3]float32{1, 2, 3}, samples[0].Values)
}

func TestObserver(t *testing.T) {
	d, _, _ := newTestDispatcher()
	var kinds []protocol.EventKind
	d.Observer = ObserveEventFunc(func(ev *protocol.Event) { kinds = append(kinds, ev.Kind) })
	d.Dispatch(touchEvent(protocol.EventTouchDown, 1, 1))
	d.Dispatch(sizeEvent(protocol.EventRedraw, 1, 1))
	require.Equal(t, []protocol.EventKind{protocol.EventTouchDown, protocol.EventRedraw}, kinds)
}

func TestTouchError(t *testing.T) {
	d, r, timer := newTestDispatcher()
	d.SetLongTouchDownCallback(r.touchFunc("long"), time.Second, true)
	d.Dispatch(touchEvent(protocol.EventTouchDown, 1, 1))
	d.Dispatch(touchEvent(protocol.EventTouchError, 0, 0))
	require.Equal(t, 1, timer.stopped)
	require.Equal(t, []string{"down", "error"}, r.calls)
}

func TestObservers(t *testing.T) {
	d, _, _ := newTestDispatcher()
	var order []string
	d.Observer = Observers{
		ObserveEventFunc(func(*protocol.Event) { order = append(order, "a") }),
		ObserveEventFunc(func(*protocol.Event) { order = append(order, "b") }),
	}
	d.Dispatch(touchEvent(protocol.EventTouchMove, 1, 1))
	require.Equal(t, []string{"a", "b"}, order)
}
