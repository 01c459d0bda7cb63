package dispatch

import (
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bluedisplay.go/pkg/protocol"
	"github.com/robotalks/bluedisplay.go/pkg/transport"
)

// Observer is notified of every dispatched event before the slot is
// cleared.
type Observer interface {
	ObserveEvent(ev *protocol.Event)
}

// ObserveEventFunc is the func form of Observer.
type ObserveEventFunc func(ev *protocol.Event)

// ObserveEvent implements Observer.
func (f ObserveEventFunc) ObserveEvent(ev *protocol.Event) {
	f(ev)
}

// Observers notifies a list of observers in order.
type Observers []Observer

// ObserveEvent implements Observer.
func (o Observers) ObserveEvent(ev *protocol.Event) {
	for _, observer := range o {
		observer.ObserveEvent(ev)
	}
}

// Dispatcher takes the action associated with each event.
type Dispatcher struct {
	Handlers *Handlers
	Timer    transport.Timer
	Observer Observer
	// Wake is called from the notification context when a timer expires
	// and CheckTimers should run.
	Wake func()
	// Now is the clock, time.Now if nil.
	Now func() time.Time

	SwipeThreshold int

	callbacks        Callbacks
	longTouchTimeout time.Duration
	localLongTouch   bool
	longTouchTimer   transport.Stopper
	longTouchExpired atomic.Uint64

	session   Session
	gesture   gesture
	lastEvent atomic.Int64
	events    atomic.Uint64
}

// New creates a Dispatcher.
func New() *Dispatcher {
	return &Dispatcher{
		Handlers:       NewHandlers(),
		Timer:          transport.SystemTimer{},
		SwipeThreshold: DefaultSwipeThreshold,
	}
}

// SetTouchDownCallback sets the touch-down callback.
func (d *Dispatcher) SetTouchDownCallback(fn TouchFunc) { d.callbacks.TouchDown = fn }

// SetTouchMoveCallback sets the touch-move callback.
func (d *Dispatcher) SetTouchMoveCallback(fn TouchFunc) { d.callbacks.TouchMove = fn }

// SetTouchUpCallback sets the touch-up callback.
func (d *Dispatcher) SetTouchUpCallback(fn TouchFunc) { d.callbacks.TouchUp = fn }

// SetTouchErrorCallback sets the touch-error callback.
func (d *Dispatcher) SetTouchErrorCallback(fn TouchFunc) { d.callbacks.TouchError = fn }

// SetSwipeCallback sets the swipe-end callback.
func (d *Dispatcher) SetSwipeCallback(fn SwipeFunc) { d.callbacks.Swipe = fn }

// SetConnectCallback sets the connect callback.
func (d *Dispatcher) SetConnectCallback(fn SizeFunc) { d.callbacks.Connect = fn }

// SetRedrawCallback sets the redraw callback.
func (d *Dispatcher) SetRedrawCallback(fn SizeFunc) { d.callbacks.Redraw = fn }

// SetReorientationCallback sets the reorientation callback.
func (d *Dispatcher) SetReorientationCallback(fn SizeFunc) { d.callbacks.Reorientation = fn }

// SetDisconnectCallback sets the disconnect callback.
func (d *Dispatcher) SetDisconnectCallback(fn func()) { d.callbacks.Disconnect = fn }

// SetSensorCallback sets the sensor callback.
func (d *Dispatcher) SetSensorCallback(fn SensorFunc) { d.callbacks.Sensor = fn }

// SetLongTouchDownCallback sets the long-touch callback. With local set,
// long touches are detected on the device using the transport timer,
// otherwise the host reports them.
func (d *Dispatcher) SetLongTouchDownCallback(fn TouchFunc, timeout time.Duration, local bool) {
	d.callbacks.LongTouchDown = fn
	d.longTouchTimeout, d.localLongTouch = timeout, local
	if fn == nil {
		d.cancelLongTouch()
	}
}

// Callbacks returns a copy of the callback table.
func (d *Dispatcher) Callbacks() Callbacks {
	return d.callbacks
}

// Session returns a copy of the session state.
func (d *Dispatcher) Session() Session {
	return d.session
}

// IsConnected indicates a session is established.
func (d *Dispatcher) IsConnected() bool {
	return d.session.Connected
}

// LastEventTime returns the time the last event was dispatched.
// It is zero if no event has been dispatched.
func (d *Dispatcher) LastEventTime() time.Time {
	if ns := d.lastEvent.Load(); ns != 0 {
		return time.Unix(0, ns)
	}
	return time.Time{}
}

// SinceLastEvent returns the duration since the last event.
func (d *Dispatcher) SinceLastEvent() time.Duration {
	last := d.LastEventTime()
	if last.IsZero() {
		return 0
	}
	return d.now().Sub(last)
}

// Dispatched returns the number of dispatched events.
func (d *Dispatcher) Dispatched() uint64 {
	return d.events.Load()
}

// Dispatch takes the action for ev and clears it.
func (d *Dispatcher) Dispatch(ev *protocol.Event) {
	if ev.IsNone() {
		return
	}
	now := d.now()
	d.lastEvent.Store(now.UnixNano())
	d.events.Add(1)

	switch kind := ev.Kind; {
	case kind == protocol.EventTouchDown:
		d.touchDown(ev.Touch)
	case kind == protocol.EventTouchMove:
		d.gesture.touchMove(ev.Touch, d.SwipeThreshold)
		if d.gesture.moved {
			d.cancelLongTouch()
		}
		callTouch(d.callbacks.TouchMove, ev.Touch)
	case kind == protocol.EventTouchUp:
		d.touchUp(ev.Touch)
	case kind == protocol.EventTouchError:
		d.cancelLongTouch()
		d.gesture.end()
		callTouch(d.callbacks.TouchError, ev.Touch)
	case kind == protocol.EventLongTouchDownCallback:
		d.fireLongTouch(ev.Touch)
	case kind == protocol.EventSwipeCallback:
		if d.gesture.down {
			d.gesture.skipUp = true
		}
		d.cancelLongTouch()
		if fn := d.callbacks.Swipe; fn != nil {
			fn(ev.Swipe)
		}
	case kind.IsCallback():
		if !d.Handlers.call(ev) {
			glog.V(2).Infof("no handler %d for %s", ev.Callback.Handler, ev)
		}
	case kind == protocol.EventConnectionBuildUp:
		d.session.Connected = true
		d.session.update(ev.Size, now)
		first := d.firstContact()
		callSize(d.callbacks.Connect, ev.Size)
		if first {
			callSize(d.callbacks.Redraw, ev.Size)
		}
	case kind == protocol.EventReorientation:
		d.session.update(ev.Size, now)
		first := d.firstContact()
		callSize(d.callbacks.Reorientation, ev.Size)
		if first {
			callSize(d.callbacks.Redraw, ev.Size)
		}
	case kind == protocol.EventRedraw:
		d.session.update(ev.Size, now)
		callSize(d.callbacks.Redraw, ev.Size)
	case kind == protocol.EventRequestedCanvasSize:
		d.session.Connected = true
		d.session.CanvasSizeReceived = true
		d.session.update(ev.Size, now)
	case kind == protocol.EventDisconnect:
		d.session.Connected = false
		d.cancelLongTouch()
		d.gesture.end()
		if fn := d.callbacks.Disconnect; fn != nil {
			fn()
		}
	case kind.IsSensor():
		// samples may still arrive shortly after the sensor is disabled.
		if fn := d.callbacks.Sensor; fn != nil {
			fn(ev.Sensor)
		}
	default:
		glog.V(2).Infof("unhandled event %s", ev.Kind)
	}

	if o := d.Observer; o != nil {
		o.ObserveEvent(ev)
	}
	ev.Reset()
}

// CheckTimers fires an expired local long touch. It runs in the
// application context.
func (d *Dispatcher) CheckTimers() {
	gen := d.longTouchExpired.Swap(0)
	if gen == 0 || gen != d.gesture.longGen || d.longTouchTimer == nil {
		return
	}
	d.longTouchTimer = nil
	if !d.gesture.down || d.gesture.moved {
		return
	}
	d.fireLongTouch(d.gesture.start)
}

func (d *Dispatcher) touchDown(pos protocol.TouchInfo) {
	d.cancelLongTouch()
	d.gesture.touchDown(pos)
	if d.callbacks.LongTouchDown != nil && d.localLongTouch && d.longTouchTimeout > 0 {
		d.gesture.longGen++
		gen := d.gesture.longGen
		d.longTouchTimer = d.Timer.AfterFunc(d.longTouchTimeout, func() {
			d.longTouchExpired.Store(gen)
			if wake := d.Wake; wake != nil {
				wake()
			}
		})
	}
	callTouch(d.callbacks.TouchDown, pos)
}

func (d *Dispatcher) touchUp(pos protocol.TouchInfo) {
	d.cancelLongTouch()
	defer d.gesture.end()
	if d.gesture.skipUp {
		d.gesture.skipUp = false
		return
	}
	if fn := d.callbacks.Swipe; fn != nil {
		if swipe, ok := d.gesture.swipe(pos, d.SwipeThreshold); ok {
			fn(swipe)
			return
		}
	}
	callTouch(d.callbacks.TouchUp, pos)
}

func (d *Dispatcher) fireLongTouch(pos protocol.TouchInfo) {
	if d.gesture.moved {
		return
	}
	fn := d.callbacks.LongTouchDown
	if fn == nil {
		return
	}
	if d.gesture.down {
		d.gesture.skipUp = true
	}
	fn(pos)
}

func (d *Dispatcher) cancelLongTouch() {
	if t := d.longTouchTimer; t != nil {
		t.Stop()
		d.longTouchTimer = nil
	}
}

func (d *Dispatcher) firstContact() bool {
	if d.session.Contacted {
		return false
	}
	d.session.Contacted = true
	return true
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func callTouch(fn TouchFunc, pos protocol.TouchInfo) {
	if fn != nil {
		fn(pos)
	}
}

func callSize(fn SizeFunc, size protocol.SizeInfo) {
	if fn != nil {
		fn(size)
	}
}
