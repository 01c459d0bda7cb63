package display

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bluedisplay.go/pkg/dispatch"
	"github.com/robotalks/bluedisplay.go/pkg/protocol"
	"github.com/robotalks/bluedisplay.go/pkg/transport"
)

// Display sends commands to the host and dispatches its events.
// Except Wakeup and Wake, methods must be called from the application
// context.
type Display struct {
	Backend    transport.Backend
	Dispatcher *dispatch.Dispatcher

	conf    Config
	created time.Time
	wakeCh  chan struct{}

	sizeSeq  uint64
	lastSize protocol.SizeInfo
}

// New creates a Display over a backend.
func New(backend transport.Backend, conf *Config) *Display {
	if conf == nil {
		conf = NewConfig()
	}
	d := &Display{
		Backend:    backend,
		Dispatcher: dispatch.New(),
		conf:       *conf,
		created:    time.Now(),
		wakeCh:     make(chan struct{}, 1),
	}
	d.Dispatcher.SwipeThreshold = conf.SwipeThreshold
	d.Dispatcher.Wake = d.Wake
	return d
}

// Config returns the config in use.
func (d *Display) Config() Config {
	return d.conf
}

// Wake signals pending work for CheckAndHandleEvents. It is safe to call
// from the notification context.
func (d *Display) Wake() {
	select {
	case d.wakeCh <- struct{}{}:
	default:
	}
}

// Wakeup is signaled by Wake.
func (d *Display) Wakeup() <-chan struct{} {
	return d.wakeCh
}

// SendCommand sends a command without payload.
func (d *Display) SendCommand(fn protocol.FunctionID, args ...uint16) error {
	frame, err := protocol.EncodeFrame(fn, args...)
	if err != nil {
		return err
	}
	return d.send(fn, frame)
}

// SendCommandWithPayload sends a command with a data field.
func (d *Display) SendCommandWithPayload(fn protocol.FunctionID, args []uint16, payload []byte) error {
	frame, err := protocol.EncodeFrameWithPayload(fn, args, payload)
	if err != nil {
		return err
	}
	return d.send(fn, frame)
}

func (d *Display) send(fn protocol.FunctionID, frame []byte) error {
	if err := d.Backend.Send(frame); err != nil {
		if errors.Is(err, transport.ErrNotReady) {
			glog.V(2).Infof("send 0x%02x dropped: %v", byte(fn), err)
		} else {
			glog.Warningf("send 0x%02x dropped: %v", byte(fn), err)
		}
		return err
	}
	glog.V(4).Infof("sent 0x%02x %d bytes", byte(fn), len(frame))
	return nil
}

// CheckAndHandleEvents fires expired timers and dispatches all pending
// events. It never blocks and returns the number of dispatched events.
func (d *Display) CheckAndHandleEvents() int {
	d.Dispatcher.CheckTimers()
	return d.Backend.Poll(d.handle)
}

func (d *Display) handle(ev *protocol.Event) {
	switch ev.Kind {
	case protocol.EventRequestedCanvasSize, protocol.EventConnectionBuildUp:
		d.sizeSeq++
		d.lastSize = ev.Size
	}
	d.Dispatcher.Dispatch(ev)
}

// SetTouchDownCallback sets the touch-down callback.
func (d *Display) SetTouchDownCallback(fn dispatch.TouchFunc) {
	d.Dispatcher.SetTouchDownCallback(fn)
}

// SetTouchMoveCallback sets the touch-move callback.
func (d *Display) SetTouchMoveCallback(fn dispatch.TouchFunc) {
	d.Dispatcher.SetTouchMoveCallback(fn)
}

// SetTouchUpCallback sets the touch-up callback.
func (d *Display) SetTouchUpCallback(fn dispatch.TouchFunc) {
	d.Dispatcher.SetTouchUpCallback(fn)
}

// SetSwipeCallback sets the swipe-end callback.
func (d *Display) SetSwipeCallback(fn dispatch.SwipeFunc) {
	d.Dispatcher.SetSwipeCallback(fn)
}

// SetConnectCallback sets the connect callback.
func (d *Display) SetConnectCallback(fn dispatch.SizeFunc) {
	d.Dispatcher.SetConnectCallback(fn)
}

// SetRedrawCallback sets the redraw callback.
func (d *Display) SetRedrawCallback(fn dispatch.SizeFunc) {
	d.Dispatcher.SetRedrawCallback(fn)
}

// SetReorientationCallback sets the reorientation callback.
func (d *Display) SetReorientationCallback(fn dispatch.SizeFunc) {
	d.Dispatcher.SetReorientationCallback(fn)
}

// SetDisconnectCallback sets the disconnect callback.
func (d *Display) SetDisconnectCallback(fn func()) {
	d.Dispatcher.SetDisconnectCallback(fn)
}

// SetLongTouchDownCallback sets the long-touch callback and configures the
// host timeout. A nil fn or zero timeout disables long touch detection.
// A negative timeout uses the configured one.
func (d *Display) SetLongTouchDownCallback(fn dispatch.TouchFunc, timeout time.Duration) error {
	if timeout < 0 {
		timeout = d.conf.LongTouchTimeout
	}
	if fn == nil {
		timeout = 0
	}
	if timeout == 0 {
		fn = nil
	}
	d.Dispatcher.SetLongTouchDownCallback(fn, timeout, d.conf.LocalLongTouch)
	hostTimeout := timeout
	if d.conf.LocalLongTouch {
		hostTimeout = 0
	}
	return d.SendCommand(protocol.FunctionGlobalSettings,
		protocol.SubSetLongTouchDownTimeout, uint16(hostTimeout/time.Millisecond))
}

// SetSensor enables a host sensor with fn receiving the samples.
// A nil fn disables the sensor at the host.
func (d *Display) SetSensor(t protocol.SensorType, rate protocol.SensorRate, filter protocol.SensorFilter, fn dispatch.SensorFunc) error {
	var activate uint16
	if fn != nil {
		activate = 1
	}
	if err := d.SendCommand(protocol.FunctionSensorSettings,
		uint16(t), activate, uint16(rate), uint16(filter)); err != nil {
		return err
	}
	d.Dispatcher.SetSensorCallback(fn)
	return nil
}

// SetFlagsAndSize sets the display flags and requested canvas size.
func (d *Display) SetFlagsAndSize(flags uint16, width, height uint16) error {
	return d.SendCommand(protocol.FunctionGlobalSettings,
		protocol.SubSetFlagsAndSize, flags, width, height)
}

// SetScreenOrientationLock locks the host screen orientation.
func (d *Display) SetScreenOrientationLock(lock uint16) error {
	return d.SendCommand(protocol.FunctionGlobalSettings,
		protocol.SubSetScreenOrientationLock, lock)
}

// RequestMaxCanvasSize asks the host for its maximum canvas size and waits
// for the answer, dispatching events meanwhile. It fails with
// ErrConnectTimeout after the configured connect timeout.
func (d *Display) RequestMaxCanvasSize(ctx context.Context) (protocol.SizeInfo, error) {
	seq := d.sizeSeq
	if err := d.SendCommand(protocol.FunctionRequestMaxCanvasSize); err != nil {
		return protocol.SizeInfo{}, err
	}
	if d.conf.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.conf.ConnectTimeout)
		defer cancel()
	}
	interval := d.conf.PollInterval
	if interval <= 0 {
		interval = defaultConfig.PollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		d.CheckAndHandleEvents()
		if d.sizeSeq != seq {
			return d.lastSize, nil
		}
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return protocol.SizeInfo{}, fmt.Errorf("request max canvas size: %w", ErrConnectTimeout)
			}
			return protocol.SizeInfo{}, ctx.Err()
		case <-ticker.C:
		case <-d.wakeCh:
		}
	}
}

// IsConnectionTimedOut indicates no event was received within limit.
// Before the first event the time since New counts.
func (d *Display) IsConnectionTimedOut(limit time.Duration) bool {
	last := d.Dispatcher.LastEventTime()
	if last.IsZero() {
		last = d.created
	}
	return time.Since(last) > limit
}
