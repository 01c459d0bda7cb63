package sim

import (
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bluedisplay.go/pkg/protocol"
)

// CommandHandler observes commands received by the Host.
type CommandHandler interface {
	HandleCommand(*protocol.Command)
}

// HandleCommandFunc is the func form of CommandHandler.
type HandleCommandFunc func(*protocol.Command)

// HandleCommand implements CommandHandler.
func (f HandleCommandFunc) HandleCommand(cmd *protocol.Command) {
	f(cmd)
}

// Host simulates the remote renderer. It parses the command stream written
// by the device and writes event frames to Events.
type Host struct {
	Width     uint16
	Height    uint16
	MaxWidth  uint16
	MaxHeight uint16
	// Clock provides the host local time, time.Now if nil.
	Clock func() time.Time
	// Events receives encoded event frames for the device.
	Events io.Writer
	// Handler is called for every received command.
	Handler CommandHandler
	// Mute suppresses automatic answers.
	Mute bool

	lock             sync.Mutex
	parser           protocol.CommandParser
	commands         []*protocol.Command
	longTouchTimeout time.Duration
	flags            uint16
	sensors          map[protocol.SensorType]SensorSetting
}

// SensorSetting is the state of a sensor as configured by the device.
type SensorSetting struct {
	Active bool
	Rate   protocol.SensorRate
	Filter protocol.SensorFilter
}

// NewHost creates a Host with a display of width x height.
func NewHost(width, height uint16, events io.Writer) *Host {
	return &Host{
		Width:     width,
		Height:    height,
		MaxWidth:  width,
		MaxHeight: height,
		Events:    events,
		sensors:   make(map[protocol.SensorType]SensorSetting),
	}
}

// Write implements io.Writer, receiving bytes sent by the device.
func (h *Host) Write(p []byte) (int, error) {
	for _, b := range p {
		if cmd := h.parse(b); cmd != nil {
			h.handle(cmd)
		}
	}
	return len(p), nil
}

func (h *Host) parse(b byte) *protocol.Command {
	h.lock.Lock()
	defer h.lock.Unlock()
	cmd := h.parser.Parse(b)
	if cmd != nil {
		h.commands = append(h.commands, cmd)
		h.applyLocked(cmd)
	}
	return cmd
}

func (h *Host) applyLocked(cmd *protocol.Command) {
	switch cmd.Function {
	case protocol.FunctionGlobalSettings:
		if len(cmd.Args) == 0 {
			return
		}
		switch cmd.Args[0] {
		case protocol.SubSetFlagsAndSize:
			if len(cmd.Args) >= 4 {
				h.flags = cmd.Args[1]
				h.Width, h.Height = cmd.Args[2], cmd.Args[3]
			}
		case protocol.SubSetLongTouchDownTimeout:
			if len(cmd.Args) >= 2 {
				h.longTouchTimeout = time.Duration(cmd.Args[1]) * time.Millisecond
			}
		}
	case protocol.FunctionSensorSettings:
		if len(cmd.Args) >= 4 {
			h.sensors[protocol.SensorType(cmd.Args[0])] = SensorSetting{
				Active: cmd.Args[1] != 0,
				Rate:   protocol.SensorRate(cmd.Args[2]),
				Filter: protocol.SensorFilter(cmd.Args[3]),
			}
		}
	}
}

func (h *Host) handle(cmd *protocol.Command) {
	glog.V(4).Infof("host: command 0x%02x %v", byte(cmd.Function), cmd.Args)
	if h.Handler != nil {
		h.Handler.HandleCommand(cmd)
	}
	if !h.Mute && cmd.Function == protocol.FunctionRequestMaxCanvasSize {
		h.sendSize(protocol.EventRequestedCanvasSize)
	}
}

// Commands returns the commands received so far.
func (h *Host) Commands() []*protocol.Command {
	h.lock.Lock()
	defer h.lock.Unlock()
	return append([]*protocol.Command(nil), h.commands...)
}

// TakeCommands returns and clears the received commands.
func (h *Host) TakeCommands() []*protocol.Command {
	h.lock.Lock()
	defer h.lock.Unlock()
	cmds := h.commands
	h.commands = nil
	return cmds
}

// Skipped returns the number of bytes the command parser discarded.
func (h *Host) Skipped() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.parser.Skipped()
}

// LongTouchTimeout returns the long touch timeout set by the device.
func (h *Host) LongTouchTimeout() time.Duration {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.longTouchTimeout
}

// Flags returns the display flags set by the device.
func (h *Host) Flags() uint16 {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.flags
}

// Sensor returns the setting of a sensor.
func (h *Host) Sensor(t protocol.SensorType) SensorSetting {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.sensors[t]
}

// Send writes an event frame to the device.
func (h *Host) Send(ev protocol.Event) error {
	_, err := h.Events.Write(protocol.EncodeEvent(ev))
	return err
}

// Connect sends a connection build-up event.
func (h *Host) Connect() error {
	return h.sendSize(protocol.EventConnectionBuildUp)
}

// Redraw sends a redraw event.
func (h *Host) Redraw() error {
	return h.sendSize(protocol.EventRedraw)
}

// Reorient swaps width and height and sends a reorientation event.
func (h *Host) Reorient() error {
	h.lock.Lock()
	h.Width, h.Height = h.Height, h.Width
	h.MaxWidth, h.MaxHeight = h.MaxHeight, h.MaxWidth
	h.lock.Unlock()
	return h.sendSize(protocol.EventReorientation)
}

// Disconnect sends a disconnect event.
func (h *Host) Disconnect() error {
	ev := protocol.NewEvent()
	ev.Kind = protocol.EventDisconnect
	return h.Send(ev)
}

// Touch sends a basic touch event.
func (h *Host) Touch(kind protocol.EventKind, x, y uint16) error {
	ev := protocol.NewEvent()
	ev.Kind = kind
	ev.Touch = protocol.TouchInfo{X: x, Y: y}
	return h.Send(ev)
}

// Tap sends touch down and touch up at the same position.
func (h *Host) Tap(x, y uint16) error {
	if err := h.Touch(protocol.EventTouchDown, x, y); err != nil {
		return err
	}
	return h.Touch(protocol.EventTouchUp, x, y)
}

// Drag sends touch down at from, steps touch moves and touch up at to.
func (h *Host) Drag(fromX, fromY, toX, toY uint16, steps int) error {
	if err := h.Touch(protocol.EventTouchDown, fromX, fromY); err != nil {
		return err
	}
	for i := 1; i <= steps; i++ {
		x := int(fromX) + (int(toX)-int(fromX))*i/(steps+1)
		y := int(fromY) + (int(toY)-int(fromY))*i/(steps+1)
		if err := h.Touch(protocol.EventTouchMove, uint16(x), uint16(y)); err != nil {
			return err
		}
	}
	return h.Touch(protocol.EventTouchUp, toX, toY)
}

// Callback sends a widget callback event.
func (h *Host) Callback(kind protocol.EventKind, ref protocol.HandlerRef, index uint16, value uint32) error {
	ev := protocol.NewEvent()
	ev.Kind = kind
	ev.Callback = protocol.CallbackInfo{ObjectIndex: index, Handler: ref, Value: value}
	return h.Send(ev)
}

// SensorSample sends a sensor sample.
func (h *Host) SensorSample(t protocol.SensorType, values [3]float32) error {
	ev := protocol.NewEvent()
	ev.Kind = protocol.SensorEventKind(t)
	ev.Sensor = protocol.SensorInfo{Type: t, Values: values}
	return h.Send(ev)
}

func (h *Host) sendSize(kind protocol.EventKind) error {
	ev := protocol.NewEvent()
	ev.Kind = kind
	h.lock.Lock()
	ev.Size = protocol.SizeInfo{
		Width:     h.Width,
		Height:    h.Height,
		MaxWidth:  h.MaxWidth,
		MaxHeight: h.MaxHeight,
		Timestamp: uint32(h.now().Unix()),
	}
	h.lock.Unlock()
	return h.Send(ev)
}

func (h *Host) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now()
}
