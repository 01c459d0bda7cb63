// Package host provides shell commands acting as the simulated host.
package host

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/bluedisplay.go/pkg/cli/sh"
	"github.com/robotalks/bluedisplay.go/pkg/protocol"
	"github.com/robotalks/bluedisplay.go/pkg/sim"
)

// Stats is the output of the stats command.
type Stats struct {
	FramesSent    uint64 `json:"frames-sent"`
	BytesSent     uint64 `json:"bytes-sent"`
	DroppedFrames uint64 `json:"dropped-frames"`
	EventFrames   uint64 `json:"event-frames"`
	Desyncs       uint64 `json:"desyncs"`
	Overwritten   uint64 `json:"overwritten"`
	Dispatched    uint64 `json:"dispatched"`
	Connected     bool   `json:"connected"`
}

func parseUint16s(args []string, n int) ([]uint16, error) {
	if len(args) < n {
		return nil, fmt.Errorf("%d arguments expected", n)
	}
	vals := make([]uint16, len(args))
	for i, arg := range args {
		v, err := strconv.ParseUint(arg, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid argument %q: %w", arg, err)
		}
		vals[i] = uint16(v)
	}
	return vals, nil
}

func parseFloats(args []string) (vals [3]float32, err error) {
	for i := 0; i < len(args) && i < len(vals); i++ {
		v, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return vals, fmt.Errorf("invalid value %q: %w", args[i], err)
		}
		vals[i] = float32(v)
	}
	return
}

func injectFunc(fn func(*sim.Host) error) func(c *ishell.Context) {
	return sh.MustBeRunning(func(c *ishell.Context) {
		sh.Inject(c, fn)
	})
}

func touchCmd(fn func(c *ishell.Context, pos []uint16)) func(c *ishell.Context) {
	return sh.MustBeRunning(func(c *ishell.Context) {
		pos, err := parseUint16s(c.Args, 2)
		if err != nil {
			c.Err(err)
			return
		}
		fn(c, pos)
	})
}

var (
	// ConnectCmd sends connection build-up.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "",
		Func:    injectFunc((*sim.Host).Connect),
	}

	// DisconnectCmd sends disconnect.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func:    injectFunc((*sim.Host).Disconnect),
	}

	// RedrawCmd sends redraw.
	RedrawCmd = ishell.Cmd{
		Name: "redraw",
		Help: "",
		Func: injectFunc((*sim.Host).Redraw),
	}

	// ReorientCmd rotates the host display.
	ReorientCmd = ishell.Cmd{
		Name:    "reorient",
		Aliases: []string{"rotate"},
		Help:    "",
		Func: sh.MustBeRunning(func(c *ishell.Context) {
			var prompt string
			if sh.Inject(c, func(h *sim.Host) error {
				err := h.Reorient()
				prompt = fmt.Sprintf("%dx%d > ", h.Width, h.Height)
				return err
			}) == nil {
				sh.ShellFrom(c).Shell.SetPrompt(prompt)
			}
		}),
	}

	// TapCmd taps at a position.
	TapCmd = ishell.Cmd{
		Name:    "tap",
		Aliases: []string{"t"},
		Help:    "X Y",
		Func: touchCmd(func(c *ishell.Context, pos []uint16) {
			if sh.Inject(c, func(h *sim.Host) error {
				return h.Touch(protocol.EventTouchDown, pos[0], pos[1])
			}) != nil {
				return
			}
			sh.Inject(c, func(h *sim.Host) error {
				return h.Touch(protocol.EventTouchUp, pos[0], pos[1])
			})
		}),
	}

	// LongTouchCmd touches with the host reporting a long touch.
	LongTouchCmd = ishell.Cmd{
		Name:    "longtouch",
		Aliases: []string{"lt"},
		Help:    "X Y",
		Func: touchCmd(func(c *ishell.Context, pos []uint16) {
			for _, kind := range []protocol.EventKind{
				protocol.EventTouchDown,
				protocol.EventLongTouchDownCallback,
				protocol.EventTouchUp,
			} {
				kind := kind
				if sh.Inject(c, func(h *sim.Host) error {
					return h.Touch(kind, pos[0], pos[1])
				}) != nil {
					return
				}
			}
		}),
	}

	// DragCmd moves the pointer from one position to another.
	DragCmd = ishell.Cmd{
		Name:    "drag",
		Aliases: []string{"swipe"},
		Help:    "X1 Y1 X2 Y2 [STEPS]",
		Func: sh.MustBeRunning(func(c *ishell.Context) {
			vals, err := parseUint16s(c.Args, 4)
			if err != nil {
				c.Err(err)
				return
			}
			steps := 4
			if len(vals) > 4 {
				steps = int(vals[4])
			}
			x1, y1, x2, y2 := int(vals[0]), int(vals[1]), int(vals[2]), int(vals[3])
			inject := func(kind protocol.EventKind, x, y int) bool {
				return sh.Inject(c, func(h *sim.Host) error {
					return h.Touch(kind, uint16(x), uint16(y))
				}) == nil
			}
			if !inject(protocol.EventTouchDown, x1, y1) {
				return
			}
			for i := 1; i <= steps; i++ {
				if !inject(protocol.EventTouchMove, x1+(x2-x1)*i/(steps+1), y1+(y2-y1)*i/(steps+1)) {
					return
				}
			}
			inject(protocol.EventTouchUp, x2, y2)
		}),
	}

	// CallbackCmd sends a widget callback.
	CallbackCmd = ishell.Cmd{
		Name:    "callback",
		Aliases: []string{"cb"},
		Help:    "button|slider|number HANDLER INDEX VALUE",
		Func: sh.MustBeRunning(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("callback type expected"))
				return
			}
			var kind protocol.EventKind
			switch strings.ToLower(c.Args[0]) {
			case "button":
				kind = protocol.EventButtonCallback
			case "slider":
				kind = protocol.EventSliderCallback
			case "number":
				kind = protocol.EventNumberCallback
			default:
				c.Err(fmt.Errorf("unknown callback type %q", c.Args[0]))
				return
			}
			vals, err := parseUint16s(c.Args[1:], 3)
			if err != nil {
				c.Err(err)
				return
			}
			sh.Inject(c, func(h *sim.Host) error {
				return h.Callback(kind, protocol.HandlerRef(vals[0]), vals[1], uint32(vals[2]))
			})
		}),
	}

	// SensorCmd sends a sensor sample.
	SensorCmd = ishell.Cmd{
		Name:    "sensor",
		Aliases: []string{"s"},
		Help:    "TYPE X [Y [Z]]",
		Func: sh.MustBeRunning(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("sensor type and value expected"))
				return
			}
			types, err := parseUint16s(c.Args[:1], 1)
			if err != nil {
				c.Err(err)
				return
			}
			values, err := parseFloats(c.Args[1:])
			if err != nil {
				c.Err(err)
				return
			}
			sh.Inject(c, func(h *sim.Host) error {
				return h.SensorSample(protocol.SensorType(types[0]), values)
			})
		}),
	}

	// CommandsCmd prints and clears the commands received by the host.
	CommandsCmd = ishell.Cmd{
		Name:    "commands",
		Aliases: []string{"cmds"},
		Help:    "",
		Func: sh.MustBeRunning(func(c *ishell.Context) {
			cmds := sh.ShellFrom(c).Session.Rig.Host.TakeCommands()
			if cmds == nil {
				cmds = []*protocol.Command{}
			}
			lines := make([]string, len(cmds))
			for n, cmd := range cmds {
				lines[n] = sh.FormatCommand(cmd)
			}
			sh.PrintOutput(c, cmds, strings.Join(lines, "\n"))
		}),
	}

	// StatsCmd prints the transport and dispatch counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "",
		Func: sh.MustBeRunning(func(c *ishell.Context) {
			d := sh.ShellFrom(c).Session.Rig.Display
			var st Stats
			if sh.Inject(c, func(*sim.Host) error {
				ts := d.Backend.Stats()
				st = Stats{
					FramesSent:    ts.FramesSent,
					BytesSent:     ts.BytesSent,
					DroppedFrames: ts.DroppedFrames,
					EventFrames:   ts.EventFrames,
					Desyncs:       ts.Desyncs,
					Overwritten:   ts.Overwritten,
					Dispatched:    d.Dispatcher.Dispatched(),
					Connected:     d.Dispatcher.IsConnected(),
				}
				return nil
			}) != nil {
				return
			}
			sh.PrintOutput(c, st, fmt.Sprintf("sent %d frames (%d bytes, %d dropped), received %d events (%d desync, %d overwritten), dispatched %d, connected %v",
				st.FramesSent, st.BytesSent, st.DroppedFrames, st.EventFrames, st.Desyncs, st.Overwritten, st.Dispatched, st.Connected))
		}),
	}
)

func init() {
	sh.AddCmds(
		&ConnectCmd,
		&DisconnectCmd,
		&RedrawCmd,
		&ReorientCmd,
		&TapCmd,
		&LongTouchCmd,
		&DragCmd,
		&CallbackCmd,
		&SensorCmd,
		&CommandsCmd,
		&StatsCmd,
	)
}
