package sh

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/bluedisplay.go/pkg/demo"
	"github.com/robotalks/bluedisplay.go/pkg/display"
	fx "github.com/robotalks/bluedisplay.go/pkg/framework"
	"github.com/robotalks/bluedisplay.go/pkg/protocol"
	"github.com/robotalks/bluedisplay.go/pkg/sim"
)

// Shell provides ishell backed interactive shell over a simulated host.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoStart   bool

	Shell   *ishell.Shell
	Config  *display.Config
	Session *Session
}

// Session is a running device loop attached to a simulated host.
type Session struct {
	Ctx    context.Context
	Cancel func()
	Rig    *sim.Rig
	Loop   *fx.Loop
	App    *demo.Sketch

	done chan error
}

const (
	shellKey        = "$shell"
	stoppedPrompt   = "[off] > "
	runningPrompt   = "%dx%d > "
	defaultRecvSize = 256
	commandTimeout  = time.Second
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	useSerial  bool
	width      = uint(320)
	height     = uint(240)

	// commands
	commands = []*ishell.Cmd{
		&StartCmd,
		&StopCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.BoolVar(&useSerial, "serial", useSerial, "Use the byte-blocking backend instead of DMA.")
	flag.UintVar(&width, "width", width, "Simulated host display width.")
	flag.UintVar(&height, "height", height, "Simulated host display height.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *display.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(stoppedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeRunning wraps command func requires a running device.
func MustBeRunning(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Session == nil {
			c.Err(fmt.Errorf("device not started"))
			return
		}
		fn(c)
	}
}

// FormatCommand prints a host command into friendly string for display.
func FormatCommand(cmd *protocol.Command) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "fn=%02x args=%v", uint8(cmd.Function), cmd.Args)
	if cmd.HasPayload {
		fmt.Fprintf(&w, " data=%q", cmd.Payload)
	}
	return w.String()
}

// Inject runs fn against the host inside the device loop and dispatches the
// resulting events before returning.
func Inject(c *ishell.Context, fn func(*sim.Host) error) (err error) {
	s := ShellFrom(c)
	if s.Session == nil {
		err = fmt.Errorf("device not started")
		c.Err(err)
		return
	}
	ctx, cancel := context.WithTimeout(s.Session.Ctx, commandTimeout)
	defer cancel()
	rig := s.Session.Rig
	err = s.Session.Loop.Do(ctx, func() error {
		err := fn(rig.Host)
		rig.Display.CheckAndHandleEvents()
		return err
	})
	if err != nil {
		c.Err(err)
	}
	return
}

// PrintOutput prints v as JSON when OutputJSON is set, or text otherwise.
func PrintOutput(c *ishell.Context, v interface{}, text string) {
	if ShellFrom(c).OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(text)
}

// WithAutoStart sets AutoStart.
func (s *Shell) WithAutoStart(en bool) *Shell {
	s.AutoStart = en
	return s
}

// Start powers on the simulated device.
func (s *Shell) Start() error {
	if err := s.Config.Validate(); err != nil {
		return err
	}
	sess := &Session{done: make(chan error, 1)}
	w, h := uint16(width), uint16(height)
	if useSerial {
		sess.Rig = sim.NewSerialRig(w, h, s.Config)
	} else {
		sess.Rig = sim.NewDMARig(w, h, s.Config, defaultRecvSize)
	}
	sess.App = demo.NewSketch(sess.Rig.Display)
	if err := sess.App.EnableLongTouch(); err != nil {
		return err
	}
	sess.Loop = fx.NewLoop(sess.Rig.Display)
	sess.Loop.Interval = s.Config.PollInterval
	sess.App.AddToLoop(sess.Loop)
	sess.Ctx, sess.Cancel = context.WithCancel(context.Background())
	s.Stop()
	s.Session = sess
	go func() { sess.done <- sess.Loop.Run(sess.Ctx) }()
	s.Shell.SetPrompt(fmt.Sprintf(runningPrompt, w, h))
	return nil
}

// Stop powers off the simulated device.
func (s *Shell) Stop() {
	if s.Session != nil {
		s.Session.Cancel()
		<-s.Session.done
		s.Session = nil
		s.Shell.SetPrompt(stoppedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoStart {
		if err := s.Start(); err != nil {
			log.Fatalf("start device failed: %v", err)
		}
	}
	defer s.Stop()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// StartCmd powers on the device.
	StartCmd = ishell.Cmd{
		Name:    "start",
		Aliases: []string{"on"},
		Help:    "",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Start(); err != nil {
				c.Err(err)
			}
		},
	}

	// StopCmd powers off the device.
	StopCmd = ishell.Cmd{
		Name:    "stop",
		Aliases: []string{"off"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Stop()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(display.NewConfig()).WithAutoStart(true).Run(flag.Args()...)
}
