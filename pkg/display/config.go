package display

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/bluedisplay.go/pkg/dispatch"
	"github.com/robotalks/bluedisplay.go/pkg/transport"
)

// Config defines the configurations of the protocol engine.
type Config struct {
	SendBufferSize   int           `yaml:"send-buffer-size"`
	SendTimeout      time.Duration `yaml:"send-timeout"`
	ConnectTimeout   time.Duration `yaml:"connect-timeout"`
	PollInterval     time.Duration `yaml:"poll-interval"`
	SwipeThreshold   int           `yaml:"swipe-threshold"`
	LongTouchTimeout time.Duration `yaml:"long-touch-timeout"`
	LocalLongTouch   bool          `yaml:"local-long-touch"`
}

var defaultConfig = Config{
	SendBufferSize:   1024,
	SendTimeout:      transport.DefaultSendTimeout,
	ConnectTimeout:   2 * time.Second,
	PollInterval:     10 * time.Millisecond,
	SwipeThreshold:   dispatch.DefaultSwipeThreshold,
	LongTouchTimeout: 800 * time.Millisecond,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.SendBufferSize, "send-buffer", defaultConfig.SendBufferSize, "Size of the send ring in bytes.")
	flag.DurationVar(&defaultConfig.SendTimeout, "send-timeout", defaultConfig.SendTimeout, "Time to wait for space in the send ring.")
	flag.DurationVar(&defaultConfig.ConnectTimeout, "connect-timeout", defaultConfig.ConnectTimeout, "Time to wait for the host to answer a canvas size request.")
	flag.DurationVar(&defaultConfig.PollInterval, "poll-interval", defaultConfig.PollInterval, "Event polling interval.")
	flag.IntVar(&defaultConfig.SwipeThreshold, "swipe-threshold", defaultConfig.SwipeThreshold, "Minimum displacement in pixels of a swipe.")
	flag.DurationVar(&defaultConfig.LongTouchTimeout, "long-touch", defaultConfig.LongTouchTimeout, "Long touch down timeout.")
	flag.BoolVar(&defaultConfig.LocalLongTouch, "local-long-touch", defaultConfig.LocalLongTouch, "Detect long touches on the device instead of the host.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// LoadFile overrides the config with values from a YAML file.
func (c *Config) LoadFile(fn string) error {
	data, err := os.ReadFile(fn)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config %s: %w", fn, err)
	}
	return c.Validate()
}

// Validate checks the config values.
func (c *Config) Validate() error {
	if c.SendBufferSize <= 0 {
		return fmt.Errorf("invalid send-buffer-size %d", c.SendBufferSize)
	}
	if c.SwipeThreshold < 0 {
		return fmt.Errorf("invalid swipe-threshold %d", c.SwipeThreshold)
	}
	if c.SendTimeout < 0 || c.ConnectTimeout < 0 || c.PollInterval < 0 || c.LongTouchTimeout < 0 {
		return fmt.Errorf("negative duration in config")
	}
	return nil
}

// NewDMABackend creates a DMABackend using the config.
func (c *Config) NewDMABackend(tx transport.DMATx, rx transport.DMARx, recvBuf []byte, link transport.LinkProbe) *transport.DMABackend {
	b := transport.NewDMABackend(tx, c.SendBufferSize, rx, recvBuf, link)
	b.RingSender.Timeout = c.SendTimeout
	return b
}
