package device

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/bluedisplay.go/pkg/bridge/mqtt"
	"github.com/robotalks/bluedisplay.go/pkg/dispatch"
	"github.com/robotalks/bluedisplay.go/pkg/display"
	"github.com/robotalks/bluedisplay.go/pkg/framework"
	"github.com/robotalks/bluedisplay.go/pkg/metrics"
	"github.com/robotalks/bluedisplay.go/pkg/tap"
	"github.com/robotalks/bluedisplay.go/pkg/transport"
)

// Config provides the options to run the engine on a host OS.
type Config struct {
	// LinkURL selects the transport to the host, see OpenLink.
	LinkURL  string `yaml:"link"`
	DeviceID string `yaml:"device-id"`
	// TapURL is the MQTT broker receiving dispatched events,
	// e.g. mqtt://host:port/topic-prefix/
	TapURL string `yaml:"tap"`
	// MetricsAddr is the listen address of the /metrics endpoint.
	MetricsAddr string `yaml:"metrics"`

	Display *display.Config `yaml:"display"`
}

var defaultConfig = Config{
	LinkURL: "tcp://localhost:4711",
}

var configFile string

func init() {
	if val := os.Getenv("BLUEDISPLAY_LINK"); val != "" {
		defaultConfig.LinkURL = val
	}
	if val := os.Getenv("BLUEDISPLAY_TAP"); val != "" {
		defaultConfig.TapURL = val
	}
	defaultConfig.DeviceID = mqtt.DeviceID()
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.LinkURL, "link", defaultConfig.LinkURL, "Link URL: serial:///dev/tty?baud=n, tcp://, ws:// or mqtt://")
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID")
	flag.StringVar(&defaultConfig.TapURL, "tap", defaultConfig.TapURL, "MQTT broker URL publishing dispatched events")
	flag.StringVar(&defaultConfig.MetricsAddr, "metrics", defaultConfig.MetricsAddr, "Listen address of /metrics")
	flag.StringVar(&configFile, "config", configFile, "YAML config file")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with defaults. The file given by -config is
// loaded on top of the defaults.
func NewConfig() (*Config, error) {
	conf := defaultConfig
	conf.Display = display.NewConfig()
	if configFile != "" {
		if err := conf.LoadFile(configFile); err != nil {
			return nil, err
		}
	}
	return &conf, nil
}

// LoadFile overrides the config with values from a YAML file.
func (c *Config) LoadFile(fn string) error {
	data, err := os.ReadFile(fn)
	if err != nil {
		return err
	}
	if c.Display == nil {
		c.Display = display.NewConfig()
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config %s: %w", fn, err)
	}
	return c.Display.Validate()
}

// Env is a running protocol engine over a link.
type Env struct {
	Config  *Config
	Link    *Link
	Backend *transport.SerialBackend
	Display *display.Display
	Loop    *framework.Loop
	Metrics *metrics.Collector
	Tap     *tap.Tap

	tapQueue *mqtt.Queue
}

// NewEnv opens the link and creates the engine.
func (c *Config) NewEnv(ctx context.Context) (*Env, error) {
	conf := c.Display
	if conf == nil {
		conf = display.NewConfig()
	}
	link, err := OpenLink(ctx, c.LinkURL, c.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("open link %s: %w", c.LinkURL, err)
	}
	e := &Env{Config: c, Link: link}
	e.Backend = transport.NewSerialBackend(transport.NewStreamUART(link), link.Probe)
	e.Display = display.New(e.Backend, conf)
	e.Loop = framework.NewLoop(e.Display)
	e.Loop.Interval = conf.PollInterval

	driver := transport.NewStreamDriver(link, e.Backend)
	driver.Notify = e.Display.Wake
	e.Loop.AddRunnable(framework.NamedRun("link", framework.RunFunc(func(ctx context.Context) error {
		return framework.RunWithContextCloser(ctx, link, func() error {
			return driver.Run(ctx)
		})
	})))
	e.Loop.AddRunnable(link.Runners...)

	var observers dispatch.Observers
	e.Metrics = metrics.NewCollector(e.Backend, c.DeviceID)
	observers = append(observers, e.Metrics)
	if c.TapURL != "" {
		if e.tapQueue, err = mqtt.NewQueueFromURL(c.TapURL); err != nil {
			link.Close()
			return nil, fmt.Errorf("tap: %w", err)
		}
		e.tapQueue.Connect()
		e.Tap = tap.New(&mqtt.Publisher{Queue: e.tapQueue}, c.DeviceID, mqtt.DeviceTopic(c.DeviceID, mqtt.TopicTap))
		observers = append(observers, e.Tap)
	}
	e.Display.Dispatcher.Observer = observers
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv(ctx context.Context) *Env {
	e, err := c.NewEnv(ctx)
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

// Run runs the loop and the metrics endpoint until ctx is done.
func (e *Env) Run(ctx context.Context) error {
	runner := framework.NewRunnerWith(ctx)
	if addr := e.Config.MetricsAddr; addr != "" {
		runner.Go(framework.NamedRun("metrics", framework.RunFunc(e.serveMetrics)))
	}
	if e.Tap != nil {
		runner.Go(framework.NamedRun("tap-stats", framework.RunFunc(e.publishStats)))
	}
	runner.Go(framework.NamedRun("loop", e.Loop))
	err := runner.Wait()
	if e.tapQueue != nil {
		e.tapQueue.Close()
	}
	return err
}

// RunOrFail runs with signal handling and fails on error.
func (e *Env) RunOrFail() {
	runner := framework.NewRunner().HandleSignals()
	if err := e.Run(runner.Context); err != nil {
		log.Fatalln(err)
	}
}

func (e *Env) serveMetrics(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(e.Metrics)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: e.Config.MetricsAddr, Handler: mux}
	glog.Infof("metrics on %s", srv.Addr)
	return framework.RunWithContextCloser(ctx, srv, func() error {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
}

func (e *Env) publishStats(ctx context.Context) error {
	topic := mqtt.DeviceTopic(e.Config.DeviceID, mqtt.TopicStats)
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := e.Tap.PublishStats(topic, e.Backend.Stats()); err != nil {
				glog.Warningf("publish stats: %v", err)
			}
		}
	}
}
