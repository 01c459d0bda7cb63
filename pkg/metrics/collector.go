// Package metrics exports the engine counters to Prometheus.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/robotalks/bluedisplay.go/pkg/protocol"
	"github.com/robotalks/bluedisplay.go/pkg/transport"
)

const namespace = "bluedisplay"

// StatsSource provides transport counters.
type StatsSource interface {
	Stats() transport.Stats
}

// Collector implements prometheus.Collector over transport stats, and
// counts dispatched events by kind as a dispatch.Observer.
type Collector struct {
	Source StatsSource

	framesSent  *prometheus.Desc
	bytesSent   *prometheus.Desc
	dropped     *prometheus.Desc
	eventFrames *prometheus.Desc
	desyncs     *prometheus.Desc
	overwritten *prometheus.Desc
	overruns    *prometheus.Desc

	events *prometheus.CounterVec

	lock  sync.Mutex
	kinds map[protocol.EventKind]prometheus.Counter
}

// NewCollector creates a Collector. The device label is added to all
// metrics.
func NewCollector(src StatsSource, device string) *Collector {
	labels := prometheus.Labels{"device": device}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "transport", name), help, nil, labels)
	}
	return &Collector{
		Source:      src,
		framesSent:  desc("frames_sent_total", "Command frames sent."),
		bytesSent:   desc("bytes_sent_total", "Command bytes sent."),
		dropped:     desc("frames_dropped_total", "Command frames dropped."),
		eventFrames: desc("event_frames_total", "Event frames received."),
		desyncs:     desc("desyncs_total", "Receiver resynchronizations."),
		overwritten: desc("events_overwritten_total", "Events lost by slot overwrite."),
		overruns:    desc("overruns_total", "Receive buffer overruns."),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "dispatch",
			Name:        "events_total",
			Help:        "Dispatched events by kind.",
			ConstLabels: labels,
		}, []string{"kind"}),
		kinds: make(map[protocol.EventKind]prometheus.Counter),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.framesSent
	ch <- c.bytesSent
	ch <- c.dropped
	ch <- c.eventFrames
	ch <- c.desyncs
	ch <- c.overwritten
	ch <- c.overruns
	c.events.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.Source != nil {
		s := c.Source.Stats()
		counter := func(desc *prometheus.Desc, v uint64) {
			ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v))
		}
		counter(c.framesSent, s.FramesSent)
		counter(c.bytesSent, s.BytesSent)
		counter(c.dropped, s.DroppedFrames)
		counter(c.eventFrames, s.EventFrames)
		counter(c.desyncs, s.Desyncs)
		counter(c.overwritten, s.Overwritten)
		counter(c.overruns, s.Overruns)
	}
	c.events.Collect(ch)
}

// ObserveEvent implements dispatch.Observer.
func (c *Collector) ObserveEvent(ev *protocol.Event) {
	c.lock.Lock()
	counter, ok := c.kinds[ev.Kind]
	if !ok {
		counter = c.events.WithLabelValues(ev.Kind.String())
		c.kinds[ev.Kind] = counter
	}
	c.lock.Unlock()
	counter.Inc()
}
