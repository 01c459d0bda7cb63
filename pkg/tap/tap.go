package tap

import (
	"time"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/bluedisplay.go/pkg/protocol"
	"github.com/robotalks/bluedisplay.go/pkg/transport"
)

// Publisher sends encoded messages to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Tap publishes every dispatched event. It implements dispatch.Observer.
type Tap struct {
	Publisher Publisher
	Device    string
	Topic     string
	// Now is the clock, time.Now if nil.
	Now func() time.Time

	seq uint64
}

// New creates a Tap.
func New(pub Publisher, device, topic string) *Tap {
	return &Tap{Publisher: pub, Device: device, Topic: topic}
}

// ObserveEvent implements dispatch.Observer.
func (t *Tap) ObserveEvent(ev *protocol.Event) {
	t.seq++
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	msg := FromEvent(ev)
	msg.Device, msg.Sequence, msg.TimeNanos = t.Device, t.seq, now().UnixNano()
	data, err := proto.Marshal(msg)
	if err == nil {
		err = t.Publisher.Publish(t.Topic, data)
	}
	if err != nil {
		glog.V(2).Infof("tap: %v", err)
	}
}

// PublishStats publishes a snapshot of transport counters.
func (t *Tap) PublishStats(topic string, s transport.Stats) error {
	data, err := proto.Marshal(&StatsMsg{
		Device:        t.Device,
		FramesSent:    s.FramesSent,
		BytesSent:     s.BytesSent,
		DroppedFrames: s.DroppedFrames,
		EventFrames:   s.EventFrames,
		Desyncs:       s.Desyncs,
		Overwritten:   s.Overwritten,
		Overruns:      s.Overruns,
	})
	if err != nil {
		return err
	}
	return t.Publisher.Publish(topic, data)
}

// FromEvent converts an event to its wire form.
func FromEvent(ev *protocol.Event) *EventMsg {
	msg := &EventMsg{Kind: uint32(ev.Kind)}
	switch k := ev.Kind; {
	case k.IsTouch() || k == protocol.EventLongTouchDownCallback:
		msg.X, msg.Y = uint32(ev.Touch.X), uint32(ev.Touch.Y)
	case k == protocol.EventSwipeCallback:
		msg.X, msg.Y = uint32(ev.Swipe.StartX), uint32(ev.Swipe.StartY)
		msg.DeltaX, msg.DeltaY = int32(ev.Swipe.DeltaX), int32(ev.Swipe.DeltaY)
	case k.IsCallback():
		msg.Handler = uint32(ev.Callback.Handler)
		msg.ObjectIndex = uint32(ev.Callback.ObjectIndex)
		msg.Value = ev.Callback.Value
	case k.IsSize():
		msg.Width, msg.Height = uint32(ev.Size.Width), uint32(ev.Size.Height)
	case k.IsSensor():
		msg.Values = append(msg.Values, ev.Sensor.Values[:]...)
	}
	return msg
}

// Decode decodes an event message.
func Decode(data []byte) (*EventMsg, error) {
	msg := &EventMsg{}
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// EventKind returns the kind of the event.
func (m *EventMsg) EventKind() protocol.EventKind {
	return protocol.EventKind(m.Kind)
}

// Time returns the dispatch time.
func (m *EventMsg) Time() time.Time {
	return time.Unix(0, m.TimeNanos)
}
