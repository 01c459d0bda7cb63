package mqtt

import (
	"context"
	"io"
	"strings"

	"github.com/denisbrodbeck/machineid"

	"github.com/robotalks/bluedisplay.go/pkg/bridge"
)

// Topic suffixes of a device.
const (
	// TopicToHost carries command bytes from the device.
	TopicToHost = "tx"
	// TopicToDevice carries event bytes to the device.
	TopicToDevice = "rx"
	// TopicTap carries protobuf encoded dispatched events.
	TopicTap = "events"
	// TopicStats carries protobuf encoded transport counters.
	TopicStats = "stats"
)

// DeviceID returns the machine ID used as the default device name.
func DeviceID() string {
	id, err := machineid.ProtectedID("bluedisplay")
	if err != nil || id == "" {
		return "device"
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}

// DeviceTopic returns the topic of a device channel.
func DeviceTopic(device, suffix string) string {
	return strings.TrimSuffix(device, "/") + "/" + suffix
}

// PacketReadWriter implements bridge.PacketReadWriter over two topics.
type PacketReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh chan []byte
}

// NewPacketReadWriter creates a PacketReadWriter.
func NewPacketReadWriter(q *Queue) *PacketReadWriter {
	return &PacketReadWriter{Queue: q, packetCh: make(chan []byte, 64)}
}

// WithTopics specifies the topics.
func (p *PacketReadWriter) WithTopics(sub, pub string) *PacketReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForDevice sets topics for the device side:
// SubTopic = device/rx, PubTopic = device/tx.
func (p *PacketReadWriter) ForDevice(device string) *PacketReadWriter {
	return p.WithTopics(DeviceTopic(device, TopicToDevice), DeviceTopic(device, TopicToHost))
}

// ForHost sets topics for the host side:
// SubTopic = device/tx, PubTopic = device/rx.
func (p *PacketReadWriter) ForHost(device string) *PacketReadWriter {
	return p.WithTopics(DeviceTopic(device, TopicToHost), DeviceTopic(device, TopicToDevice))
}

// ReadPacket implements bridge.PacketReader.
func (p *PacketReadWriter) ReadPacket() ([]byte, error) {
	pkt, ok := <-p.packetCh
	if !ok {
		return nil, io.EOF
	}
	return pkt, nil
}

// WritePacket implements bridge.PacketWriter.
func (p *PacketReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Run subscribes SubTopic until ctx is done.
func (p *PacketReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, p.handleMsg)
	defer close(p.packetCh)
	defer sub.Close()
	<-ctx.Done()
	return ctx.Err()
}

func (p *PacketReadWriter) handleMsg(_ string, payload []byte) {
	p.packetCh <- append([]byte(nil), payload...)
}

// Stream returns the byte stream over the packets.
func (p *PacketReadWriter) Stream() *bridge.Stream {
	return bridge.NewStream(p)
}

// Publisher publishes to topics of the queue without waiting for delivery.
type Publisher struct {
	Queue *Queue
	QoS   byte
}

// Publish publishes payload to topic.
func (p *Publisher) Publish(topic string, payload []byte) error {
	p.Queue.PubWith(topic, payload, p.QoS, false)
	return nil
}
