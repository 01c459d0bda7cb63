package transport

import "github.com/robotalks/bluedisplay.go/pkg/protocol"

// Sender sends encoded frames. A frame is never interleaved with another.
type Sender interface {
	Send(frame []byte) error
}

// Poller hands completed events to the application. Poll never blocks.
type Poller interface {
	Poll(fn func(*protocol.Event)) int
}

// Backend is a complete transport.
type Backend interface {
	Sender
	Poller
	Stats() Stats
}
