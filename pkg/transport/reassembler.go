package transport

import (
	"sync/atomic"

	"github.com/robotalks/bluedisplay.go/pkg/protocol"
)

// ReceiveState is the state of the Reassembler.
type ReceiveState int

const (
	// StateAwaitingHeader means the receiver is in sync and expects the
	// length and kind bytes of the next frame.
	StateAwaitingHeader ReceiveState = iota
	// StateAwaitingPayload means a frame header is received and payload
	// or the trailing sync token is expected.
	StateAwaitingPayload
	// StateOutOfSync means bytes are discarded until a sync token.
	StateOutOfSync
)

// String implements fmt.Stringer.
func (s ReceiveState) String() string {
	switch s {
	case StateAwaitingHeader:
		return "awaiting-header"
	case StateAwaitingPayload:
		return "awaiting-payload"
	}
	return "out-of-sync"
}

type parseState int

const (
	stateLen     parseState = iota // waiting for raw length
	stateKind                      // waiting for event kind
	statePayload                   // receiving payload
	stateTrailer                   // waiting for trailing sync token
	stateSync                      // discarding until sync token
)

// Reassembler turns received bytes into events.
// A zero Reassembler expects the length byte of a frame.
//
// Corrupted frames are never reported. The Reassembler discards bytes
// until the next sync token and continues with the frame following it.
type Reassembler struct {
	state   parseState
	rawLen  byte
	kind    byte
	size    int
	recvLen int
	payload [protocol.MaxPayloadSize]byte

	frames  atomic.Uint64
	desyncs atomic.Uint64
}

// State returns the current receive state.
func (r *Reassembler) State() ReceiveState {
	switch r.state {
	case stateLen, stateKind:
		return StateAwaitingHeader
	case stateSync:
		return StateOutOfSync
	}
	return StateAwaitingPayload
}

// Frames returns the number of events reassembled.
func (r *Reassembler) Frames() uint64 {
	return r.frames.Load()
}

// Desyncs returns the number of times the stream lost sync.
func (r *Reassembler) Desyncs() uint64 {
	return r.desyncs.Load()
}

// Resync discards the partial frame and waits for the next sync token.
func (r *Reassembler) Resync() {
	r.resync()
}

// Feed consumes one byte and returns an event when a frame completes.
func (r *Reassembler) Feed(b byte) (ev protocol.Event, ok bool) {
	switch r.state {
	case stateSync:
		if b == protocol.SyncToken {
			r.state = stateLen
		}
	case stateLen:
		if b < protocol.EventOverhead || int(b)-protocol.EventOverhead > protocol.MaxPayloadSize {
			r.resync()
			return
		}
		r.rawLen, r.size, r.recvLen = b, int(b)-protocol.EventOverhead, 0
		r.state = stateKind
	case stateKind:
		r.kind = b
		if r.size == 0 {
			r.state = stateTrailer
		} else {
			r.state = statePayload
		}
	case statePayload:
		r.payload[r.recvLen] = b
		if r.recvLen++; r.recvLen >= r.size {
			r.state = stateTrailer
		}
	case stateTrailer:
		if b != protocol.SyncToken {
			r.resync()
			return
		}
		// the trailer keeps the stream in sync even if the payload
		// doesn't match the kind.
		r.state = stateLen
		var err error
		if ev, err = protocol.DecodeFrame(r.rawLen, r.kind, r.payload[:r.size], b); err != nil {
			r.desyncs.Add(1)
			return ev, false
		}
		r.frames.Add(1)
		return ev, true
	}
	return
}

// Drain feeds all available bytes from src and calls fn for every
// completed event. It returns the number of events.
func (r *Reassembler) Drain(src ByteSource, fn func(*protocol.Event)) (n int) {
	for src.Available() > 0 {
		if ev, ok := r.Feed(src.Next()); ok {
			n++
			fn(&ev)
		}
	}
	return
}

func (r *Reassembler) resync() {
	r.state = stateSync
	r.desyncs.Add(1)
}
