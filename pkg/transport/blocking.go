package transport

import (
	"runtime"

	"github.com/golang/glog"

	"github.com/robotalks/bluedisplay.go/pkg/protocol"
)

// UART is a transmitter with a one byte output register.
type UART interface {
	// TxEmpty reports the output register can take the next byte.
	TxEmpty() bool
	WriteByte(b byte) error
}

// Flusher is optionally implemented by a UART which buffers bytes.
// It is called after each frame.
type Flusher interface {
	Flush() error
}

// BlockingSender writes frames byte by byte and blocks the caller for the
// whole transmission.
type BlockingSender struct {
	UART UART
	Link LinkProbe

	counters senderCounters
}

// NewBlockingSender creates a BlockingSender.
func NewBlockingSender(u UART) *BlockingSender {
	return &BlockingSender{UART: u}
}

// Send implements Sender.
func (s *BlockingSender) Send(frame []byte) error {
	if !probeOrDefault(s.Link).IsPaired() {
		s.counters.dropped.Add(1)
		return ErrNotReady
	}
	for _, b := range frame {
		for !s.UART.TxEmpty() {
			runtime.Gosched()
		}
		if err := s.UART.WriteByte(b); err != nil {
			s.counters.dropped.Add(1)
			return err
		}
	}
	if f, ok := s.UART.(Flusher); ok {
		if err := f.Flush(); err != nil {
			s.counters.dropped.Add(1)
			return err
		}
	}
	s.counters.sent(len(frame))
	return nil
}

// RxHandler is the receive notification of a byte-at-a-time backend.
type RxHandler interface {
	HandleRxByte(b byte)
}

// InterruptReceiver reassembles frames inside the RX notification and
// stores completed events into EventSlots.
type InterruptReceiver struct {
	Slots *EventSlots

	asm Reassembler
}

// NewInterruptReceiver creates an InterruptReceiver.
func NewInterruptReceiver() *InterruptReceiver {
	return &InterruptReceiver{Slots: NewEventSlots()}
}

// HandleRxByte implements RxHandler. It runs in the notification context.
func (r *InterruptReceiver) HandleRxByte(b byte) {
	if ev, ok := r.asm.Feed(b); ok {
		r.Slots.Put(&ev)
	}
}

// HandleRx drains a ByteSource inside the notification context.
func (r *InterruptReceiver) HandleRx(src ByteSource) {
	r.asm.Drain(src, r.Slots.Put)
}

// State returns the reassembly state.
func (r *InterruptReceiver) State() ReceiveState {
	return r.asm.State()
}

// Poll hands pending events to fn, oldest first.
func (r *InterruptReceiver) Poll(fn func(*protocol.Event)) (n int) {
	for {
		var ev protocol.Event
		token, ok := r.Slots.Next(&ev)
		if !ok {
			return
		}
		if glog.V(4) {
			glog.Infof("event %s", ev)
		}
		fn(&ev)
		r.Slots.Done(token)
		n++
	}
}

// SerialBackend combines BlockingSender and InterruptReceiver.
type SerialBackend struct {
	*BlockingSender
	*InterruptReceiver
}

// NewSerialBackend creates a SerialBackend over a UART.
func NewSerialBackend(u UART, link LinkProbe) *SerialBackend {
	b := &SerialBackend{
		BlockingSender:    NewBlockingSender(u),
		InterruptReceiver: NewInterruptReceiver(),
	}
	b.BlockingSender.Link = link
	return b
}

// Stats implements Backend.
func (b *SerialBackend) Stats() (s Stats) {
	b.BlockingSender.counters.fill(&s)
	s.EventFrames = b.InterruptReceiver.asm.Frames()
	s.Desyncs = b.InterruptReceiver.asm.Desyncs()
	s.Overwritten = b.InterruptReceiver.Slots.Overwritten()
	return
}
