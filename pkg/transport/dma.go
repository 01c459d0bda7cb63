package transport

import (
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/bluedisplay.go/pkg/protocol"
)

// DMARx is a DMA channel receiving from the UART into a circular buffer.
type DMARx interface {
	// Remaining returns the remaining-count register. It counts down from
	// the buffer size with every received byte and reloads at zero.
	Remaining() int
}

// DMAReceiver reassembles frames from a circular buffer written by DMA.
// It is driven by polling from the application context.
type DMAReceiver struct {
	rx            DMARx
	buf           []byte
	lastRemaining int
	readPos       int
	pending       int

	asm      Reassembler
	overruns atomic.Uint64
}

// NewDMAReceiver creates a DMAReceiver over buf, which the DMA channel
// writes circularly.
func NewDMAReceiver(rx DMARx, buf []byte) *DMAReceiver {
	return &DMAReceiver{rx: rx, buf: buf, lastRemaining: len(buf)}
}

// Available implements ByteSource. It accounts the bytes received since
// the last call from the difference of the remaining-count register.
func (r *DMAReceiver) Available() int {
	remaining := r.rx.Remaining()
	if remaining <= 0 {
		remaining = len(r.buf)
	}
	n := r.lastRemaining - remaining
	if n < 0 {
		n += len(r.buf)
	}
	r.lastRemaining = remaining
	r.pending += n
	if r.pending > len(r.buf) {
		// the hardware lapped the reader, what's left is garbage.
		r.overruns.Add(1)
		r.readPos = (r.readPos + r.pending) % len(r.buf)
		r.pending = 0
		r.asm.Resync()
	}
	return r.pending
}

// Next implements ByteSource.
func (r *DMAReceiver) Next() byte {
	b := r.buf[r.readPos]
	if r.readPos++; r.readPos >= len(r.buf) {
		r.readPos = 0
	}
	r.pending--
	return b
}

// State returns the reassembly state.
func (r *DMAReceiver) State() ReceiveState {
	return r.asm.State()
}

// Poll implements Poller.
func (r *DMAReceiver) Poll(fn func(*protocol.Event)) int {
	return r.asm.Drain(r, func(ev *protocol.Event) {
		if glog.V(4) {
			glog.Infof("event %s", ev)
		}
		fn(ev)
	})
}

// DMABackend combines RingSender and DMAReceiver.
type DMABackend struct {
	*RingSender
	*DMAReceiver
}

// NewDMABackend creates a DMABackend.
func NewDMABackend(tx DMATx, sendBufSize int, rx DMARx, recvBuf []byte, link LinkProbe) *DMABackend {
	b := &DMABackend{
		RingSender:  NewRingSender(tx, sendBufSize),
		DMAReceiver: NewDMAReceiver(rx, recvBuf),
	}
	b.RingSender.Link = link
	return b
}

// Stats implements Backend.
func (b *DMABackend) Stats() (s Stats) {
	b.RingSender.counters.fill(&s)
	s.EventFrames = b.DMAReceiver.asm.Frames()
	s.Desyncs = b.DMAReceiver.asm.Desyncs()
	s.Overruns = b.DMAReceiver.overruns.Load()
	return
}
