package transport

import (
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultSendTimeout is the default time to wait for room in the send ring.
const DefaultSendTimeout = 500 * time.Millisecond

// DMATx is a DMA channel transmitting memory to the UART.
type DMATx interface {
	// Start starts transferring p. When done, the completion notification
	// must call RingSender.TransferComplete.
	Start(p []byte)
	// EnableCompleteNotify switches the completion notification.
	EnableCompleteNotify(enable bool)
}

// RingSender copies frames into a send ring and drains it with chained
// DMA transfers. Send must only be called from one context.
type RingSender struct {
	Link    LinkProbe
	Timeout time.Duration

	tx       DMATx
	lock     sync.Mutex
	buf      []byte
	r, w     uint64 // total bytes completed / appended
	inFlight int
	active   bool
	spaceCh  chan struct{}

	counters senderCounters
}

// NewRingSender creates a RingSender with a ring of size bytes.
func NewRingSender(tx DMATx, size int) *RingSender {
	return &RingSender{
		Timeout: DefaultSendTimeout,
		tx:      tx,
		buf:     make([]byte, size),
		spaceCh: make(chan struct{}, 1),
	}
}

// Cap returns the ring capacity.
func (s *RingSender) Cap() int {
	return len(s.buf)
}

// Free returns the room left in the ring.
func (s *RingSender) Free() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.freeLocked()
}

// Busy indicates a transfer is ongoing.
func (s *RingSender) Busy() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.active
}

// Send implements Sender. If the ring lacks room, Send waits for transfers
// to complete up to Timeout, then drops the frame with ErrBufferFull.
// Partial frames are never queued.
func (s *RingSender) Send(frame []byte) error {
	if !probeOrDefault(s.Link).IsPaired() {
		s.counters.dropped.Add(1)
		return ErrNotReady
	}
	n := len(frame)
	if n == 0 {
		return nil
	}
	if n > len(s.buf) {
		s.counters.dropped.Add(1)
		return ErrFrameTooLarge
	}

	var timer *time.Timer
	s.lock.Lock()
	for s.freeLocked() < n {
		s.lock.Unlock()
		if timer == nil {
			if s.Timeout <= 0 {
				return s.dropFull(n)
			}
			timer = time.NewTimer(s.Timeout)
			defer timer.Stop()
		}
		select {
		case <-s.spaceCh:
		case <-timer.C:
			return s.dropFull(n)
		}
		s.lock.Lock()
	}
	pos := int(s.w % uint64(len(s.buf)))
	if c := copy(s.buf[pos:], frame); c < n {
		copy(s.buf, frame[c:])
	}
	s.w += uint64(n)
	var start []byte
	if !s.active {
		start = s.beginLocked()
	}
	s.lock.Unlock()
	s.counters.sent(n)
	if start != nil {
		s.tx.Start(start)
	}
	return nil
}

// TransferComplete is the DMA completion notification.
func (s *RingSender) TransferComplete() {
	s.lock.Lock()
	s.r += uint64(s.inFlight)
	s.inFlight = 0
	var next []byte
	if s.w != s.r {
		next = s.beginLocked()
	} else {
		s.active = false
		s.tx.EnableCompleteNotify(false)
	}
	s.lock.Unlock()
	select {
	case s.spaceCh <- struct{}{}:
	default:
	}
	if next != nil {
		s.tx.Start(next)
	}
}

func (s *RingSender) freeLocked() int {
	return len(s.buf) - int(s.w-s.r)
}

// beginLocked selects the contiguous run following the read cursor. A run
// crossing the end of the ring is cut there and the rest is sent by the
// next transfer.
func (s *RingSender) beginLocked() []byte {
	pos := int(s.r % uint64(len(s.buf)))
	run := int(s.w - s.r)
	if pos+run > len(s.buf) {
		run = len(s.buf) - pos
	}
	s.inFlight, s.active = run, true
	s.tx.EnableCompleteNotify(true)
	return s.buf[pos : pos+run]
}

func (s *RingSender) dropFull(n int) error {
	s.counters.dropped.Add(1)
	glog.Warningf("send buffer full, drop frame of %d bytes", n)
	return ErrBufferFull
}
