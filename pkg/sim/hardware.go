package sim

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/robotalks/bluedisplay.go/pkg/transport"
)

// UART is a transport.UART writing each byte to Out.
type UART struct {
	Out io.Writer
	// Busy makes TxEmpty report false for the number of polls.
	Busy int

	one [1]byte
}

// TxEmpty implements transport.UART.
func (u *UART) TxEmpty() bool {
	if u.Busy > 0 {
		u.Busy--
		return false
	}
	return true
}

// WriteByte implements transport.UART.
func (u *UART) WriteByte(b byte) error {
	u.one[0] = b
	_, err := u.Out.Write(u.one[:])
	return err
}

// RxInterrupt is an io.Writer raising the RX notification per byte.
type RxInterrupt struct {
	Handler transport.RxHandler
	// Notify is called after each write.
	Notify func()
}

// Write implements io.Writer.
func (r *RxInterrupt) Write(p []byte) (int, error) {
	for _, b := range p {
		r.Handler.HandleRxByte(b)
	}
	if r.Notify != nil {
		r.Notify()
	}
	return len(p), nil
}

// DMA simulates a DMA channel pair. Transfers started on the TX channel
// are written to Out, and bytes written to the DMA are stored into the
// circular receive buffer.
type DMA struct {
	Out io.Writer
	// Complete is the TX completion notification.
	Complete func()
	// Manual defers TX transfers until Step is called.
	Manual bool
	// Notify is called after bytes are received.
	Notify func()

	Buffer []byte

	txLock  sync.Mutex
	notify  bool
	pending [][]byte
	starts  int

	rxLock    sync.Mutex
	rxPos     int
	remaining atomic.Int64
}

// NewDMA creates a DMA with a receive buffer of size bytes.
func NewDMA(out io.Writer, size int) *DMA {
	d := &DMA{Out: out, Buffer: make([]byte, size)}
	d.remaining.Store(int64(size))
	return d
}

// Start implements transport.DMATx.
func (d *DMA) Start(p []byte) {
	d.txLock.Lock()
	d.starts++
	if d.Manual {
		d.pending = append(d.pending, p)
		d.txLock.Unlock()
		return
	}
	d.txLock.Unlock()
	d.transfer(p)
}

// EnableCompleteNotify implements transport.DMATx.
func (d *DMA) EnableCompleteNotify(enable bool) {
	d.txLock.Lock()
	d.notify = enable
	d.txLock.Unlock()
}

// Starts returns the number of started transfers.
func (d *DMA) Starts() int {
	d.txLock.Lock()
	defer d.txLock.Unlock()
	return d.starts
}

// Step completes the oldest deferred transfer. It returns false if none
// is pending.
func (d *DMA) Step() bool {
	d.txLock.Lock()
	if len(d.pending) == 0 {
		d.txLock.Unlock()
		return false
	}
	p := d.pending[0]
	d.pending = d.pending[1:]
	d.txLock.Unlock()
	d.transfer(p)
	return true
}

func (d *DMA) transfer(p []byte) {
	if d.Out != nil {
		d.Out.Write(p)
	}
	d.txLock.Lock()
	notify := d.notify
	d.txLock.Unlock()
	if notify && d.Complete != nil {
		d.Complete()
	}
}

// Remaining implements transport.DMARx.
func (d *DMA) Remaining() int {
	return int(d.remaining.Load())
}

// Write implements io.Writer, receiving bytes into the circular buffer.
func (d *DMA) Write(p []byte) (int, error) {
	d.rxLock.Lock()
	for _, b := range p {
		d.Buffer[d.rxPos] = b
		if d.rxPos++; d.rxPos >= len(d.Buffer) {
			d.rxPos = 0
		}
	}
	d.remaining.Store(int64(len(d.Buffer) - d.rxPos))
	d.rxLock.Unlock()
	if d.Notify != nil {
		d.Notify()
	}
	return len(p), nil
}
