package transport

import (
	"bufio"
	"context"
	"io"

	"github.com/golang/glog"
)

// StreamUART adapts an io.Writer (serial port, socket) to UART.
// Bytes are buffered and flushed at the end of each frame.
type StreamUART struct {
	w *bufio.Writer
}

// NewStreamUART creates a StreamUART.
func NewStreamUART(w io.Writer) *StreamUART {
	return &StreamUART{w: bufio.NewWriter(w)}
}

// TxEmpty implements UART.
func (u *StreamUART) TxEmpty() bool {
	return true
}

// WriteByte implements UART.
func (u *StreamUART) WriteByte(b byte) error {
	return u.w.WriteByte(b)
}

// Flush implements Flusher.
func (u *StreamUART) Flush() error {
	return u.w.Flush()
}

// StreamDriver reads an io.Reader and feeds the received bytes to an
// RxHandler, playing the role of the RX interrupt.
type StreamDriver struct {
	Reader  io.Reader
	Handler RxHandler
	// Notify is called after each chunk of bytes is handled.
	Notify func()
	// BufSize is the read chunk size.
	BufSize int
}

// NewStreamDriver creates a StreamDriver.
func NewStreamDriver(r io.Reader, h RxHandler) *StreamDriver {
	return &StreamDriver{Reader: r, Handler: h, BufSize: 64}
}

// Run reads until the context is done or the reader fails.
func (d *StreamDriver) Run(ctx context.Context) error {
	size := d.BufSize
	if size <= 0 {
		size = 64
	}
	errCh := make(chan error, 1)
	go func() {
		buf := make([]byte, size)
		for {
			n, err := d.Reader.Read(buf)
			for _, b := range buf[:n] {
				d.Handler.HandleRxByte(b)
			}
			if n > 0 && d.Notify != nil {
				d.Notify()
			}
			if err != nil {
				errCh <- err
				return
			}
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			default:
			}
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if err == io.EOF {
			glog.Info("stream closed")
		} else if err != context.Canceled {
			glog.Errorf("stream read error: %v", err)
		}
		return err
	}
}
