package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bluedisplay.go/pkg/protocol"
)

type fakeUART struct {
	out      []byte
	busy     int
	spins    int
	flushes  int
	writeErr error
}

func (u *fakeUART) TxEmpty() bool {
	if u.busy > 0 {
		u.busy--
		u.spins++
		return false
	}
	return true
}

func (u *fakeUART) WriteByte(b byte) error {
	if u.writeErr != nil {
		return u.writeErr
	}
	u.out = append(u.out, b)
	u.busy = 2
	return nil
}

func (u *fakeUART) Flush() error {
	u.flushes++
	return nil
}

func TestBlockingSender(t *testing.T) {
	u := &fakeUART{}
	s := NewBlockingSender(u)
	frame, err := protocol.EncodeFrame(5, 100, 200, 300)
	require.NoError(t, err)
	require.NoError(t, s.Send(frame))
	require.Equal(t, frame, u.out)
	require.Equal(t, 2*(len(frame)-1), u.spins)
	require.Equal(t, 1, u.flushes)
}

func TestBlockingSenderNotReady(t *testing.T) {
	u := &fakeUART{}
	s := NewBlockingSender(u)
	s.Link = NewLinkState(false)
	require.Equal(t, ErrNotReady, s.Send([]byte{1, 2}))
	require.Empty(t, u.out)
}

func TestBlockingSenderWriteError(t *testing.T) {
	u := &fakeUART{writeErr: errors.New("broken")}
	s := NewBlockingSender(u)
	require.EqualError(t, s.Send([]byte{1}), "broken")
	var stats Stats
	s.counters.fill(&stats)
	require.EqualValues(t, 1, stats.DroppedFrames)
	require.Zero(t, stats.FramesSent)
}

func TestSerialBackend(t *testing.T) {
	u := &fakeUART{}
	b := NewSerialBackend(u, nil)
	for _, c := range touchFrame(protocol.EventTouchDown, 1, 2) {
		b.HandleRxByte(c)
	}
	events := pollEvents(b)
	require.Len(t, events, 1)
	require.Equal(t, protocol.EventTouchDown, events[0].Kind)

	src := SliceSource(touchFrame(protocol.EventTouchUp, 1, 2))
	b.HandleRx(&src)
	events = pollEvents(b)
	require.Len(t, events, 1)
	require.Equal(t, protocol.EventTouchUp, events[0].Kind)
	require.Zero(t, b.Slots.Pending())
	require.EqualValues(t, 2, b.Stats().EventFrames)
}

func TestStreamUART(t *testing.T) {
	var buf bytes.Buffer
	s := NewBlockingSender(NewStreamUART(&buf))
	require.NoError(t, s.Send([]byte{1, 2, 3}))
	require.Equal(t, []byte{1, 2, 3}, buf.Bytes())
}

func TestStreamDriver(t *testing.T) {
	r := NewInterruptReceiver()
	var stream []byte
	// the touch down lands in its own slot while the up is pending.
	stream = append(stream, touchFrame(protocol.EventTouchUp, 1, 2)...)
	stream = append(stream, touchFrame(protocol.EventTouchDown, 7, 8)...)
	notified := 0
	d := NewStreamDriver(bytes.NewReader(stream), r)
	d.BufSize = 3
	d.Notify = func() { notified++ }
	err := d.Run(context.Background())
	require.Equal(t, io.EOF, err)
	require.True(t, notified > 0)
	events := pollEvents(r)
	require.Len(t, events, 2)
	require.Equal(t, protocol.EventTouchUp, events[0].Kind)
	require.Equal(t, protocol.EventTouchDown, events[1].Kind)
	require.Equal(t, protocol.TouchInfo{X: 7, Y: 8}, events[1].Touch)
}

type blockingReader struct {
	ch chan []byte
}

func (r *blockingReader) Read(p []byte) (int, error) {
	b := <-r.ch
	return copy(p, b), nil
}

func TestStreamDriverCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewStreamDriver(&blockingReader{ch: make(chan []byte)}, NewInterruptReceiver())
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()
	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}
