package bridge

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type chanPackets struct {
	in  chan []byte
	out [][]byte
}

func (c *chanPackets) ReadPacket() ([]byte, error) {
	pkt, ok := <-c.in
	if !ok {
		return nil, io.EOF
	}
	return pkt, nil
}

func (c *chanPackets) WritePacket(pkt []byte) error {
	c.out = append(c.out, pkt)
	return nil
}

func TestStreamRead(t *testing.T) {
	pkts := &chanPackets{in: make(chan []byte, 3)}
	pkts.in <- []byte{1, 2, 3}
	pkts.in <- nil
	pkts.in <- []byte{4}
	close(pkts.in)
	s := NewStream(pkts)

	buf := make([]byte, 2)
	n, err := s.Read(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, buf[:n])
	n, err = s.Read(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{3}, buf[:n])
	// empty packets are skipped
	n, err = s.Read(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{4}, buf[:n])
	_, err = s.Read(buf)
	require.Equal(t, io.EOF, err)
}

func TestStreamWrite(t *testing.T) {
	pkts := &chanPackets{}
	s := NewStream(pkts)
	data := []byte{0xA5, 0x10}
	n, err := s.Write(data)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	data[0] = 0
	require.Equal(t, [][]byte{{0xA5, 0x10}}, pkts.out)
	n, err = s.Write(nil)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Len(t, pkts.out, 1)
	require.NoError(t, s.Close())
}
