package bridge

import (
	"io"
	"sync"
)

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// Stream adapts a PacketReadWriter to a byte stream. Packet boundaries
// are not preserved: a Read may return part of a packet, and each Write
// becomes one packet.
type Stream struct {
	Packets PacketReadWriter

	readLock sync.Mutex
	pending  []byte
}

// NewStream creates a Stream.
func NewStream(rw PacketReadWriter) *Stream {
	return &Stream{Packets: rw}
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	s.readLock.Lock()
	defer s.readLock.Unlock()
	for len(s.pending) == 0 {
		pkt, err := s.Packets.ReadPacket()
		if err != nil {
			return 0, err
		}
		s.pending = pkt
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// Write implements io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	pkt := append([]byte(nil), p...)
	if err := s.Packets.WritePacket(pkt); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close closes the underlying packet transport if it is an io.Closer.
func (s *Stream) Close() error {
	if closer, ok := s.Packets.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
