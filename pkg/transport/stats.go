package transport

import "sync/atomic"

// Stats is a snapshot of transport counters.
type Stats struct {
	FramesSent    uint64
	BytesSent     uint64
	DroppedFrames uint64
	EventFrames   uint64
	Desyncs       uint64
	Overwritten   uint64
	Overruns      uint64
}

type senderCounters struct {
	frames  atomic.Uint64
	bytes   atomic.Uint64
	dropped atomic.Uint64
}

func (c *senderCounters) sent(n int) {
	c.frames.Add(1)
	c.bytes.Add(uint64(n))
}

func (c *senderCounters) fill(s *Stats) {
	s.FramesSent = c.frames.Load()
	s.BytesSent = c.bytes.Load()
	s.DroppedFrames = c.dropped.Load()
}
