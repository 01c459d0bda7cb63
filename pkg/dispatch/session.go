package dispatch

import (
	"time"

	"github.com/robotalks/bluedisplay.go/pkg/protocol"
)

// Session is the connection and geometry state reported by the host.
type Session struct {
	// Connected is true between a connection build-up and a disconnect.
	Connected bool
	// Contacted is true after the first connect or reorientation event.
	Contacted bool
	// CanvasSizeReceived is true once the host answered a max canvas size
	// request.
	CanvasSizeReceived bool

	Width     uint16
	Height    uint16
	MaxWidth  uint16
	MaxHeight uint16
	// HostClockOffset is the host local clock minus the device clock.
	HostClockOffset time.Duration
}

// IsLandscape indicates the display is wider than high.
func (s *Session) IsLandscape() bool {
	return s.Width > s.Height
}

func (s *Session) update(size protocol.SizeInfo, now time.Time) {
	if size.Width != 0 && size.Height != 0 {
		s.Width, s.Height = size.Width, size.Height
	}
	if size.MaxWidth != 0 && size.MaxHeight != 0 {
		s.MaxWidth, s.MaxHeight = size.MaxWidth, size.MaxHeight
	}
	if size.Timestamp != 0 {
		host := time.Unix(int64(size.Timestamp), 0)
		s.HostClockOffset = host.Sub(now).Truncate(time.Second)
	}
}

// HostTime converts a device time to host local time.
func (s *Session) HostTime(t time.Time) time.Time {
	return t.Add(s.HostClockOffset)
}
