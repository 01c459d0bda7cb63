package dispatch

import "github.com/robotalks/bluedisplay.go/pkg/protocol"

// TouchFunc is called with the position of a touch event.
type TouchFunc func(pos protocol.TouchInfo)

// SwipeFunc is called when a swipe gesture ends.
type SwipeFunc func(swipe protocol.SwipeInfo)

// SizeFunc is called with the display geometry on connect, redraw and
// reorientation.
type SizeFunc func(size protocol.SizeInfo)

// SensorFunc is called with a sensor sample.
type SensorFunc func(sample protocol.SensorInfo)

// Callbacks is the table of application callbacks, one per event kind.
// Setting a callback replaces the previous one; nil disables dispatching
// of that kind.
type Callbacks struct {
	TouchDown     TouchFunc
	TouchMove     TouchFunc
	TouchUp       TouchFunc
	TouchError    TouchFunc
	LongTouchDown TouchFunc
	Swipe         SwipeFunc
	Connect       SizeFunc
	Redraw        SizeFunc
	Reorientation SizeFunc
	Disconnect    func()
	Sensor        SensorFunc
}
