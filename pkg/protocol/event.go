package protocol

import (
	"fmt"
	"math"
)

// EventKind is the tag of an event frame.
type EventKind byte

// Event kinds.
const (
	EventTouchDown             EventKind = 0x00
	EventTouchUp               EventKind = 0x01
	EventTouchMove             EventKind = 0x02
	EventConnectionBuildUp     EventKind = 0x10
	EventRedraw                EventKind = 0x11
	EventReorientation         EventKind = 0x12
	EventDisconnect            EventKind = 0x14
	EventButtonCallback        EventKind = 0x20
	EventSliderCallback        EventKind = 0x21
	EventSwipeCallback         EventKind = 0x22
	EventLongTouchDownCallback EventKind = 0x23
	EventNumberCallback        EventKind = 0x28
	EventInfoCallback          EventKind = 0x29
	EventRequestedCanvasSize   EventKind = 0x60
	EventFirstSensor           EventKind = 0x70
	EventLastSensor            EventKind = 0x7F
	EventNone                  EventKind = 0xFE
	EventTouchError            EventKind = 0xFF
)

var eventKindNames = map[EventKind]string{
	EventTouchDown:             "touch-down",
	EventTouchUp:               "touch-up",
	EventTouchMove:             "touch-move",
	EventConnectionBuildUp:     "connection-build-up",
	EventRedraw:                "redraw",
	EventReorientation:         "reorientation",
	EventDisconnect:            "disconnect",
	EventButtonCallback:        "button",
	EventSliderCallback:        "slider",
	EventSwipeCallback:         "swipe",
	EventLongTouchDownCallback: "long-touch-down",
	EventNumberCallback:        "number",
	EventInfoCallback:          "info",
	EventRequestedCanvasSize:   "canvas-size",
	EventNone:                  "none",
	EventTouchError:            "touch-error",
}

// String implements fmt.Stringer.
func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	if k.IsSensor() {
		return fmt.Sprintf("sensor-%d", k.SensorType())
	}
	return fmt.Sprintf("kind-0x%02x", byte(k))
}

// IsSensor indicates the kind carries a sensor sample.
func (k EventKind) IsSensor() bool {
	return k >= EventFirstSensor && k <= EventLastSensor
}

// SensorType returns the sensor type of a sensor kind.
func (k EventKind) SensorType() SensorType {
	return SensorType(k - EventFirstSensor)
}

// SensorEventKind returns the event kind of samples from a sensor type.
func SensorEventKind(t SensorType) EventKind {
	return EventFirstSensor + EventKind(t)
}

// IsTouch indicates a basic touch event.
func (k EventKind) IsTouch() bool {
	return k == EventTouchDown || k == EventTouchUp || k == EventTouchMove || k == EventTouchError
}

// IsCallback indicates the event carries a handler reference.
func (k EventKind) IsCallback() bool {
	switch k {
	case EventButtonCallback, EventSliderCallback, EventNumberCallback, EventInfoCallback:
		return true
	}
	return false
}

// IsSize indicates the event carries display size and host time.
func (k EventKind) IsSize() bool {
	switch k {
	case EventConnectionBuildUp, EventRedraw, EventReorientation, EventRequestedCanvasSize:
		return true
	}
	return false
}

// payloadSize returns the minimum payload size for a kind,
// or -1 if the kind carries opaque data.
func (k EventKind) payloadSize() int {
	switch {
	case k.IsTouch():
		return touchSize
	case k == EventSwipeCallback:
		return swipeSize
	case k == EventLongTouchDownCallback:
		return touchSize
	case k == EventInfoCallback:
		return infoSize
	case k.IsCallback():
		return callbackSize
	case k.IsSize():
		return sizeSize
	case k.IsSensor():
		return sensorSize
	case k == EventDisconnect || k == EventNone:
		return 0
	}
	return -1
}

const (
	touchSize    = 5
	swipeSize    = 12
	callbackSize = 12
	infoSize     = 20
	sizeSize     = 12
	sensorSize   = 12
)

// HandlerRef is the opaque reference to a handler registered on the device.
// The host echoes it back in callback events.
type HandlerRef uint32

// TouchInfo is the position of a touch.
type TouchInfo struct {
	X         uint16
	Y         uint16
	PointerID uint8
}

// SwipeInfo describes a swipe gesture.
type SwipeInfo struct {
	MainDirectionIsX bool
	StartX           uint16
	StartY           uint16
	DeltaX           int16
	DeltaY           int16
	DeltaAbsMax      uint16
}

// CallbackInfo is the payload of a widget callback.
type CallbackInfo struct {
	ObjectIndex uint16
	Handler     HandlerRef
	Value       uint32
}

// Int returns the value as a signed integer.
func (c CallbackInfo) Int() int32 {
	return int32(c.Value)
}

// Float returns the value as a float.
func (c CallbackInfo) Float() float32 {
	return math.Float32frombits(c.Value)
}

// InfoData is the extra payload of an info callback.
type InfoData struct {
	SubFunction uint8
	ByteInfo    uint8
	ShortInfo   uint16
	LongInfo    uint64
}

// LongInfoUint32 splits LongInfo into two 32-bit values.
func (d InfoData) LongInfoUint32() (lo, hi uint32) {
	return uint32(d.LongInfo), uint32(d.LongInfo >> 32)
}

// LongInfoFloat32 splits LongInfo into two floats.
func (d InfoData) LongInfoFloat32() (lo, hi float32) {
	l, h := d.LongInfoUint32()
	return math.Float32frombits(l), math.Float32frombits(h)
}

// SizeInfo is the display geometry reported by the host.
type SizeInfo struct {
	Width     uint16
	Height    uint16
	MaxWidth  uint16
	MaxHeight uint16
	// Timestamp is the host local time in seconds since epoch.
	Timestamp uint32
}

// SensorInfo is one sensor sample.
type SensorInfo struct {
	Type   SensorType
	Values [3]float32
}

// Event is one decoded event frame.
// Only the fields matching Kind are meaningful.
type Event struct {
	Kind     EventKind
	Touch    TouchInfo
	Swipe    SwipeInfo
	Callback CallbackInfo
	Info     InfoData
	Size     SizeInfo
	Sensor   SensorInfo

	raw    [MaxPayloadSize]byte
	rawLen uint8
}

// NewEvent creates an empty event.
func NewEvent() Event {
	return Event{Kind: EventNone}
}

// IsNone indicates the event slot is free.
func (e *Event) IsNone() bool {
	return e.Kind == EventNone
}

// Reset clears the event and marks it free.
func (e *Event) Reset() {
	*e = Event{Kind: EventNone}
}

// Payload returns the raw payload the event was decoded from.
func (e *Event) Payload() []byte {
	return e.raw[:e.rawLen]
}

// String implements fmt.Stringer.
func (e Event) String() string {
	switch {
	case e.Kind.IsTouch() || e.Kind == EventLongTouchDownCallback:
		return fmt.Sprintf("%s (%d,%d)", e.Kind, e.Touch.X, e.Touch.Y)
	case e.Kind == EventSwipeCallback:
		return fmt.Sprintf("%s x=%v (%d,%d)", e.Kind, e.Swipe.MainDirectionIsX, e.Swipe.DeltaX, e.Swipe.DeltaY)
	case e.Kind.IsCallback():
		return fmt.Sprintf("%s #%d %d", e.Kind, e.Callback.ObjectIndex, e.Callback.Value)
	case e.Kind.IsSize():
		return fmt.Sprintf("%s %dx%d", e.Kind, e.Size.Width, e.Size.Height)
	case e.Kind.IsSensor():
		return fmt.Sprintf("%s %v", e.Kind, e.Sensor.Values)
	}
	return e.Kind.String()
}
