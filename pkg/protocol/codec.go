package protocol

import (
	"encoding/binary"
	"math"
)

// TooManyArgsHook is called when a command with more than MaxArgs
// arguments is dropped. It is nil by default and meant for debug builds.
var TooManyArgsHook func(fn FunctionID, numArgs int)

// CommandSize returns the encoded size of a command.
func CommandSize(numArgs int, payloadLen int, withPayload bool) int {
	n := CommandHeaderSize + numArgs*2
	if withPayload {
		n += CommandHeaderSize + payloadLen
	}
	return n
}

// AppendFrame appends an encoded command to dst.
// If there are more than MaxArgs arguments, dst is returned unchanged
// together with ErrTooManyArgs.
func AppendFrame(dst []byte, fn FunctionID, args ...uint16) ([]byte, error) {
	if len(args) > MaxArgs {
		if hook := TooManyArgsHook; hook != nil {
			hook(fn, len(args))
		}
		return dst, ErrTooManyArgs
	}
	dst = append(dst, SyncToken, byte(fn), 0, 0)
	binary.LittleEndian.PutUint16(dst[len(dst)-2:], uint16(len(args)*2))
	for _, arg := range args {
		dst = append(dst, byte(arg), byte(arg>>8))
	}
	return dst, nil
}

// AppendFrameWithPayload appends a command followed by its data field.
// A payload longer than MaxDataFieldSize returns dst unchanged together
// with ErrPayloadTooLarge.
func AppendFrameWithPayload(dst []byte, fn FunctionID, args []uint16, payload []byte) ([]byte, error) {
	if len(payload) > MaxDataFieldSize {
		return dst, ErrPayloadTooLarge
	}
	dst, err := AppendFrame(dst, fn, args...)
	if err != nil {
		return dst, err
	}
	dst = append(dst, SyncToken, DataFieldTag, byte(len(payload)), byte(len(payload)>>8))
	return append(dst, payload...), nil
}

// EncodeFrame encodes a command.
func EncodeFrame(fn FunctionID, args ...uint16) ([]byte, error) {
	b, err := AppendFrame(make([]byte, 0, CommandSize(len(args), 0, false)), fn, args...)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// EncodeFrameWithPayload encodes a command with a data field.
// The payload length is only limited by the 16-bit length field.
func EncodeFrameWithPayload(fn FunctionID, args []uint16, payload []byte) ([]byte, error) {
	b, err := AppendFrameWithPayload(make([]byte, 0, CommandSize(len(args), len(payload), true)), fn, args, payload)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// DecodeFrame decodes the parts of an event frame into an Event.
func DecodeFrame(rawLen, kind byte, payload []byte, trailer byte) (ev Event, err error) {
	ev = NewEvent()
	if trailer != SyncToken {
		return ev, desync("trailer 0x%02x", trailer)
	}
	if rawLen < EventOverhead {
		return ev, desync("length %d", rawLen)
	}
	size := int(rawLen) - EventOverhead
	if size > MaxPayloadSize {
		return ev, desync("payload size %d exceeds %d", size, MaxPayloadSize)
	}
	if len(payload) != size {
		return ev, short("payload %d of %d bytes", len(payload), size)
	}
	ev.Kind = EventKind(kind)
	if ev.Kind == EventNone {
		return NewEvent(), desync("reserved kind %s", ev.Kind)
	}
	if need := ev.Kind.payloadSize(); need > size {
		return NewEvent(), desync("%s payload size %d, need %d", EventKind(kind), size, need)
	}
	ev.rawLen = uint8(copy(ev.raw[:], payload))
	ev.decodePayload(payload)
	return ev, nil
}

// DecodeEventFrame decodes an event frame at the beginning of b and
// returns the number of bytes consumed.
func DecodeEventFrame(b []byte) (Event, int, error) {
	if len(b) < EventOverhead {
		return NewEvent(), 0, short("%d bytes", len(b))
	}
	n := int(b[0])
	if n < EventOverhead || n-EventOverhead > MaxPayloadSize {
		return NewEvent(), 0, desync("length %d", b[0])
	}
	if len(b) < n {
		return NewEvent(), 0, short("%d of %d bytes", len(b), n)
	}
	ev, err := DecodeFrame(b[0], b[1], b[2:n-1], b[n-1])
	return ev, n, err
}

func (e *Event) decodePayload(p []byte) {
	le := binary.LittleEndian
	switch k := e.Kind; {
	case k.IsTouch() || k == EventLongTouchDownCallback:
		e.Touch = TouchInfo{X: le.Uint16(p), Y: le.Uint16(p[2:]), PointerID: p[4]}
	case k == EventSwipeCallback:
		e.Swipe = SwipeInfo{
			MainDirectionIsX: p[0] != 0,
			StartX:           le.Uint16(p[2:]),
			StartY:           le.Uint16(p[4:]),
			DeltaX:           int16(le.Uint16(p[6:])),
			DeltaY:           int16(le.Uint16(p[8:])),
			DeltaAbsMax:      le.Uint16(p[10:]),
		}
	case k.IsCallback():
		e.Callback = CallbackInfo{
			ObjectIndex: le.Uint16(p),
			Handler:     HandlerRef(le.Uint32(p[4:])),
		}
		if k == EventInfoCallback {
			e.Info = InfoData{
				SubFunction: p[8],
				ByteInfo:    p[9],
				ShortInfo:   le.Uint16(p[10:]),
				LongInfo:    le.Uint64(p[12:]),
			}
		} else {
			e.Callback.Value = le.Uint32(p[8:])
		}
	case k.IsSize():
		e.Size = SizeInfo{
			Width:     le.Uint16(p),
			Height:    le.Uint16(p[2:]),
			MaxWidth:  le.Uint16(p[4:]),
			MaxHeight: le.Uint16(p[6:]),
			Timestamp: le.Uint32(p[8:]),
		}
	case k.IsSensor():
		e.Sensor.Type = k.SensorType()
		for i := range e.Sensor.Values {
			e.Sensor.Values[i] = math.Float32frombits(le.Uint32(p[i*4:]))
		}
	}
}

// EncodeEvent encodes an event frame as the host sends it.
// Kinds without a known layout are encoded with the raw payload of the event.
func EncodeEvent(ev Event) []byte {
	var p []byte
	le := binary.LittleEndian
	switch k := ev.Kind; {
	case k.IsTouch() || k == EventLongTouchDownCallback:
		p = make([]byte, touchSize)
		le.PutUint16(p, ev.Touch.X)
		le.PutUint16(p[2:], ev.Touch.Y)
		p[4] = ev.Touch.PointerID
	case k == EventSwipeCallback:
		p = make([]byte, swipeSize)
		if ev.Swipe.MainDirectionIsX {
			p[0] = 1
		}
		le.PutUint16(p[2:], ev.Swipe.StartX)
		le.PutUint16(p[4:], ev.Swipe.StartY)
		le.PutUint16(p[6:], uint16(ev.Swipe.DeltaX))
		le.PutUint16(p[8:], uint16(ev.Swipe.DeltaY))
		le.PutUint16(p[10:], ev.Swipe.DeltaAbsMax)
	case k.IsCallback():
		if k == EventInfoCallback {
			p = make([]byte, infoSize)
			p[8], p[9] = ev.Info.SubFunction, ev.Info.ByteInfo
			le.PutUint16(p[10:], ev.Info.ShortInfo)
			le.PutUint64(p[12:], ev.Info.LongInfo)
		} else {
			p = make([]byte, callbackSize)
			le.PutUint32(p[8:], ev.Callback.Value)
		}
		le.PutUint16(p, ev.Callback.ObjectIndex)
		le.PutUint32(p[4:], uint32(ev.Callback.Handler))
	case k.IsSize():
		p = make([]byte, sizeSize)
		le.PutUint16(p, ev.Size.Width)
		le.PutUint16(p[2:], ev.Size.Height)
		le.PutUint16(p[4:], ev.Size.MaxWidth)
		le.PutUint16(p[6:], ev.Size.MaxHeight)
		le.PutUint32(p[8:], ev.Size.Timestamp)
	case k.IsSensor():
		p = make([]byte, sensorSize)
		for i, v := range ev.Sensor.Values {
			le.PutUint32(p[i*4:], math.Float32bits(v))
		}
	default:
		p = ev.Payload()
	}
	b := make([]byte, 0, len(p)+EventOverhead)
	b = append(b, byte(len(p)+EventOverhead), byte(ev.Kind))
	b = append(b, p...)
	return append(b, SyncToken)
}
