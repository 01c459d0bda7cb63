package protocol

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeFrame(t *testing.T) {
	b, err := EncodeFrame(5, 100, 200, 300)
	require.NoError(t, err)
	require.Equal(t, []byte{SyncToken, 5, 6, 0, 100, 0, 200, 0, 44, 1}, b)

	cmd, n, err := ParseCommand(b)
	require.NoError(t, err)
	require.Equal(t, len(b), n)
	require.Equal(t, FunctionID(5), cmd.Function)
	require.Equal(t, []uint16{100, 200, 300}, cmd.Args)
	require.False(t, cmd.HasPayload)
}

func TestEncodeFrameNoArgs(t *testing.T) {
	b, err := EncodeFrame(FunctionClearDisplay)
	require.NoError(t, err)
	require.Equal(t, []byte{SyncToken, 0x10, 0, 0}, b)
}

func TestEncodeFrameTooManyArgs(t *testing.T) {
	var hooked []int
	TooManyArgsHook = func(fn FunctionID, n int) {
		hooked = append(hooked, int(fn), n)
	}
	defer func() { TooManyArgsHook = nil }()

	args := make([]uint16, MaxArgs+1)
	b, err := EncodeFrame(7, args...)
	require.Equal(t, ErrTooManyArgs, err)
	require.Nil(t, b)
	require.Equal(t, []int{7, MaxArgs + 1}, hooked)

	dst := []byte{1, 2}
	out, err := AppendFrame(dst, 7, args...)
	require.Equal(t, ErrTooManyArgs, err)
	require.Equal(t, dst, out)

	b, err = EncodeFrame(7, args[:MaxArgs]...)
	require.NoError(t, err)
	require.Len(t, b, CommandHeaderSize+MaxArgs*2)
}

func TestEncodeFrameWithPayload(t *testing.T) {
	b, err := EncodeFrameWithPayload(FunctionDrawString, []uint16{1, 2}, []byte("hi"))
	require.NoError(t, err)
	require.Equal(t, []byte{
		SyncToken, 0x60, 4, 0, 1, 0, 2, 0,
		SyncToken, DataFieldTag, 2, 0, 'h', 'i',
	}, b)
}

func TestEncodeFrameWithPayloadTooLarge(t *testing.T) {
	b, err := EncodeFrameWithPayload(FunctionDrawString, []uint16{1}, make([]byte, MaxDataFieldSize+1))
	require.True(t, errorIs(err, ErrPayloadTooLarge), "got %v", err)
	require.Nil(t, b)

	dst := []byte{1, 2}
	dst, err = AppendFrameWithPayload(dst, FunctionDrawString, nil, make([]byte, MaxDataFieldSize+1))
	require.Error(t, err)
	require.Equal(t, []byte{1, 2}, dst)

	b, err = EncodeFrameWithPayload(FunctionDrawString, nil, make([]byte, MaxDataFieldSize))
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xFF}, b[CommandHeaderSize+2:CommandHeaderSize*2])
}

func TestCommandRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for numArgs := 0; numArgs <= MaxArgs; numArgs++ {
		for _, payloadLen := range []int{-1, 0, 1, 17, 300} {
			args := make([]uint16, numArgs)
			for i := range args {
				args[i] = uint16(rnd.Intn(math.MaxUint16 + 1))
			}
			fn := FunctionID(rnd.Intn(256))
			var b []byte
			var payload []byte
			var err error
			if payloadLen < 0 {
				fn &= 0x3f
				b, err = EncodeFrame(fn, args...)
			} else {
				payload = make([]byte, payloadLen)
				rnd.Read(payload)
				b, err = EncodeFrameWithPayload(fn, args, payload)
			}
			require.NoError(t, err)
			cmd, n, err := ParseCommand(b)
			require.NoErrorf(t, err, "args=%d payload=%d", numArgs, payloadLen)
			require.Equal(t, len(b), n)
			require.Equal(t, fn, cmd.Function)
			require.Equal(t, args, cmd.Args)
			require.Equal(t, payloadLen >= 0, cmd.HasPayload)
			if payloadLen > 0 {
				require.Equal(t, payload, cmd.Payload)
			} else {
				require.Empty(t, cmd.Payload)
			}
		}
	}
}

func TestParseCommandErrors(t *testing.T) {
	testCases := []struct {
		name string
		in   []byte
		err  error
	}{
		{"empty", nil, ErrShortFrame},
		{"no sync", []byte{0x00, 1, 0, 0}, ErrDesync},
		{"odd args", []byte{SyncToken, 1, 3, 0, 0, 0, 0}, ErrDesync},
		{"too many args", []byte{SyncToken, 1, 26, 0}, ErrDesync},
		{"truncated args", []byte{SyncToken, 1, 4, 0, 1, 0}, ErrShortFrame},
		{"missing data", []byte{SyncToken, 0x60, 0, 0}, ErrShortFrame},
		{"bad data tag", []byte{SyncToken, 0x60, 0, 0, SyncToken, 0x61, 0, 0}, ErrDesync},
		{"truncated data", []byte{SyncToken, 0x60, 0, 0, SyncToken, DataFieldTag, 3, 0, 1}, ErrShortFrame},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ParseCommand(tc.in)
			require.True(t, errorIs(err, tc.err), "got %v", err)
		})
	}
}

func TestDecodeFrame(t *testing.T) {
	ev, err := DecodeFrame(8, byte(EventTouchDown), []byte{10, 0, 20, 0, 1}, SyncToken)
	require.NoError(t, err)
	require.Equal(t, EventTouchDown, ev.Kind)
	require.Equal(t, TouchInfo{X: 10, Y: 20, PointerID: 1}, ev.Touch)
	require.Equal(t, []byte{10, 0, 20, 0, 1}, ev.Payload())

	ev, err = DecodeFrame(3, byte(EventDisconnect), nil, SyncToken)
	require.NoError(t, err)
	require.Equal(t, EventDisconnect, ev.Kind)
	require.Empty(t, ev.Payload())
}

func TestDecodeFrameErrors(t *testing.T) {
	testCases := []struct {
		name    string
		rawLen  byte
		kind    EventKind
		payload []byte
		trailer byte
		err     error
	}{
		{"bad trailer", 8, EventTouchDown, make([]byte, 5), 0x00, ErrDesync},
		{"length too small", 2, EventDisconnect, nil, SyncToken, ErrDesync},
		{"length too large", MaxPayloadSize + 4, EventInfoCallback, make([]byte, MaxPayloadSize+1), SyncToken, ErrDesync},
		{"payload mismatch", 8, EventTouchDown, make([]byte, 4), SyncToken, ErrShortFrame},
		{"payload too small for kind", 5, EventTouchDown, make([]byte, 2), SyncToken, ErrDesync},
		{"reserved none kind", 3, EventNone, nil, SyncToken, ErrDesync},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := DecodeFrame(tc.rawLen, byte(tc.kind), tc.payload, tc.trailer)
			require.True(t, errorIs(err, tc.err), "got %v", err)
			require.True(t, ev.IsNone())
		})
	}
}

func TestEventRoundTrip(t *testing.T) {
	events := []Event{
		{Kind: EventTouchDown, Touch: TouchInfo{X: 1, Y: 2, PointerID: 3}},
		{Kind: EventTouchMove, Touch: TouchInfo{X: 640, Y: 480}},
		{Kind: EventTouchUp, Touch: TouchInfo{X: 0xffff, Y: 0}},
		{Kind: EventLongTouchDownCallback, Touch: TouchInfo{X: 100, Y: 200}},
		{Kind: EventSwipeCallback, Swipe: SwipeInfo{MainDirectionIsX: true, StartX: 5, StartY: 6, DeltaX: -50, DeltaY: 3, DeltaAbsMax: 50}},
		{Kind: EventButtonCallback, Callback: CallbackInfo{ObjectIndex: 3, Handler: 0x1234, Value: 1}},
		{Kind: EventSliderCallback, Callback: CallbackInfo{ObjectIndex: 4, Handler: 9, Value: 77}},
		{Kind: EventNumberCallback, Callback: CallbackInfo{Handler: 2, Value: math.Float32bits(3.5)}},
		{Kind: EventInfoCallback, Callback: CallbackInfo{ObjectIndex: 1, Handler: 5}, Info: InfoData{SubFunction: 2, ByteInfo: 3, ShortInfo: 4, LongInfo: 0x1122334455667788}},
		{Kind: EventConnectionBuildUp, Size: SizeInfo{Width: 1920, Height: 1080, MaxWidth: 1920, MaxHeight: 1200, Timestamp: 1700000000}},
		{Kind: EventRequestedCanvasSize, Size: SizeInfo{Width: 320, Height: 240}},
		{Kind: SensorEventKind(SensorAccelerometer), Sensor: SensorInfo{Type: SensorAccelerometer, Values: [3]float32{1, -2.5, 9.81}}},
		{Kind: EventDisconnect},
	}
	for _, ev := range events {
		t.Run(ev.Kind.String(), func(t *testing.T) {
			b := EncodeEvent(ev)
			require.Equal(t, SyncToken, b[len(b)-1])
			decoded, n, err := DecodeEventFrame(b)
			require.NoError(t, err)
			require.Equal(t, len(b), n)
			decoded.rawLen = 0
			decoded.raw = [MaxPayloadSize]byte{}
			require.Equal(t, ev, decoded)
		})
	}
}

func TestCallbackInfoValues(t *testing.T) {
	c := CallbackInfo{Value: math.Float32bits(-1.25)}
	require.Equal(t, float32(-1.25), c.Float())
	c.Value = 0xffffffff
	require.Equal(t, int32(-1), c.Int())

	d := InfoData{LongInfo: uint64(math.Float32bits(2)) | uint64(math.Float32bits(4))<<32}
	lo, hi := d.LongInfoFloat32()
	require.Equal(t, float32(2), lo)
	require.Equal(t, float32(4), hi)
}

func TestEventKind(t *testing.T) {
	require.True(t, EventFirstSensor.IsSensor())
	require.True(t, EventLastSensor.IsSensor())
	require.False(t, EventNone.IsSensor())
	require.Equal(t, SensorGyroscope, SensorEventKind(SensorGyroscope).SensorType())
	require.Equal(t, "sensor-1", SensorEventKind(SensorAccelerometer).String())
	require.Equal(t, "touch-down", EventTouchDown.String())
	require.Equal(t, "kind-0x55", EventKind(0x55).String())
	require.True(t, EventSliderCallback.IsCallback())
	require.False(t, EventSwipeCallback.IsCallback())
	require.True(t, EventRedraw.IsSize())

	ev := NewEvent()
	require.True(t, ev.IsNone())
	ev.Kind = EventRedraw
	ev.Reset()
	require.True(t, ev.IsNone())
}
