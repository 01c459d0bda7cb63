package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManyArgs indicates a command has more than MaxArgs arguments.
	// The frame is dropped.
	ErrTooManyArgs = errors.New("too many arguments")
	// ErrPayloadTooLarge indicates a data field does not fit the 16-bit
	// length field. The frame is dropped.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrDesync indicates the framing of an event is inconsistent.
	ErrDesync = errors.New("frame desync")
	// ErrShortFrame indicates the bytes end before the frame is complete.
	ErrShortFrame = errors.New("short frame")
)

// FrameError wraps errors from decoding a frame.
type FrameError struct {
	Err    error
	Reason string
}

// Error implements error.
func (e *FrameError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Reason)
}

// Unwrap returns the sentinel error.
func (e *FrameError) Unwrap() error {
	return e.Err
}

func desync(format string, args ...interface{}) error {
	return &FrameError{Err: ErrDesync, Reason: fmt.Sprintf(format, args...)}
}

func short(format string, args ...interface{}) error {
	return &FrameError{Err: ErrShortFrame, Reason: fmt.Sprintf(format, args...)}
}
