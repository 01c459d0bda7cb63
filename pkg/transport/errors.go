package transport

import "errors"

var (
	// ErrNotReady indicates the link is not paired and the frame is dropped.
	ErrNotReady = errors.New("link not ready")
	// ErrBufferFull indicates the send ring had no room before the timeout
	// and the frame is dropped.
	ErrBufferFull = errors.New("send buffer full")
	// ErrFrameTooLarge indicates the frame can never fit in the send ring.
	ErrFrameTooLarge = errors.New("frame larger than send buffer")
)
