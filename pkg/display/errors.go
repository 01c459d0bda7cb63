package display

import "errors"

var (
	// ErrConnectTimeout indicates the host did not answer in time.
	ErrConnectTimeout = errors.New("connect timeout")
)
