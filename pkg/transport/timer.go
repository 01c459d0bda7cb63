package transport

import "time"

// Stopper cancels a scheduled func.
type Stopper interface {
	Stop() bool
}

// Timer is the timing facility of the transport. Scheduled funcs run in
// the notification context.
type Timer interface {
	AfterFunc(d time.Duration, fn func()) Stopper
}

// SystemTimer implements Timer with time.AfterFunc.
type SystemTimer struct{}

// AfterFunc implements Timer.
func (SystemTimer) AfterFunc(d time.Duration, fn func()) Stopper {
	return time.AfterFunc(d, fn)
}
