package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// EventPump is polled by the Loop in the application context.
type EventPump interface {
	// CheckAndHandleEvents dispatches pending events without blocking.
	CheckAndHandleEvents() int
	// Wakeup is signaled when events or timers are pending.
	Wakeup() <-chan struct{}
}

// Task is run by the Loop after events are dispatched.
type Task interface {
	RunTask(Iteration) error
}

// TaskFunc is the func form of Task.
type TaskFunc func(Iteration) error

// RunTask implements Task.
func (f TaskFunc) RunTask(iter Iteration) error {
	return f(iter)
}

// Iteration provides the state of the current loop iteration.
type Iteration interface {
	Context() context.Context
	Time() time.Time
	// Events is the number of events dispatched in this iteration.
	Events() int
	// Post schedules fn to run in the next iteration.
	Post(fn func())
}
