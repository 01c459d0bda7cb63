package framework

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the default polling interval of the Loop.
const DefaultInterval = 20 * time.Millisecond

// Loop is the application context. It polls an EventPump periodically or
// when woken up, and runs the tasks after each poll. Funcs posted from
// other goroutines run inside the loop.
type Loop struct {
	Pump     EventPump
	Interval time.Duration

	tasks   []Task
	runners []Runnable

	lock   sync.Mutex
	posted []func()
	postCh chan struct{}
}

type iteration struct {
	loop   *Loop
	ctx    context.Context
	time   time.Time
	events int
}

// NewLoop creates a Loop polling pump.
func NewLoop(pump EventPump) *Loop {
	return &Loop{
		Pump:     pump,
		Interval: DefaultInterval,
		postCh:   make(chan struct{}, 1),
	}
}

// AddTask adds tasks run in every iteration.
func (l *Loop) AddTask(tasks ...Task) *Loop {
	l.tasks = append(l.tasks, tasks...)
	return l
}

// AddRunnable adds background runners started with the loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Post schedules fn to run in the loop. It is safe to call from any
// goroutine.
func (l *Loop) Post(fn func()) {
	l.lock.Lock()
	l.posted = append(l.posted, fn)
	l.lock.Unlock()
	select {
	case l.postCh <- struct{}{}:
	default:
	}
}

// Do runs fn in the loop and waits for it, or until ctx is done.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	l.Post(func() { errCh <- fn() })
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	runner := NewRunnerWith(ctx)
	runner.Go(l.runners...)
	defer func() {
		cancel()
		if err := runner.Wait(); err != nil {
			glog.Errorf("loop runners: %v", err)
		}
	}()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var wakeup <-chan struct{}
	if l.Pump != nil {
		wakeup = l.Pump.Wakeup()
	}
	for {
		l.RunOnce(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-wakeup:
		case <-l.postCh:
		}
	}
}

// RunOnce runs a single iteration.
func (l *Loop) RunOnce(ctx context.Context) {
	iter := &iteration{loop: l, ctx: ctx, time: time.Now()}
	l.lock.Lock()
	posted := l.posted
	l.posted = nil
	l.lock.Unlock()
	for _, fn := range posted {
		fn()
	}
	if l.Pump != nil {
		iter.events = l.Pump.CheckAndHandleEvents()
	}
	for _, task := range l.tasks {
		if err := task.RunTask(iter); err != nil {
			glog.Errorf("task error: %v", err)
		}
	}
}

func (t *iteration) Context() context.Context {
	return t.ctx
}

func (t *iteration) Time() time.Time {
	return t.time
}

func (t *iteration) Events() int {
	return t.events
}

func (t *iteration) Post(fn func()) {
	t.loop.Post(fn)
}
