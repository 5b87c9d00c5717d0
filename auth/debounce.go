package auth

import (
	"context"
	"sync"
	"time"
)

// Debouncer runs at most one delayed task per key. Scheduling a key stops the
// pending timer and cancels the context of a task already running for that
// key. Each owner (a registration form of one session) has its own
// Debouncer; nothing is shared between owners.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	tasks  map[string]*debounced
	closed bool
}

type debounced struct {
	timer  *time.Timer
	cancel context.CancelFunc
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, tasks: make(map[string]*debounced)}
}

// Schedule replaces whatever is pending or running for key with fn, which
// runs after the delay. fn must give up when ctx is cancelled.
func (d *Debouncer) Schedule(key string, fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.cancelLocked(key)

	ctx, cancel := context.WithCancel(context.Background())
	t := &debounced{cancel: cancel}
	t.timer = time.AfterFunc(d.delay, func() {
		defer d.finish(key, t)
		if ctx.Err() != nil {
			return
		}
		fn(ctx)
	})
	d.tasks[key] = t
}

func (d *Debouncer) finish(key string, t *debounced) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tasks[key] == t {
		delete(d.tasks, key)
	}
	t.cancel()
}

func (d *Debouncer) cancelLocked(key string) {
	if t, ok := d.tasks[key]; ok {
		t.timer.Stop()
		t.cancel()
		delete(d.tasks, key)
	}
}

// Cancel drops the task for key.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked(key)
}

// Pending reports whether a task for key is scheduled or running.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.tasks[key]
	return ok
}

// Stop cancels every task. Later calls to Schedule are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key := range d.tasks {
		d.cancelLocked(key)
	}
	d.closed = true
}
