package revoltgo

import (
	"context"
	"sync"
	"time"
)

// Deferred is a handle on one scheduled action. The action runs once after
// its delay unless cancelled first; Done closes either way.
type Deferred struct {
	done   chan struct{}
	cancel chan struct{}

	once sync.Once

	mu  sync.Mutex
	err error
}

// newDeferred schedules fn to run after delay. Context cancellation and
// Cancel both abort a pending run; a run already started is not interrupted.
func newDeferred(ctx context.Context, delay time.Duration, fn func(ctx context.Context) error) *Deferred {
	d := &Deferred{
		done:   make(chan struct{}),
		cancel: make(chan struct{}),
	}

	timer := time.NewTimer(delay)
	go func() {
		defer close(d.done)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-d.cancel:
			d.setErr(context.Canceled)
			return
		case <-ctx.Done():
			d.setErr(ctx.Err())
			return
		}

		d.setErr(fn(ctx))
	}()

	return d
}

// Cancel aborts the action if it has not started yet.
func (d *Deferred) Cancel() {
	d.once.Do(func() {
		close(d.cancel)
	})
}

// Done closes when the action has run or been cancelled.
func (d *Deferred) Done() <-chan struct{} {
	return d.done
}

// Err returns the action's outcome once Done is closed: nil on success,
// context.Canceled when aborted, otherwise the action's error.
func (d *Deferred) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.err
}

func (d *Deferred) setErr(err error) {
	d.mu.Lock()
	d.err = err
	d.mu.Unlock()
}
