// ABOUTME: Cancellable fixed-interval repeating task used for message polling.
// ABOUTME: Start/stop/restart are well-defined operations with a single owner.

package session

import (
	"context"
	"sync"
	"time"
)

// repeatingTask runs fn on a fixed interval until stopped. It is owned
// by exactly one Session; Start and Stop may be called repeatedly and
// in any order. Stop blocks until the loop goroutine has exited.
type repeatingTask struct {
	interval time.Duration
	fn       func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func newRepeatingTask(interval time.Duration, fn func(ctx context.Context)) *repeatingTask {
	return &repeatingTask{interval: interval, fn: fn}
}

// Start launches the loop. A second Start while running is a no-op.
func (t *repeatingTask) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.fn(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit. Stopping a stopped
// task is a no-op. Must not be called from within fn.
func (t *repeatingTask) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Running reports whether the loop is currently active.
func (t *repeatingTask) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}
