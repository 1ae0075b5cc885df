package device

import (
	"context"
	"time"
)

// periodicTask runs fn every interval on its own goroutine until stopped.
type periodicTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func startPeriodic(interval time.Duration, fn func()) *periodicTask {
	ctx, cancel := context.WithCancel(context.Background())
	t := &periodicTask{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// select picks randomly when both are ready
				if ctx.Err() != nil {
					return
				}
				fn()
			}
		}
	}()
	return t
}

// Stop cancels the task and waits for an in-flight fn to return. No fn call
// starts after Stop returns. Stop is idempotent.
func (t *periodicTask) Stop() {
	t.cancel()
	<-t.done
}
