package clock

import (
	"sync"
	"time"
)

// Handle is a pending delayed or repeating task
type Handle interface {
	// Stop cancels the task. It reports false if the task had already
	// fired (one-shot) or was already stopped.
	Stop() bool
}

// Scheduler runs functions later. Callbacks run on goroutines the scheduler
// owns, so callers must do their own locking.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Handle
	Every(d time.Duration, f func()) Handle
}

// Real schedules on the wall clock
type Real struct{}

// New returns the wall-clock scheduler
func New() Scheduler {
	return Real{}
}

// AfterFunc calls f once after d
func (Real) AfterFunc(d time.Duration, f func()) Handle {
	return time.AfterFunc(d, f)
}

// Every calls f every d until the handle is stopped
func (Real) Every(d time.Duration, f func()) Handle {
	t := &ticker{
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	go t.run(f)
	return t
}

type ticker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *ticker) run(f func()) {
	defer t.ticker.Stop()
	for {
		select {
		case <-t.ticker.C:
			select {
			case <-t.done:
				return
			default:
			}
			f()
		case <-t.done:
			return
		}
	}
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		close(t.done)
		stopped = true
	})
	return stopped
}
