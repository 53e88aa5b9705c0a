package clock

import (
	"sync"
	"time"
)

// Manual is a Scheduler driven by Advance instead of the wall clock.
// Tasks due at the same instant run in the order they were scheduled.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []*manualTask
}

type manualTask struct {
	m      *Manual
	at     time.Duration
	period time.Duration
	seq    uint64
	f      func()
	done   bool
}

// NewManual creates a scheduler whose clock starts at zero
func NewManual() *Manual {
	return &Manual{}
}

// Elapsed returns how far the clock has been advanced
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of tasks still scheduled
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// AfterFunc schedules f once, d after the current manual time
func (m *Manual) AfterFunc(d time.Duration, f func()) Handle {
	return m.schedule(d, 0, f)
}

// Every schedules f every d. A non-positive period is treated as one nanosecond.
func (m *Manual) Every(d time.Duration, f func()) Handle {
	if d <= 0 {
		d = time.Nanosecond
	}
	return m.schedule(d, d, f)
}

func (m *Manual) schedule(d, period time.Duration, f func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d < 0 {
		d = 0
	}
	m.seq++
	task := &manualTask{m: m, at: m.now + d, period: period, seq: m.seq, f: f}
	m.tasks = append(m.tasks, task)
	return task
}

// Advance moves the clock forward by d, running every task that comes due.
// Callbacks run without the scheduler lock held and may schedule or stop
// other tasks.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d

	for {
		task := m.next(target)
		if task == nil {
			break
		}
		m.now = task.at
		if task.period > 0 {
			task.at += task.period
			m.seq++
			task.seq = m.seq
		} else {
			task.done = true
			m.remove(task)
		}

		m.mu.Unlock()
		task.f()
		m.mu.Lock()
	}

	if m.now < target {
		m.now = target
	}
	m.mu.Unlock()
}

// next returns the earliest task due at or before target
func (m *Manual) next(target time.Duration) *manualTask {
	var best *manualTask
	for _, t := range m.tasks {
		if t.at > target {
			continue
		}
		if best == nil || t.at < best.at || (t.at == best.at && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (m *Manual) remove(task *manualTask) {
	for i, t := range m.tasks {
		if t == task {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return
		}
	}
}

func (t *manualTask) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	t.m.remove(t)
	return true
}
