// Package timer abstracts scheduling of delayed callbacks so timer-driven state
// (toast dismissal, feed reconnects) can be driven by a manual clock in tests.
package timer

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call stopped the timer
	// before it fired.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// System schedules callbacks on the runtime timer.
type System struct{}

// AfterFunc implements Scheduler.
func (System) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Manual is a Scheduler driven explicitly by Advance.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	seq     uint64
	pending []*manualTimer
}

type manualTimer struct {
	owner *Manual
	at    time.Duration
	seq   uint64
	fn    func()
	done  bool
}

// NewManual returns a manual scheduler at offset zero.
func NewManual() *Manual {
	return &Manual{}
}

// AfterFunc implements Scheduler.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{owner: m, at: m.now + d, seq: m.seq, fn: f}
	m.pending = append(m.pending, t)
	return t
}

// Elapsed returns the total time advanced so far.
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of timers that have not fired or been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, t := range m.pending {
		if !t.done {
			count++
		}
	}
	return count
}

// Advance moves the clock forward, firing due callbacks in deadline order.
// Callbacks run on the caller's goroutine without the scheduler lock held, so
// they may schedule further timers; those fire too if they fall within d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()
	for {
		m.mu.Lock()
		next := m.nextDueLocked(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		next.done = true
		m.now = next.at
		fn := next.fn
		m.compactLocked()
		m.mu.Unlock()
		fn()
	}
}

func (m *Manual) nextDueLocked(target time.Duration) *manualTimer {
	due := make([]*manualTimer, 0, len(m.pending))
	for _, t := range m.pending {
		if !t.done && t.at <= target {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at == due[j].at {
			return due[i].seq < due[j].seq
		}
		return due[i].at < due[j].at
	})
	return due[0]
}

func (m *Manual) compactLocked() {
	live := m.pending[:0]
	for _, t := range m.pending {
		if !t.done {
			live = append(live, t)
		}
	}
	m.pending = live
}

func (t *manualTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.owner.compactLocked()
	return true
}
