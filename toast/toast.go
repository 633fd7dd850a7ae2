// Package toast manages transient notifications with auto-dismiss timers.
package toast

import (
	"context"
	"sync"
	"time"

	"pkt.systems/dlmgr/internal/observable"
	"pkt.systems/dlmgr/internal/timer"
	"pkt.systems/pslog"
)

// DefaultDuration is how long a toast stays visible.
const DefaultDuration = 4 * time.Second

// Severity classifies a toast.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// ID identifies a toast. IDs are never reused within a process.
type ID uint64

// Toast is one visible notification.
type Toast struct {
	ID       ID
	Message  string
	Severity Severity
	// TimerPending is false while the toast is paused.
	TimerPending bool
}

type entry struct {
	toast Toast
	timer timer.Timer
	// token identifies the current timer; a callback from an older timer is
	// ignored.
	token uint64
}

// Manager owns the toast list. The list is published while the manager's
// lock is held, so subscribers of Toasts must not call back into the Manager
// synchronously.
type Manager struct {
	sched    timer.Scheduler
	duration time.Duration
	log      pslog.Logger
	list     *observable.Cell[[]Toast]

	mu      sync.Mutex
	nextID  ID
	tokens  uint64
	entries []*entry
}

// Option customises a Manager.
type Option func(*Manager)

// WithScheduler replaces the system clock.
func WithScheduler(s timer.Scheduler) Option {
	return func(m *Manager) { m.sched = s }
}

// WithDuration replaces DefaultDuration.
func WithDuration(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.duration = d
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger pslog.Logger) Option {
	return func(m *Manager) { m.log = logger }
}

// New constructs an empty Manager.
func New(opts ...Option) *Manager {
	m := &Manager{
		sched:    timer.System{},
		duration: DefaultDuration,
		list:     observable.New([]Toast{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = pslog.Ctx(context.Background())
	}
	return m
}

// Toasts is the visible list in arrival order.
func (m *Manager) Toasts() observable.Readable[[]Toast] {
	return m.list
}

// Show adds a toast with the default duration.
func (m *Manager) Show(message string, severity Severity) ID {
	return m.ShowFor(message, severity, 0)
}

// Success shows a success toast.
func (m *Manager) Success(message string) ID { return m.Show(message, SeveritySuccess) }

// Error shows an error toast.
func (m *Manager) Error(message string) ID { return m.Show(message, SeverityError) }

// Info shows an info toast.
func (m *Manager) Info(message string) ID { return m.Show(message, SeverityInfo) }

// ShowFor adds a toast that is removed after d (the default when d <= 0).
func (m *Manager) ShowFor(message string, severity Severity, d time.Duration) ID {
	if severity == "" {
		severity = SeverityInfo
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e := &entry{toast: Toast{ID: m.nextID, Message: message, Severity: severity}}
	m.entries = append(m.entries, e)
	m.armLocked(e, d)
	m.publishLocked()
	m.log.Trace("toast shown", "toast_id", uint64(e.toast.ID), "severity", string(severity))
	return e.toast.ID
}

// Remove drops a toast and cancels its timer. Unknown ids are ignored.
func (m *Manager) Remove(id ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(id)
}

// Pause cancels a toast's timer without removing it.
func (m *Manager) Pause(id ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.findLocked(id)
	if e == nil || e.timer == nil {
		return
	}
	e.timer.Stop()
	e.timer = nil
	e.toast.TimerPending = false
	m.publishLocked()
}

// Resume schedules removal of a paused toast after d (the default when
// d <= 0). Toasts with a pending timer are left alone.
func (m *Manager) Resume(id ID, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.findLocked(id)
	if e == nil || e.timer != nil {
		return
	}
	m.armLocked(e, d)
	m.publishLocked()
}

// Clear removes every toast and cancels their timers.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	m.entries = nil
	m.publishLocked()
}

func (m *Manager) armLocked(e *entry, d time.Duration) {
	if d <= 0 {
		d = m.duration
	}
	m.tokens++
	token := m.tokens
	id := e.toast.ID
	e.token = token
	e.toast.TimerPending = true
	e.timer = m.sched.AfterFunc(d, func() { m.expire(id, token) })
}

func (m *Manager) expire(id ID, token uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.findLocked(id)
	if e == nil || e.timer == nil || e.token != token {
		return
	}
	e.timer = nil
	m.removeLocked(id)
}

func (m *Manager) removeLocked(id ID) {
	for i, e := range m.entries {
		if e.toast.ID != id {
			continue
		}
		if e.timer != nil {
			e.timer.Stop()
		}
		m.entries = append(m.entries[:i], m.entries[i+1:]...)
		m.publishLocked()
		return
	}
}

func (m *Manager) findLocked(id ID) *entry {
	for _, e := range m.entries {
		if e.toast.ID == id {
			return e
		}
	}
	return nil
}

func (m *Manager) publishLocked() {
	out := make([]Toast, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.toast)
	}
	m.list.Set(out)
}
