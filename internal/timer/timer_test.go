package timer

import (
	"testing"
	"time"
)

func TestManualFiresInDeadlineOrder(t *testing.T) {
	clock := NewManual()
	var order []string
	clock.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	clock.AfterFunc(time.Second, func() { order = append(order, "a") })
	clock.AfterFunc(2*time.Second, func() { order = append(order, "b") })

	clock.Advance(2 * time.Second)
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("unexpected order after 2s: %v", order)
	}
	clock.Advance(time.Second)
	if len(order) != 3 || order[2] != "c" {
		t.Fatalf("unexpected order after 3s: %v", order)
	}
	if clock.Elapsed() != 3*time.Second {
		t.Fatalf("expected 3s elapsed, got %v", clock.Elapsed())
	}
}

func TestManualStopPreventsFire(t *testing.T) {
	clock := NewManual()
	fired := false
	tm := clock.AfterFunc(time.Second, func() { fired = true })
	if !tm.Stop() {
		t.Fatalf("expected stop to report pending timer")
	}
	if tm.Stop() {
		t.Fatalf("expected second stop to report false")
	}
	clock.Advance(2 * time.Second)
	if fired {
		t.Fatalf("stopped timer fired")
	}
	if clock.Pending() != 0 {
		t.Fatalf("expected no pending timers, got %d", clock.Pending())
	}
}

func TestManualCallbackCanReschedule(t *testing.T) {
	clock := NewManual()
	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			clock.AfterFunc(time.Second, tick)
		}
	}
	clock.AfterFunc(time.Second, tick)
	clock.Advance(5 * time.Second)
	if count != 3 {
		t.Fatalf("expected 3 ticks, got %d", count)
	}
}

func TestSystemAfterFunc(t *testing.T) {
	done := make(chan struct{})
	System{}.AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for system timer")
	}
}
