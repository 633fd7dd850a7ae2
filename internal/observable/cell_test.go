package observable

import (
	"sync"
	"testing"
)

func TestSubscribeReceivesCurrentThenUpdates(t *testing.T) {
	cell := New(1)
	var got []int
	cancel := cell.Subscribe(func(v int) { got = append(got, v) })
	cell.Set(2)
	cell.Set(3)
	cancel()
	cell.Set(4)

	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if cell.Subscribers() != 0 {
		t.Fatalf("expected no subscribers, got %d", cell.Subscribers())
	}
}

func TestReentrantSetIsDeliveredInOrder(t *testing.T) {
	cell := New(0)
	var first, second []int
	cell.Subscribe(func(v int) {
		first = append(first, v)
		if v == 1 {
			cell.Set(2)
		}
	})
	cell.Subscribe(func(v int) { second = append(second, v) })

	cell.Set(1)

	if len(second) != 3 || second[0] != 0 || second[1] != 1 || second[2] != 2 {
		t.Fatalf("second subscriber saw %v", second)
	}
	if len(first) != 3 || first[2] != 2 {
		t.Fatalf("first subscriber saw %v", first)
	}
	if cell.Get() != 2 {
		t.Fatalf("expected final value 2, got %d", cell.Get())
	}
}

func TestUpdateIsAtomic(t *testing.T) {
	cell := New(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cell.Update(func(v int) int { return v + 1 })
		}()
	}
	wg.Wait()
	if cell.Get() != 50 {
		t.Fatalf("expected 50, got %d", cell.Get())
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	cell := New("a")
	cancel := cell.Subscribe(func(string) {})
	cancel()
	cancel()
	if cell.Subscribers() != 0 {
		t.Fatalf("expected no subscribers")
	}
}

func TestDeriveRepublishesOnChangeOnly(t *testing.T) {
	type user struct{ admin bool }
	src := New[*user](nil)
	isAdmin := Derive[*user](src, func(u *user) bool { return u != nil && u.admin })
	defer isAdmin.Close()

	var seen []bool
	isAdmin.Subscribe(func(v bool) { seen = append(seen, v) })

	src.Set(&user{admin: false})
	src.Set(&user{admin: true})
	src.Set(&user{admin: true})
	src.Set(nil)

	want := []bool{false, true, false}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, seen)
		}
	}
}

func TestDeriveCloseDetaches(t *testing.T) {
	src := New(1)
	double := Derive[int](src, func(v int) int { return v * 2 })
	double.Close()
	src.Set(5)
	if double.Get() != 2 {
		t.Fatalf("expected detached projection to keep 2, got %d", double.Get())
	}
	if src.Subscribers() != 0 {
		t.Fatalf("expected source without subscribers")
	}
}
