package overlay

import "testing"

func TestModalSingleSlot(t *testing.T) {
	s := New()
	var seen []string
	s.Modal().Subscribe(func(m *Modal) {
		if m == nil {
			seen = append(seen, "")
			return
		}
		seen = append(seen, m.Name)
	})
	s.OpenModal("confirm-delete", map[string]any{"path": "a.mp3"})
	s.OpenModal("rename", nil)
	if got := s.Modal().Get(); got == nil || got.Name != "rename" || got.Props == nil {
		t.Fatalf("unexpected modal %+v", got)
	}
	s.CloseModal()
	if s.Modal().Get() != nil {
		t.Fatalf("expected closed modal")
	}
	want := []string{"", "confirm-delete", "rename", ""}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, seen)
		}
	}
}

func TestDropdownSelect(t *testing.T) {
	s := New()
	if s.Select(Option{Value: "x"}) {
		t.Fatalf("expected no dropdown")
	}
	var picked Option
	s.OpenDropdown(Dropdown{
		Options:  []Option{{Value: "daily", Label: "Daily"}, {Value: "weekly", Label: "Weekly"}},
		Value:    "daily",
		OnSelect: func(o Option) { picked = o },
	})
	s.OpenDropdown(Dropdown{
		Options:    []Option{{Value: "alice", Label: "alice"}},
		Searchable: true,
		OnSelect:   func(o Option) { picked = o },
	})
	if d := s.Dropdown().Get(); d == nil || !d.Searchable {
		t.Fatalf("expected replaced dropdown")
	}
	if !s.Select(Option{Value: "alice", Label: "alice"}) {
		t.Fatalf("expected select to succeed")
	}
	if picked.Value != "alice" || s.Dropdown().Get() != nil {
		t.Fatalf("unexpected state after select: %+v", picked)
	}
	s.OpenDropdown(Dropdown{})
	s.CloseDropdown()
	if s.Dropdown().Get() != nil {
		t.Fatalf("expected closed dropdown")
	}
}
