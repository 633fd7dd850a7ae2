// Package overlay holds the single modal slot and the single dropdown slot.
package overlay

import (
	"sync"

	"pkt.systems/dlmgr/internal/observable"
)

// Modal describes what a modal shows.
type Modal struct {
	Name  string
	Props map[string]any
}

// Option is a dropdown entry.
type Option struct {
	Value string
	Label string
}

// Dropdown describes an open dropdown.
type Dropdown struct {
	Options    []Option
	Value      string
	Searchable bool
	OnSelect   func(Option)
}

// State holds the overlay slots. Opening replaces whatever the slot held.
type State struct {
	mu       sync.Mutex
	modal    *observable.Cell[*Modal]
	dropdown *observable.Cell[*Dropdown]
}

// New returns empty slots.
func New() *State {
	return &State{
		modal:    observable.New[*Modal](nil),
		dropdown: observable.New[*Dropdown](nil),
	}
}

// Modal is the open modal or nil.
func (s *State) Modal() observable.Readable[*Modal] {
	return s.modal
}

// Dropdown is the open dropdown or nil.
func (s *State) Dropdown() observable.Readable[*Dropdown] {
	return s.dropdown
}

// OpenModal replaces the modal slot.
func (s *State) OpenModal(name string, props map[string]any) {
	if props == nil {
		props = map[string]any{}
	}
	s.modal.Set(&Modal{Name: name, Props: props})
}

// CloseModal empties the modal slot.
func (s *State) CloseModal() {
	s.modal.Set(nil)
}

// OpenDropdown replaces the dropdown slot.
func (s *State) OpenDropdown(d Dropdown) {
	s.dropdown.Set(&d)
}

// CloseDropdown empties the dropdown slot.
func (s *State) CloseDropdown() {
	s.dropdown.Set(nil)
}

// Select passes opt to the open dropdown's callback and empties the slot. It
// reports false when no dropdown is open.
func (s *State) Select(opt Option) bool {
	s.mu.Lock()
	d := s.dropdown.Get()
	if d == nil {
		s.mu.Unlock()
		return false
	}
	s.dropdown.Set(nil)
	s.mu.Unlock()
	if d.OnSelect != nil {
		d.OnSelect(opt)
	}
	return true
}
