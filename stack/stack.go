// Package stack implements spec §4.C's per-actuator priority stack: a
// LIFO of active control entries whose top determines the strength a
// device actually emits. Overlapping commands on one actuator resolve
// to "top of stack wins", and every mutation reports whether the top
// changed so the worker can decide whether a device emit is due.
package stack

import "hapticrt/model"

type entry struct {
	handle   model.Handle
	strength model.Speed
}

// Stack is one actuator's LIFO of active control entries. Not safe for
// concurrent use; the worker owns every stack exclusively, the same
// way it owns the rest of scheduler state.
type Stack struct {
	entries []entry
}

// New returns an empty stack.
func New() *Stack { return &Stack{} }

// Empty reports whether the stack has no active entries.
func (s *Stack) Empty() bool { return len(s.entries) == 0 }

// Top returns the current top strength and true, or the zero Speed and
// false if the stack is empty.
func (s *Stack) Top() (model.Speed, bool) {
	if len(s.entries) == 0 {
		return model.Speed{}, false
	}
	return s.entries[len(s.entries)-1].strength, true
}

// Push appends a new entry for handle. Reports whether the top changed:
// true when the stack was empty, or when initial differs from the
// prior top's strength.
func (s *Stack) Push(handle model.Handle, initial model.Speed) (topChanged bool) {
	prev, hadTop := s.Top()
	s.entries = append(s.entries, entry{handle: handle, strength: initial})
	if !hadTop {
		return true
	}
	return prev.Value() != initial.Value()
}

// Update rewrites handle's entry in place. Reports whether handle is
// the current top and its value actually changed; updating a buried
// entry never changes the top and so never reports a change.
func (s *Stack) Update(handle model.Handle, newStrength model.Speed) (topChanged bool) {
	idx := s.indexOf(handle)
	if idx < 0 {
		return false
	}
	old := s.entries[idx].strength
	s.entries[idx].strength = newStrength
	isTop := idx == len(s.entries)-1
	return isTop && old.Value() != newStrength.Value()
}

// Pop removes handle's entry wherever it sits in the stack. Any
// successful removal reports topChanged=true and the resulting top (or
// none), even when the removed entry was not itself the top: popping a
// buried entry still re-confirms the current top to the device, unlike
// Push/Update which dedup on unchanged value. Popping an unknown or
// already-removed handle is a no-op and reports topChanged=false.
func (s *Stack) Pop(handle model.Handle) (topChanged bool, newTop model.Speed, hasTop bool) {
	idx := s.indexOf(handle)
	if idx < 0 {
		top, ok := s.Top()
		return false, top, ok
	}
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	newTop, hasTop = s.Top()
	return true, newTop, hasTop
}

func (s *Stack) indexOf(handle model.Handle) int {
	for i, e := range s.entries {
		if e.handle == handle {
			return i
		}
	}
	return -1
}
