package model

// Handle identifies an accepted Control action. Handles are issued in
// increasing order starting at 0; InvalidHandle (-1) marks a rejected
// or not-yet-issued action and is never returned for an accepted one.
type Handle int64

const InvalidHandle Handle = -1

// Valid reports whether h was actually issued.
func (h Handle) Valid() bool { return h >= 0 }

// HandleAllocator hands out strictly increasing handles. It has no
// internal locking; callers serialize access to it the same way the
// worker serializes everything else it owns.
type HandleAllocator struct {
	next Handle
}

// Next returns the next handle and advances the allocator.
func (a *HandleAllocator) Next() Handle {
	h := a.next
	a.next++
	return h
}
