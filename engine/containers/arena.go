package containers

import "errors"

var ErrStaleHandle = errors.New("handle does not refer to a live arena entry")

// Handle addresses an arena entry. The generation guards against a freed
// index being reused by a later Insert while an old handle still exists.
type Handle struct {
	index      uint32
	generation uint32
}

// Index returns the slot index of the handle.
func (h Handle) Index() uint32 {
	return h.index
}

type arenaSlot[T any] struct {
	value      T
	generation uint32
	live       bool
}

// Arena stores values in a slice and hands out stable handles. Freed slots
// are reused lowest-index first.
type Arena[T any] struct {
	slots []arenaSlot[T]
	free  []uint32
	count int
}

func NewArena[T any](capacity int) *Arena[T] {
	return &Arena[T]{
		slots: make([]arenaSlot[T], 0, capacity),
	}
}

// Insert stores value and returns its handle.
func (a *Arena[T]) Insert(value T) Handle {
	a.count++
	if n := len(a.free); n > 0 {
		// Existing free spot. Take it.
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.value = value
		s.live = true
		return Handle{index: idx, generation: s.generation}
	}
	// No free slots, push a new one.
	a.slots = append(a.slots, arenaSlot[T]{value: value, live: true})
	return Handle{index: uint32(len(a.slots) - 1)}
}

// Get returns the value behind h.
func (a *Arena[T]) Get(h Handle) (T, error) {
	var zero T
	if int(h.index) >= len(a.slots) {
		return zero, ErrStaleHandle
	}
	s := a.slots[h.index]
	if !s.live || s.generation != h.generation {
		return zero, ErrStaleHandle
	}
	return s.value, nil
}

// Remove frees the slot behind h and returns the value it held.
func (a *Arena[T]) Remove(h Handle) (T, error) {
	v, err := a.Get(h)
	if err != nil {
		return v, err
	}
	var zero T
	s := &a.slots[h.index]
	s.value = zero
	s.live = false
	s.generation++
	a.count--
	// Keep the free list sorted descending so the lowest index pops first.
	pos := len(a.free)
	for pos > 0 && a.free[pos-1] < h.index {
		pos--
	}
	a.free = append(a.free, 0)
	copy(a.free[pos+1:], a.free[pos:])
	a.free[pos] = h.index
	return v, nil
}

// Len returns the number of live entries.
func (a *Arena[T]) Len() int {
	return a.count
}

// Range calls fn for every live entry in index order until fn returns false.
func (a *Arena[T]) Range(fn func(h Handle, value T) bool) {
	for i := range a.slots {
		s := a.slots[i]
		if !s.live {
			continue
		}
		if !fn(Handle{index: uint32(i), generation: s.generation}, s.value) {
			return
		}
	}
}
