package stream

import "slices"

// Slot is one weight sub-tensor being filled. Filled never exceeds
// len(Data) and only grows.
type Slot[T any] struct {
	Data   []T
	Filled int
}

// Capacity returns the slot's element count.
func (s Slot[T]) Capacity() int {
	return len(s.Data)
}

// Done reports whether the slot is full.
func (s Slot[T]) Done() bool {
	return s.Filled == len(s.Data)
}

// Cursor is the fill state of one layer instance: its slots in stream order
// and the index of the slot currently filling.
//
// Cursor is a value. Append returns the advanced cursor and leaves the
// receiver describing the state before the call. The slot buffers are
// shared, so only the most recent cursor should be appended to.
type Cursor[T any] struct {
	slots []Slot[T]
	index int
}

// NewCursor allocates empty slots of the given capacities.
func NewCursor[T any](capacities ...int) Cursor[T] {
	c := Cursor[T]{slots: make([]Slot[T], len(capacities))}
	for i, n := range capacities {
		c.slots[i].Data = make([]T, n)
	}
	c.skipDone()
	return c
}

// FromBuffers returns a cursor whose slots write directly into bufs. The
// buffers' current contents are treated as unfilled.
func FromBuffers[T any](bufs ...[]T) Cursor[T] {
	c := Cursor[T]{slots: make([]Slot[T], len(bufs))}
	for i, b := range bufs {
		c.slots[i].Data = b
	}
	c.skipDone()
	return c
}

// Append writes chunk starting at the current fill position. When a slot
// completes mid-chunk the rest of the chunk continues into the next slot.
// Scalars past the last slot are not written and reported as a
// *SlotOverflowError alongside the cursor holding everything that fit.
func (c Cursor[T]) Append(chunk []T) (Cursor[T], error) {
	next := Cursor[T]{slots: slices.Clone(c.slots), index: c.index}

	rest := chunk
	for len(rest) > 0 && next.index < len(next.slots) {
		s := &next.slots[next.index]
		n := copy(s.Data[s.Filled:], rest)
		s.Filled += n
		rest = rest[n:]
		next.skipDone()
	}

	if len(rest) > 0 {
		return next, &SlotOverflowError{Capacity: next.Capacity(), Dropped: len(rest)}
	}
	return next, nil
}

// AppendAt is Append for a chunk that claims to start at offset. A chunk
// behind the cursor was already applied and is rejected with
// ErrAlreadyApplied; one ahead of it is rejected with ErrGap. Neither
// changes the cursor.
func (c Cursor[T]) AppendAt(offset int, chunk []T) (Cursor[T], error) {
	switch pos := c.Offset(); {
	case offset < pos:
		return c, ErrAlreadyApplied
	case offset > pos:
		return c, ErrGap
	}
	return c.Append(chunk)
}

// Offset returns the number of scalars written so far.
func (c Cursor[T]) Offset() int {
	n := 0
	for _, s := range c.slots {
		n += s.Filled
	}
	return n
}

// Capacity returns the total number of scalars the cursor accepts.
func (c Cursor[T]) Capacity() int {
	n := 0
	for _, s := range c.slots {
		n += s.Capacity()
	}
	return n
}

// Done reports whether every slot is full.
func (c Cursor[T]) Done() bool {
	return c.index == len(c.slots)
}

// Index returns the position of the slot currently filling, or the slot
// count when done.
func (c Cursor[T]) Index() int {
	return c.index
}

// Slots returns the slot states. The Data slices alias the cursor's
// buffers.
func (c Cursor[T]) Slots() []Slot[T] {
	return slices.Clone(c.slots)
}

// Values returns the slot contents concatenated in stream order.
func (c Cursor[T]) Values() []T {
	out := make([]T, 0, c.Capacity())
	for _, s := range c.slots {
		out = append(out, s.Data...)
	}
	return out
}

func (c *Cursor[T]) skipDone() {
	for c.index < len(c.slots) && c.slots[c.index].Done() {
		c.index++
	}
}
