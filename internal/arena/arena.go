// Package arena implements the slot arena underlying the sized cache:
// a flat backing store of slots threaded by an intrusive doubly linked
// recency list (head=MRU, tail=LRU) and addressed by stable integer
// handles.
//
// Handles survive growth of the backing slice and recycling of unrelated
// slots, which is what lets the hash index reference a slot with a single
// cheap integer instead of a key copy or a pointer.
package arena

import "iter"

// Handle is a stable reference to a live slot. It stays valid until the
// slot is removed; a removed slot's handle may be reissued by a later
// PushFront.
type Handle int

// NoHandle marks the ends of the recency list and is returned by
// Front/Back on an empty list.
const NoHandle Handle = -1

// slot holds one value plus its recency-list links. Freed slots keep
// their place in the backing slice and are reused through the free list.
type slot[T any] struct {
	val  T
	prev Handle
	next Handle
	live bool
}

// List is a recency-ordered arena of slots. The zero value is not usable;
// call New. List is not safe for concurrent use.
type List[T any] struct {
	slots []slot[T]
	free  []Handle // recycled slot indices, reused LIFO
	head  Handle
	tail  Handle
	size  int
}

// New returns an empty list with room for capacity slots preallocated.
func New[T any](capacity int) *List[T] {
	return &List[T]{
		slots: make([]slot[T], 0, capacity),
		head:  NoHandle,
		tail:  NoHandle,
	}
}

// Len returns the number of live slots.
func (l *List[T]) Len() int { return l.size }

// PushFront inserts v as the new most-recently-used slot and returns its
// handle, recycling a freed slot when one is available.
func (l *List[T]) PushFront(v T) Handle {
	var h Handle
	if n := len(l.free); n > 0 {
		h = l.free[n-1]
		l.free = l.free[:n-1]
	} else {
		h = Handle(len(l.slots))
		l.slots = append(l.slots, slot[T]{})
	}
	s := &l.slots[h]
	s.val = v
	s.live = true
	s.prev = NoHandle
	s.next = l.head
	if l.head != NoHandle {
		l.slots[l.head].prev = h
	}
	l.head = h
	if l.tail == NoHandle {
		l.tail = h
	}
	l.size++
	return h
}

// At returns a pointer to the slot's content. The pointer stays valid
// until the next PushFront, which may grow the backing slice.
//
// Passing a stale or foreign handle is a bug in the caller; At panics
// rather than hand out another slot's content.
func (l *List[T]) At(h Handle) *T {
	return &l.slot(h).val
}

func (l *List[T]) slot(h Handle) *slot[T] {
	if h < 0 || int(h) >= len(l.slots) || !l.slots[h].live {
		panic("arena: access through a dead handle")
	}
	return &l.slots[h]
}

// Set replaces the slot's content in place and returns the previous
// content. The slot keeps its handle and its position in the recency
// order.
func (l *List[T]) Set(h Handle, v T) T {
	s := l.slot(h)
	old := s.val
	s.val = v
	return old
}

// MoveToFront promotes the slot to most recently used in O(1).
func (l *List[T]) MoveToFront(h Handle) {
	s := l.slot(h)
	if l.head == h {
		return
	}
	l.unlink(h, s)
	s.next = l.head
	l.slots[l.head].prev = h
	l.head = h
}

// Remove unlinks the slot, frees it for recycling, and returns its
// content.
func (l *List[T]) Remove(h Handle) T {
	s := l.slot(h)
	l.unlink(h, s)
	v := s.val
	var zero T
	s.val = zero // release for GC
	s.live = false
	l.free = append(l.free, h)
	l.size--
	return v
}

// unlink detaches the slot from the recency list without freeing it.
func (l *List[T]) unlink(h Handle, s *slot[T]) {
	if s.prev != NoHandle {
		l.slots[s.prev].next = s.next
	}
	if s.next != NoHandle {
		l.slots[s.next].prev = s.prev
	}
	if l.head == h {
		l.head = s.next
	}
	if l.tail == h {
		l.tail = s.prev
	}
	s.prev, s.next = NoHandle, NoHandle
}

// Front returns the most-recently-used handle, or NoHandle if empty.
func (l *List[T]) Front() Handle { return l.head }

// Back returns the least-recently-used handle, or NoHandle if empty.
func (l *List[T]) Back() Handle { return l.tail }

// All iterates live slots from most to least recently used. The sequence
// is lazy and restartable; the list must not be structurally mutated
// while a walk is in progress.
func (l *List[T]) All() iter.Seq2[Handle, *T] {
	return func(yield func(Handle, *T) bool) {
		for h := l.head; h != NoHandle; h = l.slots[h].next {
			if !yield(h, &l.slots[h].val) {
				return
			}
		}
	}
}

// Clear drops every slot but keeps the backing allocation for reuse.
func (l *List[T]) Clear() {
	clear(l.slots) // zero the values so the GC can reclaim them
	l.slots = l.slots[:0]
	l.free = l.free[:0]
	l.head, l.tail = NoHandle, NoHandle
	l.size = 0
}

// Clone returns an independent copy of the list. Handles issued by the
// original are valid in the copy and address equal content.
func (l *List[T]) Clone() *List[T] {
	return &List[T]{
		slots: append(make([]slot[T], 0, cap(l.slots)), l.slots...),
		free:  append([]Handle(nil), l.free...),
		head:  l.head,
		tail:  l.tail,
		size:  l.size,
	}
}
