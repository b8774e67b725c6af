package block

import (
	"github.com/wasmheap/wasmheap/mem"
)

// List is a singly linked LIFO free list. Links live inside the freed
// blocks' own headers; the list itself never allocates. Blocks appear in
// insertion order, not address or size order.
type List struct {
	m    mem.Memory
	head uint32
}

// NewList creates an empty free list over m.
func NewList(m mem.Memory) *List {
	return &List{m: m, head: None}
}

// Head returns the offset of the first free block, or None.
func (l *List) Head() uint32 {
	return l.head
}

// FindFirstFit scans from the head and returns the first block whose
// payload capacity is at least size.
func (l *List) FindFirstFit(size uint32) (uint32, bool) {
	for off := l.head; off != None; {
		h := mustLoad(l.m, off)
		if h.Size >= size {
			return off, true
		}
		off = h.Next
	}
	return 0, false
}

// Remove detaches the block at target from the list by identity. A target
// not on the list is left alone.
func (l *List) Remove(target uint32) {
	if l.head == target {
		l.head = mustLoad(l.m, target).Next
		return
	}
	for off := l.head; off != None; {
		h := mustLoad(l.m, off)
		if h.Next == target {
			h.Next = mustLoad(l.m, target).Next
			mustStore(l.m, off, h)
			return
		}
		off = h.Next
	}
}

// Push marks the block at off free and inserts it at the head.
func (l *List) Push(off uint32) {
	h := mustLoad(l.m, off)
	h.Magic = MagicFree
	h.Next = l.head
	mustStore(l.m, off, h)
	l.head = off
}

// MaybeSplit carves the tail of the block at off into a new free block when
// the leftover can hold a header plus at least one quantum of payload, then
// shrinks the block to need bytes. The threshold guarantees a split never
// strands a fragment too small to satisfy any request.
func (l *List) MaybeSplit(off, need uint32) {
	h := mustLoad(l.m, off)
	if h.Size < need+HeaderSize+Align {
		return
	}
	tail := off + HeaderSize + need
	mustStore(l.m, tail, Header{
		Size:  h.Size - need - HeaderSize,
		Magic: MagicFree,
		Next:  None,
	})
	l.Push(tail)
	h.Size = need
	mustStore(l.m, off, h)
}

// Walk visits free blocks in list order until fn returns false.
func (l *List) Walk(fn func(off uint32, h Header) bool) {
	for off := l.head; off != None; {
		h := mustLoad(l.m, off)
		if !fn(off, h) {
			return
		}
		off = h.Next
	}
}
