// Package brk implements the allocator's backing store: a program-break
// style bump boundary over a growable linear memory.
package brk

import (
	"github.com/wasmheap/wasmheap/mem"
)

// Brk tracks the heap's logical upper bound over one Memory. The heap base
// is captured lazily from the memory's committed size on first use; the
// logical end only ever advances. Committed pages beyond the logical end are
// slack that later growth consumes without reaching the platform.
type Brk struct {
	m         mem.Memory
	start     uint32
	end       uint32
	ready     bool
	growCalls uint64
}

// New creates a Brk over m. No memory is touched until the first query.
func New(m mem.Memory) *Brk {
	return &Brk{m: m}
}

func (b *Brk) init() {
	if b.ready {
		return
	}
	size := b.m.Size()
	b.start = size
	b.end = size
	b.ready = true
}

// Start returns the heap base, initializing it if needed.
func (b *Brk) Start() uint32 {
	b.init()
	return b.start
}

// End returns the logical heap end, initializing it if needed. This is the
// zero-growth query: it never commits memory.
func (b *Brk) End() uint32 {
	b.init()
	return b.end
}

// Grow advances the logical heap end by exactly n bytes and returns the
// previous end. When n outruns the committed region it requests enough whole
// pages (at least one) to cover the shortfall. On platform refusal, or if
// the end would wrap, it reports failure without mutating any state.
func (b *Brk) Grow(n uint32) (uint32, bool) {
	b.init()
	if n == 0 {
		return b.end, true
	}
	newEnd := b.end + n
	if newEnd < b.end {
		return 0, false
	}
	if committed := b.m.Size(); newEnd > committed {
		shortfall := newEnd - committed
		pages := uint32((uint64(shortfall) + mem.PageSize - 1) / mem.PageSize)
		if _, ok := b.m.Grow(pages); !ok {
			return 0, false
		}
		b.growCalls++
	}
	prev := b.end
	b.end = newEnd
	return prev, true
}

// GrowCalls reports how many times the platform was asked for pages.
func (b *Brk) GrowCalls() uint64 {
	return b.growCalls
}
