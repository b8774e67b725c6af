// Package wasmheap implements a minimal first-fit free-list heap allocator
// over a growable linear memory, such as a WASM module's exported memory.
//
// The heap is carved from the tail of the memory: the base is captured from
// the committed size the first time the allocator touches the memory, and
// the region only ever grows, in whole pages. Every allocation is preceded
// by a fixed 16-byte header; freed blocks are threaded into a LIFO free list
// through their own headers, so bookkeeping itself never allocates.
//
// An Allocator is an explicit context value: independent heaps over
// independent memories do not share state. It is not safe for concurrent
// use; the embedding host must serialize calls.
package wasmheap

import (
	"fmt"
	"io"
	"math"

	"github.com/wasmheap/wasmheap/internal/block"
	"github.com/wasmheap/wasmheap/internal/brk"
	"github.com/wasmheap/wasmheap/mem"
	"github.com/wasmheap/wasmheap/memops"
)

// Config holds configuration options for an Allocator.
type Config struct {
	// TraceWriter, when set, receives one line per allocator operation.
	// The allocator itself stays silent by default.
	TraceWriter io.Writer
}

// DefaultConfig returns a Config with tracing disabled.
func DefaultConfig() *Config {
	return &Config{}
}

// Allocator manages one heap over one linear memory.
type Allocator struct {
	m     mem.Memory
	brk   *brk.Brk
	free  *block.List
	trace io.Writer

	allocs uint64
	frees  uint64
}

// Stats is a point-in-time snapshot of heap bookkeeping.
type Stats struct {
	HeapStart  uint32 // heap base offset
	HeapEnd    uint32 // logical heap end
	Committed  uint32 // platform-committed bytes, >= HeapEnd
	Allocs     uint64 // successful allocations
	Frees      uint64 // accepted frees
	GrowCalls  uint64 // platform page-growth requests
	FreeBlocks uint32 // blocks currently on the free list
	FreeBytes  uint32 // payload bytes reclaimable without growth
}

// New creates an Allocator over m with the default configuration.
func New(m mem.Memory) *Allocator {
	return NewWithConfig(m, DefaultConfig())
}

// NewWithConfig creates an Allocator over m. A nil cfg uses DefaultConfig.
// The memory is not touched until the first operation.
func NewWithConfig(m mem.Memory, cfg *Config) *Allocator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Allocator{
		m:     m,
		brk:   brk.New(m),
		free:  block.NewList(m),
		trace: cfg.TraceWriter,
	}
}

// Alloc allocates size bytes and returns the payload offset, always a
// multiple of 8. A zero size returns offset 0 with a nil error; 0 is never a
// valid payload offset. Exhaustion of the backing store returns
// ErrMemoryExhausted with the heap unchanged.
func (a *Allocator) Alloc(size uint32) (uint32, error) {
	if size == 0 {
		a.tracef("alloc size=0 ptr=0")
		return 0, nil
	}
	need := block.AlignUp(size)
	if need < size || need > math.MaxUint32-block.HeaderSize {
		a.tracef("alloc size=%d err=%v", size, ErrMemoryExhausted)
		return 0, ErrMemoryExhausted
	}

	// Reuse before growth.
	if off, ok := a.free.FindFirstFit(need); ok {
		a.free.Remove(off)
		a.free.MaybeSplit(off, need)
		h := a.mustLoad(off)
		h.Magic = block.MagicAllocated
		h.Next = block.None
		a.mustStore(off, h)
		a.allocs++
		ptr := block.Payload(off)
		a.tracef("alloc size=%d ptr=0x%x reused", size, ptr)
		return ptr, nil
	}

	off, ok := a.brk.Grow(block.HeaderSize + need)
	if !ok {
		a.tracef("alloc size=%d err=%v", size, ErrMemoryExhausted)
		return 0, ErrMemoryExhausted
	}
	a.mustStore(off, block.Header{
		Size:  need,
		Magic: block.MagicAllocated,
		Next:  block.None,
	})
	a.allocs++
	ptr := block.Payload(off)
	a.tracef("alloc size=%d ptr=0x%x grown", size, ptr)
	return ptr, nil
}

// Free returns the block at ptr to the free list. A zero ptr is a no-op. A
// pointer whose header tag is not that of a live allocation (corruption or a
// double free) is silently ignored: memory of doubtful provenance is never
// touched. The block is merged with its immediate higher-address neighbor
// when that neighbor is free; lower-address neighbors are never merged.
func (a *Allocator) Free(ptr uint32) {
	if ptr == 0 {
		return
	}
	off, ok := block.HeaderOf(ptr)
	if !ok {
		a.tracef("free ptr=0x%x ignored", ptr)
		return
	}
	h, ok := block.Load(a.m, off)
	if !ok || h.Magic != block.MagicAllocated {
		a.tracef("free ptr=0x%x ignored", ptr)
		return
	}

	// Forward coalescing only.
	if next := ptr + h.Size; next < a.brk.End() {
		if nh, ok := block.Load(a.m, next); ok && nh.Magic == block.MagicFree {
			a.free.Remove(next)
			h.Size += block.HeaderSize + nh.Size
			a.mustStore(next, block.Header{})
		}
	}

	a.mustStore(off, h)
	a.free.Push(off)
	a.frees++
	a.tracef("free ptr=0x%x size=%d", ptr, h.Size)
}

// Calloc allocates count*size bytes with every payload byte zeroed. A
// product that wraps uint32 fails with ErrSizeOverflow before any
// allocation; a zero product returns offset 0 with a nil error.
func (a *Allocator) Calloc(count, size uint32) (uint32, error) {
	if count != 0 && size != 0 && count > math.MaxUint32/size {
		a.tracef("calloc count=%d size=%d err=%v", count, size, ErrSizeOverflow)
		return 0, ErrSizeOverflow
	}
	total := count * size
	ptr, err := a.Alloc(total)
	if err != nil || ptr == 0 {
		return ptr, err
	}
	if !memops.Fill(a.m, ptr, total, 0) {
		fault("calloc: fresh payload outside committed memory")
	}
	return ptr, nil
}

// Realloc resizes the allocation at ptr to size bytes. A zero ptr behaves as
// Alloc; a zero size behaves as Free and returns offset 0. When the current
// block already holds size bytes the same pointer is returned, with any
// surplus split back onto the free list; otherwise the data moves to a new
// block and the old one is freed. On failure the original block is left
// fully intact. Unlike Free, a pointer with a bad header tag fails with
// ErrBadPointer: deriving a new pointer from untrusted state is unsafe.
func (a *Allocator) Realloc(ptr, size uint32) (uint32, error) {
	if ptr == 0 {
		return a.Alloc(size)
	}
	if size == 0 {
		a.Free(ptr)
		return 0, nil
	}
	off, ok := block.HeaderOf(ptr)
	if !ok {
		return 0, ErrBadPointer
	}
	h, ok := block.Load(a.m, off)
	if !ok || h.Magic != block.MagicAllocated {
		a.tracef("realloc ptr=0x%x err=%v", ptr, ErrBadPointer)
		return 0, ErrBadPointer
	}

	need := block.AlignUp(size)
	if need < size {
		return 0, ErrMemoryExhausted
	}
	if h.Size >= need {
		// Keep in place; no data movement.
		a.free.MaybeSplit(off, need)
		a.tracef("realloc ptr=0x%x size=%d kept", ptr, size)
		return ptr, nil
	}

	newPtr, err := a.Alloc(size)
	if err != nil {
		return 0, err
	}
	if !memops.Copy(a.m, newPtr, ptr, min(h.Size, size)) {
		fault("realloc: live payload outside committed memory")
	}
	a.Free(ptr)
	a.tracef("realloc ptr=0x%x size=%d moved=0x%x", ptr, size, newPtr)
	return newPtr, nil
}

// Stats returns a snapshot of heap bookkeeping. The free-list walk is
// read-only.
func (a *Allocator) Stats() Stats {
	s := Stats{
		HeapStart: a.brk.Start(),
		HeapEnd:   a.brk.End(),
		Committed: a.m.Size(),
		Allocs:    a.allocs,
		Frees:     a.frees,
		GrowCalls: a.brk.GrowCalls(),
	}
	a.free.Walk(func(off uint32, h block.Header) bool {
		s.FreeBlocks++
		s.FreeBytes += h.Size
		return true
	})
	return s
}

func (a *Allocator) mustLoad(off uint32) block.Header {
	h, ok := block.Load(a.m, off)
	if !ok {
		fault(fmt.Sprintf("block header 0x%x outside committed memory", off))
	}
	return h
}

func (a *Allocator) mustStore(off uint32, h block.Header) {
	if !block.Store(a.m, off, h) {
		fault(fmt.Sprintf("block header 0x%x outside committed memory", off))
	}
}

func (a *Allocator) tracef(format string, args ...interface{}) {
	if a.trace == nil {
		return
	}
	fmt.Fprintf(a.trace, format+"\n", args...)
}
