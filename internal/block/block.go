// Package block defines the per-allocation header layout and the intrusive
// free list threaded through freed blocks' own memory.
package block

import (
	"fmt"

	"github.com/wasmheap/wasmheap/mem"
)

const (
	// HeaderSize is the fixed byte count of a block header. It is a
	// multiple of Align, so payloads directly after a header stay aligned.
	HeaderSize = 16
	// Align is the allocation quantum; every payload size is rounded up
	// to it and every payload offset is a multiple of it.
	Align = 8

	// MagicAllocated tags a live block's header.
	MagicAllocated = 0xA110CA7E
	// MagicFree tags a block currently on the free list.
	MagicFree = 0xF4EEB10C
)

// None is the nil free-list link.
const None = ^uint32(0)

// Header is the in-region record preceding every payload. Layout, little
// endian: size u32 | magic u32 | next u32 | pad u32. Size counts payload
// bytes only. Next is meaningful only while Magic is MagicFree.
type Header struct {
	Size  uint32
	Magic uint32
	Next  uint32
}

// AlignUp rounds n up to the allocation quantum. Wraps for n within Align-1
// of the uint32 maximum; callers must reject such sizes first.
func AlignUp(n uint32) uint32 {
	return (n + Align - 1) &^ (Align - 1)
}

// Payload returns the payload offset of the block whose header is at off.
func Payload(off uint32) uint32 {
	return off + HeaderSize
}

// HeaderOf recovers the header offset for a payload pointer.
func HeaderOf(payload uint32) (uint32, bool) {
	if payload < HeaderSize {
		return 0, false
	}
	return payload - HeaderSize, true
}

// Load reads the header at off. ok is false when the header lies outside
// committed memory.
func Load(m mem.Memory, off uint32) (Header, bool) {
	size, ok := m.ReadUint32Le(off)
	if !ok {
		return Header{}, false
	}
	magic, ok := m.ReadUint32Le(off + 4)
	if !ok {
		return Header{}, false
	}
	next, ok := m.ReadUint32Le(off + 8)
	if !ok {
		return Header{}, false
	}
	return Header{Size: size, Magic: magic, Next: next}, true
}

// Store writes h at off, zeroing the pad word.
func Store(m mem.Memory, off uint32, h Header) bool {
	return m.WriteUint32Le(off, h.Size) &&
		m.WriteUint32Le(off+4, h.Magic) &&
		m.WriteUint32Le(off+8, h.Next) &&
		m.WriteUint32Le(off+12, 0)
}

func mustLoad(m mem.Memory, off uint32) Header {
	h, ok := Load(m, off)
	if !ok {
		panic(fmt.Sprintf("wasmheap: block header 0x%x outside committed memory", off))
	}
	return h
}

func mustStore(m mem.Memory, off uint32, h Header) {
	if !Store(m, off, h) {
		panic(fmt.Sprintf("wasmheap: block header 0x%x outside committed memory", off))
	}
}
