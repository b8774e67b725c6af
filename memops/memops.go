// Package memops provides raw byte primitives over a linear memory: copy,
// fill, and compare. The allocator uses them for zeroing and reallocation;
// they are exported for general use by embedding hosts.
package memops

import (
	"bytes"

	"github.com/wasmheap/wasmheap/mem"
)

// Copy copies n bytes from src to dst. Overlapping ranges are handled
// correctly, like memmove. It reports false, copying nothing, when either
// range falls outside committed memory.
func Copy(m mem.Memory, dst, src, n uint32) bool {
	if n == 0 {
		return true
	}
	s, ok := m.Read(src, n)
	if !ok {
		return false
	}
	d, ok := m.Read(dst, n)
	if !ok {
		return false
	}
	copy(d, s)
	return true
}

// Fill sets n bytes starting at off to v.
func Fill(m mem.Memory, off, n uint32, v byte) bool {
	if n == 0 {
		return true
	}
	b, ok := m.Read(off, n)
	if !ok {
		return false
	}
	for i := range b {
		b[i] = v
	}
	return true
}

// Compare compares n bytes at a against n bytes at b, returning -1, 0, or 1
// like bytes.Compare. ok is false when either range is out of bounds.
func Compare(m mem.Memory, a, b, n uint32) (int, bool) {
	if n == 0 {
		return 0, true
	}
	x, ok := m.Read(a, n)
	if !ok {
		return 0, false
	}
	y, ok := m.Read(b, n)
	if !ok {
		return 0, false
	}
	return bytes.Compare(x, y), true
}
