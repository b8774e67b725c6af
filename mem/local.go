package mem

import (
	"encoding/binary"
)

// LocalConfig holds configuration options for a LocalMemory.
type LocalConfig struct {
	// InitialPages is the page count committed up front.
	InitialPages uint32
	// MaxPages caps growth, like a WASM memory's declared maximum.
	MaxPages uint32
}

// DefaultLocalConfig returns a LocalConfig with sensible defaults:
// one initial page, growable to 16 MiB.
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{
		InitialPages: 1,
		MaxPages:     256,
	}
}

// LocalMemory is an in-process Memory with WASM page semantics. It is not
// safe for concurrent use, matching the allocator's single-threaded model.
type LocalMemory struct {
	data      []byte
	maxPages  uint32
	growCalls uint64
}

// NewLocal creates a LocalMemory from cfg. A nil cfg uses DefaultLocalConfig.
func NewLocal(cfg *LocalConfig) *LocalMemory {
	if cfg == nil {
		cfg = DefaultLocalConfig()
	}
	max := cfg.MaxPages
	if max < cfg.InitialPages {
		max = cfg.InitialPages
	}
	return &LocalMemory{
		data:     make([]byte, cfg.InitialPages*PageSize),
		maxPages: max,
	}
}

// Size returns the committed byte count.
func (m *LocalMemory) Size() uint32 {
	return uint32(len(m.data))
}

// Grow commits deltaPages additional zeroed pages and returns the previous
// page count. It refuses growth past the configured maximum without mutating
// state. Every call is counted, so tests can assert that reuse paths never
// reach the platform.
func (m *LocalMemory) Grow(deltaPages uint32) (uint32, bool) {
	m.growCalls++
	prev := uint32(len(m.data)) / PageSize
	if deltaPages == 0 {
		return prev, true
	}
	if uint64(prev)+uint64(deltaPages) > uint64(m.maxPages) {
		return 0, false
	}
	grown := make([]byte, (prev+deltaPages)*PageSize)
	copy(grown, m.data)
	m.data = grown
	return prev, true
}

// GrowCalls reports how many times Grow has been invoked.
func (m *LocalMemory) GrowCalls() uint64 {
	return m.growCalls
}

// Read returns a view over [offset, offset+byteCount). The view aliases the
// backing array and is invalidated by Grow.
func (m *LocalMemory) Read(offset, byteCount uint32) ([]byte, bool) {
	if !m.inBounds(offset, byteCount) {
		return nil, false
	}
	return m.data[offset : offset+byteCount : offset+byteCount], true
}

// Write copies v into memory at offset.
func (m *LocalMemory) Write(offset uint32, v []byte) bool {
	if !m.inBounds(offset, uint32(len(v))) {
		return false
	}
	copy(m.data[offset:], v)
	return true
}

// ReadUint32Le reads a little-endian uint32 at offset.
func (m *LocalMemory) ReadUint32Le(offset uint32) (uint32, bool) {
	if !m.inBounds(offset, 4) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(m.data[offset:]), true
}

// WriteUint32Le writes a little-endian uint32 at offset.
func (m *LocalMemory) WriteUint32Le(offset uint32, v uint32) bool {
	if !m.inBounds(offset, 4) {
		return false
	}
	binary.LittleEndian.PutUint32(m.data[offset:], v)
	return true
}

func (m *LocalMemory) inBounds(offset, byteCount uint32) bool {
	return uint64(offset)+uint64(byteCount) <= uint64(len(m.data))
}

var _ Memory = (*LocalMemory)(nil)
