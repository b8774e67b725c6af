package wasmheap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
)

// memoryModule is a hand-assembled WASM module exporting a single memory of
// one page, growable to sixteen: the smallest host a heap can live in.
var memoryModule = []byte{
	0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00, // \0asm, version 1
	0x05, 0x04, 0x01, // memory section: one entry
	0x01, 0x01, 0x10, // limits: min 1 page, max 16
	0x07, 0x0A, 0x01, // export section: one entry
	0x06, 0x6D, 0x65, 0x6D, 0x6F, 0x72, 0x79, // "memory"
	0x02, 0x00, // memory index 0
}

func TestAllocatorOnWazeroMemory(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	mod, err := r.Instantiate(ctx, memoryModule)
	require.NoError(t, err)
	m := mod.Memory()
	require.NotNil(t, m)

	a := New(m)

	p1, err := a.Alloc(64)
	require.NoError(t, err)
	assert.Zero(t, p1%8)

	// The payload is real linear memory.
	require.True(t, m.Write(p1, []byte("hello, heap")))

	p2, err := a.Calloc(8, 8)
	require.NoError(t, err)
	require.NotEqual(t, p1, p2)
	zeros, ok := m.Read(p2, 64)
	require.True(t, ok)
	assert.Equal(t, make([]byte, 64), zeros)

	p3, err := a.Realloc(p1, 256)
	require.NoError(t, err)
	got, ok := m.Read(p3, 11)
	require.True(t, ok)
	assert.Equal(t, []byte("hello, heap"), got)

	a.Free(p2)
	a.Free(p3)

	// Sixteen pages is 1 MiB: a 4 MiB request must fail cleanly.
	big, err := a.Alloc(4 * 1024 * 1024)
	assert.Zero(t, big)
	assert.ErrorIs(t, err, ErrMemoryExhausted)

	// And the heap still works afterwards.
	p4, err := a.Alloc(32)
	require.NoError(t, err)
	assert.NotZero(t, p4)
}

func TestWazeroMemoryGrowSemantics(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	mod, err := r.Instantiate(ctx, memoryModule)
	require.NoError(t, err)
	m := mod.Memory()
	require.NotNil(t, m)

	// The properties brk depends on: Size in bytes, Grow in pages
	// returning the previous page count, refusal past the maximum.
	assert.Equal(t, uint32(65536), m.Size())

	prev, ok := m.Grow(2)
	require.True(t, ok)
	assert.Equal(t, uint32(1), prev)
	assert.Equal(t, uint32(3*65536), m.Size())

	_, ok = m.Grow(14)
	assert.False(t, ok)
	assert.Equal(t, uint32(3*65536), m.Size())
}
