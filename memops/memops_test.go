package memops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasmheap/wasmheap/mem"
)

func newMem(t *testing.T) *mem.LocalMemory {
	t.Helper()
	return mem.NewLocal(&mem.LocalConfig{InitialPages: 1, MaxPages: 1})
}

func TestCopy(t *testing.T) {
	m := newMem(t)
	require.True(t, m.Write(0, []byte{1, 2, 3, 4, 5}))

	require.True(t, Copy(m, 100, 0, 5))

	got, ok := m.Read(100, 5)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, got)
}

func TestCopy_Overlapping(t *testing.T) {
	tests := []struct {
		name string
		dst  uint32
		src  uint32
		want []byte // full 8-byte window starting at 0
	}{
		{"forward overlap", 2, 0, []byte{1, 2, 1, 2, 3, 4, 5, 0}},
		{"backward overlap", 0, 2, []byte{3, 4, 5, 0, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMem(t)
			require.True(t, m.Write(0, []byte{1, 2, 3, 4, 5}))

			require.True(t, Copy(m, tt.dst, tt.src, 5))

			got, ok := m.Read(0, 8)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCopy_ZeroAndBounds(t *testing.T) {
	m := newMem(t)

	assert.True(t, Copy(m, 0, mem.PageSize, 0))
	assert.False(t, Copy(m, 0, mem.PageSize-2, 4))
	assert.False(t, Copy(m, mem.PageSize-2, 0, 4))
}

func TestFill(t *testing.T) {
	m := newMem(t)

	require.True(t, Fill(m, 16, 32, 0xAB))

	got, ok := m.Read(16, 32)
	require.True(t, ok)
	for _, b := range got {
		require.Equal(t, byte(0xAB), b)
	}

	// Neighbors untouched.
	before, _ := m.Read(15, 1)
	after, _ := m.Read(48, 1)
	assert.Zero(t, before[0])
	assert.Zero(t, after[0])

	assert.True(t, Fill(m, 0, 0, 0xFF))
	assert.False(t, Fill(m, mem.PageSize-1, 2, 0xFF))
}

func TestCompare(t *testing.T) {
	m := newMem(t)
	require.True(t, m.Write(0, []byte{1, 2, 3}))
	require.True(t, m.Write(8, []byte{1, 2, 3}))
	require.True(t, m.Write(16, []byte{1, 2, 4}))

	tests := []struct {
		name string
		a, b uint32
		n    uint32
		want int
	}{
		{"equal", 0, 8, 3, 0},
		{"less", 0, 16, 3, -1},
		{"greater", 16, 0, 3, 1},
		{"zero length", 0, 16, 0, 0},
		{"prefix equal", 0, 16, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Compare(m, tt.a, tt.b, tt.n)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := Compare(m, 0, mem.PageSize-1, 2)
	assert.False(t, ok)
}
