// Package mem defines the linear memory substrate the allocator manages.
//
// Memory is the exact subset of wazero's api.Memory the allocator needs, so
// an exported WASM memory plugs in directly. LocalMemory provides the same
// semantics in-process for hosts that embed the allocator without a WASM
// module, and for deterministic tests.
package mem

import (
	"github.com/tetratelabs/wazero/api"
)

// PageSize is the WASM linear memory page size in bytes. The backing store
// only ever grows in whole pages.
const PageSize = 65536

// Memory is a growable linear memory addressed by byte offset.
//
// Size reports the currently committed byte count. Grow requests deltaPages
// additional pages and reports the previous page count; ok is false when the
// platform refuses. Read returns a view aliasing the underlying buffer; the
// view is invalidated by Grow.
type Memory interface {
	Size() uint32
	Grow(deltaPages uint32) (previousPages uint32, ok bool)
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
	ReadUint32Le(offset uint32) (uint32, bool)
	WriteUint32Le(offset uint32, v uint32) bool
}

// A wazero module's exported memory satisfies Memory as-is.
var _ Memory = (api.Memory)(nil)
