package wasmheap

// Error codes
const (
	codeMemoryExhausted uint16 = 0x0001
	codeSizeOverflow    uint16 = 0x0002
	codeBadPointer      uint16 = 0x0003
)

// Errno is a code-carrying allocator error. All recoverable failures are
// surfaced as one of the exported Err* values; the allocator never panics on
// a caller mistake.
type Errno struct {
	code uint16
}

// NewErrno creates a new Errno.
func NewErrno(code uint16) *Errno {
	return &Errno{code: code}
}

// Code returns the numeric error code.
func (e *Errno) Code() uint16 {
	return e.code
}

// Error implements the error interface.
func (e *Errno) Error() string {
	switch e.code {
	case codeMemoryExhausted:
		return "memory exhausted"
	case codeSizeOverflow:
		return "allocation size overflow"
	case codeBadPointer:
		return "bad pointer"
	default:
		return "unknown error"
	}
}

// Error values
var (
	// ErrMemoryExhausted reports that the backing store refused to grow.
	ErrMemoryExhausted = NewErrno(codeMemoryExhausted)
	// ErrSizeOverflow reports a count*size product that wraps.
	ErrSizeOverflow = NewErrno(codeSizeOverflow)
	// ErrBadPointer reports a reallocation of a pointer whose header tag
	// is not that of a live allocation.
	ErrBadPointer = NewErrno(codeBadPointer)
)

// fault reports a contradiction in allocator bookkeeping. Such states cannot
// be recovered from and have no legitimate execution path, so they halt.
func fault(msg string) {
	panic("wasmheap: " + msg)
}
