package gcptr

import (
	"unsafe"

	"github.com/vic4key/mark-sweep-smart-pointers/internal/heap"
)

// InitKind selects how a newly allocated array's backing storage is
// prepared before element constructors run.
type InitKind int

const (
	// InitUndef requests that payload bytes be left as freshly allocated.
	// The Go runtime always zero-initializes new allocations, so on this
	// platform InitUndef and InitZero are observably identical; the
	// distinction is kept for API parity with the two-tag contract and to
	// make call sites self-documenting about which behavior they depend on.
	InitUndef InitKind = iota
	// InitZero requests that payload bytes be zeroed before any element
	// constructor runs.
	InitZero
)

// Handle is a typed tracked pointer into collector-managed memory. The zero
// value is a detached, unregistered handle; use Init or one of the From*
// constructors to bring it into the collector's bookkeeping before use.
type Handle[T any] struct {
	raw heap.Raw
}

// Session re-exports heap.Session as the handle to a mutator goroutine's
// construction-stack state. Callers create one Session per goroutine (or
// per logical unit of work) and pass it to every allocation and
// construction call on that goroutine.
type Session = heap.Session

// NewSession creates a Session bound to a Collector.
func NewSession(c *Collector) *Session { return heap.NewSession(c) }

// Frame re-exports heap.Frame, identifying the block currently under
// construction. A nil Frame means "no block is under construction" (root
// classification).
type Frame = heap.Frame

// Destructible is implemented by element types that need to run cleanup
// code when their containing block is reclaimed. Types that do not
// implement it are treated as trivially destructible: no destroy callback
// is generated for their blocks.
type Destructible interface {
	Destruct()
}

// Constructor initializes one element of a newly allocated array. frame
// identifies the block under construction, so that constructors which
// themselves allocate sub-blocks or handles can classify those correctly
// as members by passing frame's Session (via frame.Block() being non-nil).
type Constructor[T any] func(frame *Frame, elem *T, index int) error

func elemSize[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

func elemPtr[T any](base unsafe.Pointer, index int) unsafe.Pointer {
	return unsafe.Add(base, index*elemSize[T]())
}

func destroyerFor[T any]() func(unsafe.Pointer, int) {
	var zero T
	if _, ok := any(&zero).(Destructible); !ok {
		return nil // trivially destructible: no destroy callback needed
	}
	return func(payload unsafe.Pointer, n int) {
		elems := unsafe.Slice((*T)(payload), n)
		for i := range elems {
			destructOne(&elems[i])
		}
	}
}

// destructOne recovers from a panicking Destruct so that one broken element
// destructor cannot leak or abort the rest of the block's teardown.
func destructOne[T any](elem *T) {
	defer func() { _ = recover() }()
	if d, ok := any(elem).(Destructible); ok {
		d.Destruct()
	}
}
