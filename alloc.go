package gcptr

import (
	"unsafe"

	"github.com/vic4key/mark-sweep-smart-pointers/internal/heap"
)

// Alloc allocates a single element and constructs it via ctor.
func Alloc[T any](dst *Handle[T], sess *Session, ctor Constructor[T]) error {
	return AllocArray(dst, sess, 1, ctor)
}

// AllocArray allocates n elements and constructs each via ctor, committing
// the block to sess's collector on full success or rolling it back on the
// first constructor failure. On success dst's target points at element 0
// and its block references the new block. If a constructor fails, dst
// reverts to a null target and no block, and the returned error wraps
// ErrConstructorFailure. A non-positive n, or a backing allocation that
// cannot be made, returns ErrAllocationFailure without touching dst.
//
// dst must already be a registered handle (constructed via Init or one of
// the From* constructors) before this call: allocation only sets dst's
// target and block attachment, rather than constructing dst itself. The
// handle on whose behalf allocation runs is root or member per its own
// earlier construction; that classification is unaffected by which block
// it happens to allocate.
func AllocArray[T any](dst *Handle[T], sess *Session, n int, ctor Constructor[T]) error {
	if n <= 0 {
		return wrapf(ErrAllocationFailure, "alloc_array requires n > 0, got %d", n)
	}

	elems, err := allocElems[T](n)
	if err != nil {
		return err
	}
	payload := unsafe.Pointer(unsafe.SliceData(elems))

	frame := heap.AllocateBegin(sess, n, elemSize[T](), destroyerFor[T](), payload)

	dst.raw.SetTarget(payload)
	dst.raw.AttachBlock(frame.Block())

	k := 0
	var ctorErr error
	for i := 0; i < n; i++ {
		if err := ctor(frame, &elems[i], i); err != nil {
			ctorErr = err
			break
		}
		k++
	}

	heap.AllocateEnd(sess, frame, k)

	if ctorErr != nil {
		dst.raw.SetTarget(nil)
		dst.raw.AttachBlock(nil)
		return wrapf(ErrConstructorFailure, "element %d: %v", k, ctorErr)
	}
	DebugValidate(frame.Block())
	return nil
}

// allocElems allocates the backing array for n elements of T, recovering a
// runtime allocation panic (out of memory, or an absurdly large n) into
// ErrAllocationFailure instead of letting it unwind the caller's stack —
// the untyped allocator refusing a request must leave the caller with a
// clean error and a still-null handle, not a panic.
func allocElems[T any](n int) (elems []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = wrapf(ErrAllocationFailure, "make: %v", r)
		}
	}()
	elems = make([]T, n)
	return elems, nil
}

// AllocArrayInit allocates n trivially-initialized elements with no
// per-element constructor callback. See InitKind's doc comment for why
// InitUndef and InitZero behave identically on this platform; kind is still
// validated here so an unrecognized tag fails loudly rather than silently
// falling through to zeroing.
func AllocArrayInit[T any](dst *Handle[T], sess *Session, n int, kind InitKind) error {
	switch kind {
	case InitUndef, InitZero:
	default:
		return wrapf(ErrAllocationFailure, "alloc_array_init: unknown InitKind %d", kind)
	}
	return AllocArray(dst, sess, n, func(*Frame, *T, int) error { return nil })
}
