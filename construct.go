package gcptr

import (
	"unsafe"

	"github.com/vic4key/mark-sweep-smart-pointers/internal/heap"
)

// Init default-constructs dst: target and block are left null, and dst
// self-registers into sess's roots or, if sess's construction stack is
// non-empty, into the members list of the block at its top.
func Init[T any](dst *Handle[T], sess *Session) {
	heap.Register(&dst.raw, sess)
}

// FromPtr constructs dst pointing at addr, initially detached, and
// registers it exactly as Init does. addr is opaque to the handle: no
// validity check is performed here.
func FromPtr[T any](dst *Handle[T], addr *T, sess *Session) {
	dst.raw.SetTarget(unsafe.Pointer(addr))
	heap.Register(&dst.raw, sess)
}

// FromHandle copy-constructs dst from src: target and block are inherited,
// and dst registers independently of src (its own storage address may
// classify it differently than src was classified).
func FromHandle[T any](dst *Handle[T], src *Handle[T], sess *Session) {
	dst.raw.SetTarget(src.raw.Target())
	dst.raw.AttachBlock(src.raw.Block())
	heap.Register(&dst.raw, sess)
}

// FromInterior constructs dst inheriting src's block attachment but with
// its own target address, addr — used for a handle to a member field or
// element that must share its container's attachment. U need not equal T:
// addr may point at a field nested inside U's own storage.
func FromInterior[T, U any](dst *Handle[T], src *Handle[U], addr unsafe.Pointer, sess *Session) {
	dst.raw.SetTarget(addr)
	dst.raw.AttachBlock(src.raw.Block())
	heap.Register(&dst.raw, sess)
}
