package gcptr

import (
	"github.com/vic4key/mark-sweep-smart-pointers/internal/heap"
)

// Offset constructs dst as src's target moved by n elements, sharing src's
// attachment, and registers dst independently — `p + n` producing a
// distinct handle rather than mutating p. Passing sess lets dst be
// classified as a member or root like any other constructed handle,
// satisfying the same registration contract as every other constructor.
func Offset[T any](dst *Handle[T], src *Handle[T], n int, sess *Session) {
	dst.raw.SetTarget(elemPtr[T](src.raw.Target(), n))
	dst.raw.AttachBlock(src.raw.Block())
	heap.Register(&dst.raw, sess)
}

// Inc advances h's target by one element in place. Unlike Offset, this
// mutates the existing handle rather than constructing a new one, so no
// re-registration occurs — it is the same handle in the same population it
// always was, the `++p` form.
func (h *Handle[T]) Inc() {
	h.raw.SetTarget(elemPtr[T](h.raw.Target(), 1))
}

// Dec retreats h's target by one element in place.
func (h *Handle[T]) Dec() {
	h.raw.SetTarget(elemPtr[T](h.raw.Target(), -1))
}

// AddAssign advances h's target by n elements in place (`p += n`).
func (h *Handle[T]) AddAssign(n int) {
	h.raw.SetTarget(elemPtr[T](h.raw.Target(), n))
}

// SubAssign retreats h's target by n elements in place (`p -= n`).
func (h *Handle[T]) SubAssign(n int) {
	h.AddAssign(-n)
}

// Less reports whether a's target address is lower than b's (`p < q`),
// typically used to bound a scan across an allocated array.
func Less[T any](a, b *Handle[T]) bool {
	return uintptr(a.raw.Target()) < uintptr(b.raw.Target())
}

// Diff computes the pointer difference, in elements, between a and b's
// targets (`a - b`).
func Diff[T any](a, b *Handle[T]) int {
	ap := uintptr(a.raw.Target())
	bp := uintptr(b.raw.Target())
	return int(ap-bp) / elemSize[T]()
}
