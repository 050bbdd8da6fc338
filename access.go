package gcptr

// Deref checks that h's target is non-null and, if attached, lies within
// its attached block's payload, returning ErrBadDeref or ErrOutOfBounds
// otherwise.
func (h *Handle[T]) Deref() (*T, error) {
	t := h.raw.Target()
	if t == nil {
		return nil, ErrBadDeref
	}
	if b := h.raw.Block(); b != nil && !b.Contains(t) {
		return nil, wrapf(ErrOutOfBounds, "target outside block of size %d", b.Size())
	}
	return (*T)(t), nil
}

// Index computes the address of the i-th element from h's target and
// applies the same bounds check as Deref to the computed address, not just
// h's own target — so p.Index(4) on a 4-element array fails with
// ErrOutOfBounds even though p itself is in bounds.
func (h *Handle[T]) Index(i int) (*T, error) {
	t := h.raw.Target()
	if t == nil {
		return nil, ErrBadDeref
	}
	addr := elemPtr[T](t, i)
	if b := h.raw.Block(); b != nil && !b.Contains(addr) {
		return nil, wrapf(ErrOutOfBounds, "index %d outside block of size %d", i, b.Size())
	}
	return (*T)(addr), nil
}
