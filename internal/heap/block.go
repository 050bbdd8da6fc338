// Package heap implements the untyped tracked-pointer machinery underneath
// the gcptr package: block headers, the root/member handle registry, the
// construction-stack protocol, and the mark-sweep collector. None of it is
// generic over element type; the generic Handle[T] facade in the parent
// package casts to and from unsafe.Pointer at the boundary.
package heap

import (
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
)

// BlockHandle is a stable numeric identifier for a Block, used as the key of
// the collector's diagnostic block table so diagnostics can enumerate blocks
// without walking the active list.
type BlockHandle uint64

// NoBlock is the BlockHandle value meaning "no block".
const NoBlock BlockHandle = 0

// Block is the header prefixed to every managed allocation. It carries no
// destructor state of its own beyond the destroy callback; element storage
// lives in payload, an unsafe.Pointer to a Go-allocated, GC-tracked backing
// array supplied by the typed facade.
type Block struct {
	handle   BlockHandle
	n        int
	elemSize int
	payload  unsafe.Pointer
	destroy  func(payload unsafe.Pointer, n int)

	members *Raw // head of the members list; nil when empty

	active bool
	marked bool
	next   *Block // link within whichever single list currently owns this block
}

// NewBlock constructs a block header over an already-allocated payload. It
// does not link the block into any list; callers push it onto a
// construction stack via Session.
func NewBlock(n, elemSize int, payload unsafe.Pointer, destroy func(unsafe.Pointer, int)) *Block {
	return &Block{n: n, elemSize: elemSize, payload: payload, destroy: destroy}
}

// Handle returns the block's table identifier, or NoBlock if it was never
// promoted to a collector's active list.
func (b *Block) Handle() BlockHandle { return b.handle }

// N is the element count last committed for this block.
func (b *Block) N() int { return b.n }

// Size is the total payload size in bytes.
func (b *Block) Size() int { return b.n * b.elemSize }

// Payload returns the base address of the block's element storage.
func (b *Block) Payload() unsafe.Pointer { return b.payload }

// Contains reports whether addr lies within [payload, payload+n*elemSize).
func (b *Block) Contains(addr unsafe.Pointer) bool {
	if addr == nil || b.payload == nil {
		return false
	}
	start := uintptr(b.payload)
	end := start + uintptr(b.n*b.elemSize)
	p := uintptr(addr)
	return p >= start && p < end
}

// IsActive reports whether the block has been committed to the global
// active-blocks list and is therefore eligible for collection.
func (b *Block) IsActive() bool { return b.active }

// linkMember pushes raw onto this block's members list and writes the
// prev == self sentinel that marks it as a member. Members are never
// individually unlinked (Raw has no deregistration step): the whole list is discarded
// together with the block at reclaim time, so a singly-linked list threaded
// through next is sufficient.
func (b *Block) linkMember(raw *Raw) {
	raw.prev = raw
	raw.next = b.members
	b.members = raw
}

// Validate checks this block's own internal consistency: a non-negative
// element count, a positive element size whenever elements exist, a
// non-nil payload whenever the block is active, and every member handle's
// address actually falling within this block's own payload.
func (b *Block) Validate() error {
	if b.n < 0 {
		return cerrors.Errorf("block %d has negative element count %d", b.handle, b.n)
	}
	if b.n > 0 && b.elemSize <= 0 {
		return cerrors.Errorf("block %d has %d elements but non-positive element size %d", b.handle, b.n, b.elemSize)
	}
	if b.active && b.n > 0 && b.payload == nil {
		return cerrors.Errorf("block %d is active with %d elements but a nil payload", b.handle, b.n)
	}
	for m := b.members; m != nil; m = m.next {
		if !b.Contains(unsafe.Pointer(m)) {
			return cerrors.Errorf("block %d has a member handle outside its own payload", b.handle)
		}
	}
	return nil
}

// truncate overwrites the element count, used when a constructor fails
// partway through alloc_array so the destroy callback only walks the
// elements that were actually constructed.
func (b *Block) truncate(k int) { b.n = k }

// reclaim invokes the destroy callback (if any), swallowing panics from
// individual element destructors so one broken destructor cannot abort
// reclamation of the rest of the block, then drops the block's own
// references so the Go runtime can free the backing storage.
func (b *Block) reclaim() int {
	freed := b.Size()
	if b.destroy != nil {
		func() {
			defer func() { _ = recover() }()
			b.destroy(b.payload, b.n)
		}()
	}
	b.payload = nil
	b.members = nil
	b.next = nil
	return freed
}
