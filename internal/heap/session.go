package heap

import "unsafe"

// Session holds one mutator goroutine's construction stack and new-blocks
// list. A Session must not be shared between goroutines; callers typically
// keep one per goroutine (e.g. in a goroutine-local variable captured by a
// closure, or passed down an explicit call chain), which is this module's
// substitute for ambient thread-local storage.
type Session struct {
	collector *Collector
	stack     []*Block
	newBlocks []*Block
}

// NewSession creates a Session bound to the given collector.
func NewSession(c *Collector) *Session {
	return &Session{collector: c}
}

// Frame identifies the block currently under construction at some depth of
// a Session's construction stack. A nil *Frame, or a Frame whose Block is
// nil, means "no block is under construction here" — i.e. root
// classification. Handle construction functions in the parent package take
// a *Session and classify against its CurrentFrame; element constructors
// receive the *Frame of the block they are building.
type Frame struct {
	session *Session
	block   *Block
}

// Block returns the block this frame represents, or nil for a nil Frame.
func (f *Frame) Block() *Block {
	if f == nil {
		return nil
	}
	return f.block
}

// Session returns the session that produced this frame, or nil for a nil
// Frame. Constructors invoked during allocation use this to keep
// registering further handles against the same goroutine's construction
// stack.
func (f *Frame) Session() *Session {
	if f == nil {
		return nil
	}
	return f.session
}

// CurrentFrame returns a Frame for the block at the top of this session's
// construction stack, or nil if no block is currently under construction
// (the session is at "root" depth).
func (s *Session) CurrentFrame() *Frame {
	if len(s.stack) == 0 {
		return nil
	}
	return &Frame{session: s, block: s.stack[len(s.stack)-1]}
}

// AllocateBegin offers the collector a chance to run, pushes a new block
// header wrapping the already-allocated payload onto this session's
// construction stack, and returns a Frame the caller uses both to construct
// elements and to later call AllocateEnd. The caller (the generic Handle[T]
// facade) is responsible for allocating payload itself via make([]T, n),
// since only it knows T's layout; heap stays untyped.
func AllocateBegin(sess *Session, n, elemSize int, destroy func(unsafe.Pointer, int), payload unsafe.Pointer) *Frame {
	sess.collector.maybeCollect()

	b := NewBlock(n, elemSize, payload, destroy)
	sess.stack = append(sess.stack, b)
	return &Frame{session: sess, block: b}
}

// AllocateEnd commits or rolls back the block a matching AllocateBegin
// pushed. k is the number of elements actually constructed; k < n signals a
// constructor failure partway through, triggering rollback of just this
// block. Rollback still falls through to the promote check below, exactly
// as the outermost failing block's own construction-stack pop can empty the
// stack: any sub-blocks earlier, successfully-constructed elements pushed
// onto this session's new-blocks list before the failure must still be
// promoted, or they are stranded outside both the active list and the
// handle table for as long as the session lives. When the construction
// stack empties, every block accumulated in this session's new-blocks list
// is promoted to the collector's active list atomically — allocation only
// becomes externally visible once the outermost call in a nested
// construction finishes.
func AllocateEnd(sess *Session, frame *Frame, k int) {
	sess.stack = sess.stack[:len(sess.stack)-1]
	b := frame.block

	if k < b.n {
		b.truncate(k)
		b.reclaim()
	} else {
		sess.collector.accountAllocation(b.Size())
		sess.newBlocks = append(sess.newBlocks, b)
	}

	if len(sess.stack) == 0 {
		sess.collector.promote(sess.newBlocks)
		sess.newBlocks = nil
	}
}
