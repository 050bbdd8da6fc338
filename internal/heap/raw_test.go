package heap

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestRegisterRootWhenNoConstructionInProgress(t *testing.T) {
	c := NewCollector(NewConfig())
	sess := NewSession(c)

	var r Raw
	Register(&r, sess)

	require.False(t, r.IsMember())
	require.Equal(t, 1, c.RootCount())
}

func TestRegisterMemberWhenAddressFallsInsideBlock(t *testing.T) {
	c := NewCollector(NewConfig())
	sess := NewSession(c)

	type holder struct {
		raw Raw
	}
	elems := make([]holder, 2)
	payload := unsafe.Pointer(&elems[0])

	frame := AllocateBegin(sess, 2, int(unsafe.Sizeof(holder{})), nil, payload)
	Register(&elems[0].raw, sess)
	Register(&elems[1].raw, sess)
	AllocateEnd(sess, frame, 2)

	require.True(t, elems[0].raw.IsMember())
	require.True(t, elems[1].raw.IsMember())
	require.Zero(t, c.RootCount())
}

func TestRegisterRootForLocalHandleInsideConstructor(t *testing.T) {
	c := NewCollector(NewConfig())
	sess := NewSession(c)

	type holder struct {
		raw Raw
	}
	elems := make([]holder, 1)
	payload := unsafe.Pointer(&elems[0])

	frame := AllocateBegin(sess, 1, int(unsafe.Sizeof(holder{})), nil, payload)

	// A local Raw declared during construction escapes to its own
	// allocation, not the block's payload, so it must classify as a root
	// even though a construction frame is active.
	var local Raw
	Register(&local, sess)

	AllocateEnd(sess, frame, 1)

	require.False(t, local.IsMember())
	require.Equal(t, 1, c.RootCount())
}

func TestAttachBlockNeverReregisters(t *testing.T) {
	c := NewCollector(NewConfig())
	sess := NewSession(c)

	var r Raw
	Register(&r, sess)
	require.Equal(t, 1, c.RootCount())

	b := NewBlock(1, 8, unsafe.Pointer(&r), nil)
	r.AttachBlock(b)

	require.Equal(t, 1, c.RootCount(), "attachment must not change root/member classification")
	require.Same(t, b, r.Block())
}
