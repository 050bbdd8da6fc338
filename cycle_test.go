package gcptr_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/vic4key/mark-sweep-smart-pointers"
)

// cycleA, cycleB, and cycleC form a three-way reference cycle used to
// exercise reclamation of unreachable cyclic graphs: A allocates a B, B
// allocates a C, and C's handle points straight back at A.
type cycleA struct {
	P gcptr.Handle[cycleB]
}

type cycleB struct {
	P gcptr.Handle[cycleC]
}

type cycleC struct {
	P gcptr.Handle[cycleA]
}

func newCycleA(frame *gcptr.Frame, a *cycleA, _ int) error {
	sess := frame.Session()

	var self gcptr.Handle[cycleA]
	gcptr.FromPtr(&self, a, sess)
	self.AttachFrame(frame)

	gcptr.Init(&a.P, sess)
	return gcptr.Alloc(&a.P, sess, func(bFrame *gcptr.Frame, b *cycleB, i int) error {
		return newCycleB(bFrame, b, &self)
	})
}

func newCycleB(frame *gcptr.Frame, b *cycleB, root *gcptr.Handle[cycleA]) error {
	sess := frame.Session()

	gcptr.Init(&b.P, sess)
	return gcptr.Alloc(&b.P, sess, func(cFrame *gcptr.Frame, c *cycleC, i int) error {
		return newCycleC(cFrame, c, root)
	})
}

func newCycleC(frame *gcptr.Frame, c *cycleC, root *gcptr.Handle[cycleA]) error {
	sess := frame.Session()

	gcptr.Init(&c.P, sess)
	gcptr.Assign(&c.P, root)
	return nil
}

// buildCycles constructs pa in place as an n-element array of cycleA, each
// seeding its own A->B->C->A cycle, and returns extraRoots extra root handles
// all attached to the same array.
func buildCycles(t *testing.T, c *gcptr.Collector, sess *gcptr.Session, pa *gcptr.Handle[cycleA], n, extraRoots int) (extras []gcptr.Handle[cycleA]) {
	t.Helper()

	gcptr.Init(pa, sess)
	require.NoError(t, gcptr.AllocArray(pa, sess, n, newCycleA))

	extras = make([]gcptr.Handle[cycleA], extraRoots)
	for i := range extras {
		gcptr.FromHandle(&extras[i], pa, sess)
	}
	return extras
}

func TestThreeNodeCycleReclaim(t *testing.T) {
	c := gcptr.NewCollector()
	sess := gcptr.NewSession(c)

	var pa gcptr.Handle[cycleA]
	extras := buildCycles(t, c, sess, &pa, 3, 3)

	require.Zero(t, gcptr.Collect(c), "three extra roots plus pa keep the array reachable")

	pa.Detach()
	require.Zero(t, gcptr.Collect(c))

	extras[0].Detach()
	require.Zero(t, gcptr.Collect(c))

	extras[1].Detach()
	require.Zero(t, gcptr.Collect(c), "extras[2] alone still keeps the array reachable")

	extras[2].Detach()
	freed := gcptr.Collect(c)
	require.NotZero(t, freed, "the array and its 6 cyclic B and C sub-blocks must be reclaimed together")

	stats := gcptr.Stats(c)
	require.Zero(t, stats.BlockCount)
	require.Zero(t, stats.LiveBytes)
}

// TestFromInteriorSharesContainerAttachment covers the
// ptr<ptr<A>> ppa0(pa[0].p->p, &C::p) construction form: a handle whose
// target is a field nested inside an already-constructed array element, but
// which shares that array's own block attachment rather than allocating or
// attaching to anything new.
func TestFromInteriorSharesContainerAttachment(t *testing.T) {
	c := gcptr.NewCollector()
	sess := gcptr.NewSession(c)

	var pa gcptr.Handle[cycleA]
	gcptr.Init(&pa, sess)
	require.NoError(t, gcptr.AllocArray(&pa, sess, 1, newCycleA))

	a, err := pa.Deref()
	require.NoError(t, err)

	var ppb gcptr.Handle[gcptr.Handle[cycleB]]
	gcptr.FromInterior(&ppb, &pa, unsafe.Pointer(&a.P), sess)

	target, err := ppb.Deref()
	require.NoError(t, err)
	require.Same(t, &a.P, target)

	pa.Detach()
	require.Zero(t, gcptr.Collect(c), "ppb was independently attached to pa's block and still keeps it reachable")

	ppb.Detach()
	freed := gcptr.Collect(c)
	require.NotZero(t, freed, "no root keeps the array reachable once both pa and ppb have detached")
}

func TestCyclicGraphSurvivesWhileRootAttached(t *testing.T) {
	c := gcptr.NewCollector()
	sess := gcptr.NewSession(c)

	var pa gcptr.Handle[cycleA]
	gcptr.Init(&pa, sess)
	require.NoError(t, gcptr.AllocArray(&pa, sess, 1, newCycleA))

	require.Zero(t, gcptr.Collect(c))
	require.Equal(t, 3, gcptr.Stats(c).BlockCount, "the A, B, and C blocks are all still reachable through pa")

	pa.Detach()
	freed := gcptr.Collect(c)
	require.NotZero(t, freed)
	require.Zero(t, gcptr.Stats(c).BlockCount)
}
