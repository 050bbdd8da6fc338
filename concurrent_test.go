package gcptr_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vic4key/mark-sweep-smart-pointers"
)

// runCycleUnattached builds and immediately detaches an array of three
// three-node A->B->C->A cycles,
// mirroring buildCycles but returning an error instead of calling into
// *testing.T, since t.FailNow (which require uses) must only run on the
// goroutine executing the test function itself.
func runCycleUnattached(c *gcptr.Collector) error {
	sess := gcptr.NewSession(c)

	var pa gcptr.Handle[cycleA]
	gcptr.Init(&pa, sess)
	if err := gcptr.AllocArray(&pa, sess, 3, newCycleA); err != nil {
		return err
	}
	pa.Detach()
	return nil
}

func TestConcurrentMutators(t *testing.T) {
	const threads = 8

	c := gcptr.NewCollector()

	errs := make([]error, threads)
	var wg sync.WaitGroup
	wg.Add(threads)
	for i := 0; i < threads; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = runCycleUnattached(c)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	freed := gcptr.Collect(c)
	require.NotZero(t, freed)

	stats := gcptr.Stats(c)
	require.Zero(t, stats.LiveBytes, "every thread's cycle must be fully unreachable after joining")
	require.Zero(t, stats.BlockCount)
}
