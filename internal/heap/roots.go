package heap

import (
	"sync"
	"weak"
)

// rootsRegistry is one collector's roots population. A strong intrusive
// list of root handles would itself become a GC root holding every
// ever-registered handle reachable forever, defeating the point of tracking
// roots at all. Instead this registry stores weak.Pointer[Raw] entries: a
// root that is only reachable through its own weak.Pointer entry here is,
// correctly, not reachable at all from the mutator's point of view, and its
// slot is dropped the next time the registry is walked.
//
// A rootsRegistry belongs to exactly one Collector, so independent
// Collectors (as used by this module's own tests, which need a fresh heap
// per test case) never see each other's roots.
type rootsRegistry struct {
	mu    sync.Mutex
	slots []weak.Pointer[Raw]
}

func (r *rootsRegistry) register(raw *Raw) {
	raw.prev = nil // real root marker: never equals &raw, unlike the member sentinel
	r.mu.Lock()
	r.slots = append(r.slots, weak.Make(raw))
	r.mu.Unlock()
}

// mark walks every live root, invoking visit on each root's attached block
// (if any), and compacts away entries whose Raw has already been collected
// by the runtime. It must be called with the collector's active-list lock
// already held, per the fixed active-before-roots acquisition order.
//
// A root is only actually removed here once its weak.Pointer resolves to
// nil, which only happens after the Go runtime has really collected the
// referent — Collector.Collect forces a runtime.GC() immediately beforehand
// so this observes an up-to-date view rather than whatever the runtime's
// own GC schedule happened to leave behind.
func (r *rootsRegistry) mark(visit func(*Block)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := r.slots[:0]
	for _, w := range r.slots {
		raw := w.Value()
		if raw == nil {
			continue
		}
		live = append(live, w)
		if b := raw.Block(); b != nil {
			visit(b)
		}
	}
	r.slots = live
}

// count returns the number of live root slots, used for diagnostics.
func (r *rootsRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, w := range r.slots {
		if w.Value() != nil {
			n++
		}
	}
	return n
}
