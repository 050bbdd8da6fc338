package heap

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/dolthub/swiss"
	"golang.org/x/exp/slog"

	"github.com/vic4key/mark-sweep-smart-pointers/internal/rlock"
)

// DefaultThreshold is the default allocated-since-last-collection threshold,
// 100 KiB.
const DefaultThreshold uint64 = 100 * 1024

// Config configures a Collector. The zero value is not ready to use;
// construct with NewConfig.
type Config struct {
	threshold uint64
	logger    *slog.Logger
}

// Option configures a Config, following the functional-options convention.
type Option func(*Config)

// WithThreshold overrides the default collection threshold.
func WithThreshold(bytes uint64) Option {
	return func(c *Config) { c.threshold = bytes }
}

// WithLogger overrides the collector's structured logger. The default is
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.logger = l }
}

// NewConfig builds a Config from options, applying defaults first.
func NewConfig(opts ...Option) Config {
	c := Config{threshold: DefaultThreshold, logger: slog.Default()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Collector is the process-wide (or, in tests, per-instance) mark-sweep
// collector: the active-blocks list, its lock, the re-entrant gc_lock, the
// threshold policy, and a swiss-map handle table used purely for
// diagnostics (DetailedStats/DumpJSON), so those can enumerate blocks without
// holding activeMu for the duration of a JSON encode.
type Collector struct {
	gcLock rlock.Mutex

	activeMu sync.Mutex
	active   *Block // head of the active-blocks list, threaded via Block.next
	roots    *rootsRegistry

	allocatedSinceLast atomic.Uint64
	threshold           atomic.Uint64

	logger *slog.Logger

	table    *swiss.Map[BlockHandle, *Block]
	nextID   atomic.Uint64

	totalCollections atomic.Uint64
	totalFreed        atomic.Uint64
}

// NewCollector constructs a Collector from Config.
func NewCollector(cfg Config) *Collector {
	c := &Collector{
		logger: cfg.logger,
		table:  swiss.NewMap[BlockHandle, *Block](64),
		roots:  &rootsRegistry{},
	}
	c.threshold.Store(cfg.threshold)
	return c
}

// CollectThreshold atomically reads and optionally updates the threshold. A
// zero argument leaves it unchanged and only reads the previous value.
func (c *Collector) CollectThreshold(newThreshold uint64) uint64 {
	previous := c.threshold.Load()
	if newThreshold != 0 {
		c.threshold.Store(newThreshold)
	}
	return previous
}

// accountAllocation adds size to the allocated-since-last-collection
// counter, called once per committed (non-rolled-back) block.
func (c *Collector) accountAllocation(size int) {
	c.allocatedSinceLast.Add(uint64(size))
}

// maybeCollect offers the collector a chance to run, per allocate_begin
// step 1: a conditional collection triggered by threshold, never blocking
// on anything but gc_lock itself.
func (c *Collector) maybeCollect() {
	c.Collect(false)
}

// promote commits a batch of blocks — the contents of one session's
// new-blocks list at the moment its construction stack emptied — to the
// global active list atomically with respect to the collector, and adds
// each to the diagnostic handle table.
func (c *Collector) promote(blocks []*Block) {
	if len(blocks) == 0 {
		return
	}

	c.activeMu.Lock()
	for _, b := range blocks {
		b.active = true
		b.handle = BlockHandle(c.nextID.Add(1))
		b.next = c.active
		c.active = b
		c.table.Put(b.handle, b)
	}
	c.activeMu.Unlock()

	c.logger.Debug("gcptr: promoted blocks", slog.Int("count", len(blocks)))
}

// Collect runs a full collection cycle: the re-entrant lock, threshold
// check, a forced runtime GC, mark phase, sweep phase, and reclaim phase, in
// that order.
func (c *Collector) Collect(unconditional bool) uint64 {
	depth := c.gcLock.Enter()
	defer c.gcLock.Exit()

	if depth > 1 {
		// Already running gc on this goroutine (e.g. a destructor running
		// during sweep triggered a nested allocation). Do not re-enter.
		return 0
	}

	if !unconditional && c.allocatedSinceLast.Load() < c.threshold.Load() {
		return 0
	}
	c.allocatedSinceLast.Store(0)

	// A root whose last strong reference has gone out of scope is only
	// truly gone once the Go runtime has actually collected it; until then
	// its weak.Pointer slot in the roots registry still resolves and the
	// mark phase would treat it as live. Force a real GC cycle here so mark
	// sees an up-to-date view of which roots survive, rather than depending
	// on whenever the runtime's own GC happens to run next.
	runtime.GC()

	c.activeMu.Lock()
	garbage := c.markAndSweepLocked()
	c.activeMu.Unlock()

	// Reclaim runs destructor callbacks, which may themselves allocate and
	// so call back into promote (activeMu.Lock()) on this same goroutine;
	// it must run with activeMu released or that would self-deadlock on
	// the non-re-entrant activeMu.
	freed, swept := c.reclaim(garbage)

	c.totalCollections.Add(1)
	c.totalFreed.Add(freed)
	c.logger.Debug("gcptr: collection complete",
		slog.Uint64("freed_bytes", freed),
		slog.Int("blocks_swept", swept))

	return freed
}

// markAndSweepLocked performs the mark and sweep phases and returns the
// list of now-garbage blocks (threaded via Block.next), leaving reclaim to
// the caller. It must be called with activeMu held; it acquires and
// releases roots_lock internally (active before roots, per the fixed lock
// order).
func (c *Collector) markAndSweepLocked() (garbage *Block) {
	// Mark phase: an explicit worklist rather than recursion, since mark
	// depth is bounded only by the depth of the object graph and an
	// unbounded call stack risks overflow on a deep or cyclic graph.
	var worklist []*Block
	c.roots.mark(func(b *Block) {
		if b.active && !b.marked {
			b.marked = true
			worklist = append(worklist, b)
		}
	})
	for len(worklist) > 0 {
		b := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for m := b.members; m != nil; m = m.next {
			mb := m.Block()
			if mb != nil && mb.active && !mb.marked {
				mb.marked = true
				worklist = append(worklist, mb)
			}
		}
	}

	// Sweep phase: partition the active list into retained and garbage.
	var retained *Block
	for b := c.active; b != nil; {
		next := b.next
		if b.marked {
			b.marked = false
			b.next = retained
			retained = b
		} else {
			b.active = false
			b.next = garbage
			garbage = b
		}
		b = next
	}
	c.active = retained

	return garbage
}

// reclaim runs the destructor callback and frees each block in garbage
// (threaded via Block.next). Called without activeMu held, since reclaim
// may run arbitrary destructor code, including code that allocates and
// triggers promote on this same goroutine.
func (c *Collector) reclaim(garbage *Block) (freedBytes uint64, blocksSwept int) {
	for b := garbage; b != nil; {
		next := b.next
		freedBytes += uint64(b.reclaim())

		c.activeMu.Lock()
		c.table.Delete(b.handle)
		c.activeMu.Unlock()

		blocksSwept++
		b = next
	}
	return freedBytes, blocksSwept
}

// Snapshot returns every currently active block, for diagnostics. The
// returned slice is a point-in-time copy; blocks in it may already have
// been collected by the time the caller inspects them if this method races
// with a Collect call.
func (c *Collector) Snapshot() []*Block {
	c.activeMu.Lock()
	defer c.activeMu.Unlock()

	out := make([]*Block, 0, c.table.Count())
	c.table.Iter(func(_ BlockHandle, b *Block) bool {
		out = append(out, b)
		return false
	})
	return out
}

// Statistics gathers coarse live-heap and lifetime-collection statistics.
func (c *Collector) Statistics() (blockCount int, liveBytes int, collections, freedBytes uint64) {
	c.activeMu.Lock()
	for b := c.active; b != nil; b = b.next {
		blockCount++
		liveBytes += b.Size()
	}
	c.activeMu.Unlock()
	return blockCount, liveBytes, c.totalCollections.Load(), c.totalFreed.Load()
}

// RootCount returns the number of currently live root handles, for
// diagnostics and tests.
func (c *Collector) RootCount() int {
	return c.roots.count()
}
