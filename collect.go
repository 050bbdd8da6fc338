package gcptr

import (
	"golang.org/x/exp/slog"

	"github.com/vic4key/mark-sweep-smart-pointers/internal/heap"
)

// Collector owns one independent managed heap: its own active-blocks list,
// roots population, threshold, and gc_lock. Most programs need only one,
// constructed once at startup; tests construct one per test case to keep
// cases isolated.
type Collector = heap.Collector

// Config configures a Collector via functional options.
type Config = heap.Config

// Option configures a Config.
type Option = heap.Option

// WithThreshold overrides the default 100 KiB collection threshold.
func WithThreshold(bytes uint64) Option { return heap.WithThreshold(bytes) }

// WithLogger overrides the collector's structured logger (default
// slog.Default()).
func WithLogger(l *slog.Logger) Option { return heap.WithLogger(l) }

// NewCollector constructs a Collector from options.
func NewCollector(opts ...Option) *Collector {
	return heap.NewCollector(heap.NewConfig(opts...))
}

// Collect forces an unconditional collection on c and returns the number of
// bytes freed. Under the debug_gcptr build tag, every still-active block is
// self-validated both before and after the collection runs.
func Collect(c *Collector) uint64 {
	debugValidateAll(c)
	freed := c.Collect(true)
	debugValidateAll(c)
	return freed
}

func debugValidateAll(c *Collector) {
	for _, b := range c.Snapshot() {
		if b.IsActive() {
			DebugValidate(b)
		}
	}
}

// CollectThreshold atomically reads and optionally updates c's collection
// threshold. A zero argument leaves it unchanged.
func CollectThreshold(c *Collector, newThreshold uint64) uint64 {
	return c.CollectThreshold(newThreshold)
}

// Stats returns coarse live-heap and lifetime-collection statistics for c.
func Stats(c *Collector) Statistics {
	blockCount, liveBytes, collections, freed := c.Statistics()
	return Statistics{
		BlockCount:  blockCount,
		LiveBytes:   liveBytes,
		Collections: int(collections),
		FreedBytes:  int(freed),
	}
}

// DetailedStats walks every active block to additionally report per-block
// size extrema, at the cost of a full snapshot rather than just the
// running totals Stats uses.
func DetailedStats(c *Collector) DetailedStatistics {
	var d DetailedStatistics
	d.Clear()
	for _, b := range c.Snapshot() {
		if !b.IsActive() {
			continue
		}
		d.AddBlock(b.Size())
	}
	_, _, collections, freed := c.Statistics()
	d.Collections = int(collections)
	d.FreedBytes = int(freed)
	return d
}
