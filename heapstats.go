package gcptr

import "math"

// Statistics is a coarse snapshot of the live heap: how many blocks are
// currently active and how many bytes they occupy.
type Statistics struct {
	BlockCount int
	LiveBytes  int
	Collections int
	FreedBytes  int
}

func (s *Statistics) Clear() {
	s.BlockCount = 0
	s.LiveBytes = 0
	s.Collections = 0
	s.FreedBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.BlockCount += other.BlockCount
	s.LiveBytes += other.LiveBytes
	s.Collections += other.Collections
	s.FreedBytes += other.FreedBytes
}

// DetailedStatistics extends Statistics with per-block size extrema,
// gathered by walking the active-block list rather than just its totals.
type DetailedStatistics struct {
	Statistics
	BlockSizeMin int
	BlockSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.BlockSizeMin = math.MaxInt
	s.BlockSizeMax = 0
}

// AddBlock folds one active block's size into the running totals and
// extrema.
func (s *DetailedStatistics) AddBlock(size int) {
	s.BlockCount++
	s.LiveBytes += size

	if size < s.BlockSizeMin {
		s.BlockSizeMin = size
	}
	if size > s.BlockSizeMax {
		s.BlockSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)

	if other.BlockSizeMin < s.BlockSizeMin {
		s.BlockSizeMin = other.BlockSizeMin
	}
	if other.BlockSizeMax > s.BlockSizeMax {
		s.BlockSizeMax = other.BlockSizeMax
	}
}
