package gcptr_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/vic4key/mark-sweep-smart-pointers"
)

func TestDumpJSONAndDetailedStats(t *testing.T) {
	c := gcptr.NewCollector()
	sess := gcptr.NewSession(c)

	var small gcptr.Handle[int]
	gcptr.Init(&small, sess)
	require.NoError(t, gcptr.AllocArrayInit(&small, sess, 1, gcptr.InitZero))

	var big gcptr.Handle[int]
	gcptr.Init(&big, sess)
	require.NoError(t, gcptr.AllocArrayInit(&big, sess, 8, gcptr.InitZero))

	intSize := int(unsafe.Sizeof(int(0)))

	details := gcptr.DetailedStats(c)
	require.Equal(t, 2, details.BlockCount)
	require.Equal(t, intSize, details.BlockSizeMin)
	require.Equal(t, 8*intSize, details.BlockSizeMax)

	var buf bytes.Buffer
	require.NoError(t, gcptr.DumpJSON(&buf, c))

	var dumped []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &dumped))
	require.Len(t, dumped, 2)
	for _, entry := range dumped {
		require.Contains(t, entry, "Handle")
		require.Contains(t, entry, "Elements")
		require.Contains(t, entry, "Bytes")
	}
}

func TestAddDetailedStatisticsAccumulates(t *testing.T) {
	var a gcptr.DetailedStatistics
	a.Clear()
	a.AddBlock(64)
	a.Collections = 1
	a.FreedBytes = 64

	var b gcptr.DetailedStatistics
	b.Clear()
	b.AddBlock(16)
	b.AddBlock(256)
	b.Collections = 2
	b.FreedBytes = 32

	var total gcptr.DetailedStatistics
	total.Clear()
	total.AddDetailedStatistics(&a)
	total.AddDetailedStatistics(&b)

	require.Equal(t, 3, total.BlockCount)
	require.Equal(t, 64+16+256, total.LiveBytes)
	require.Equal(t, 16, total.BlockSizeMin)
	require.Equal(t, 256, total.BlockSizeMax)
	require.Equal(t, 3, total.Collections)
	require.Equal(t, 96, total.FreedBytes)
}
