package timing

import (
	"testing"

	"github.com/runlens/runlens/internal/report"
	"github.com/stretchr/testify/require"
)

func TestWallClock_ParallelOverlap(t *testing.T) {
	entries := []Entry{
		{Start: "2024-05-02T00:00:00.000Z", DurationMS: 60000},
		{Start: "2024-05-02T00:00:13.000Z", DurationMS: 90000},
		{Start: "2024-05-02T00:00:05.000Z", DurationMS: 10000},
	}

	// Latest end is 13s + 90s = 103s past the earliest start.
	ms, ok := WallClock(entries)
	require.True(t, ok)
	require.Equal(t, int64(103000), ms)
}

func TestWallClock_SingleEntry(t *testing.T) {
	ms, ok := WallClock([]Entry{{Start: "2024-05-02T00:00:00Z", DurationMS: 2500}})
	require.True(t, ok)
	require.Equal(t, int64(2500), ms)
}

func TestWallClock_SkipsUnusableEntries(t *testing.T) {
	entries := []Entry{
		{Start: "", DurationMS: 5000},
		{Start: "not a timestamp", DurationMS: 5000},
		{Start: "2024-05-02T00:00:00Z", DurationMS: -1},
		{Start: "2024-05-02T00:00:00Z", DurationMS: 1000},
	}

	ms, ok := WallClock(entries)
	require.True(t, ok)
	require.Equal(t, int64(1000), ms)
}

func TestWallClock_NoUsableEntries(t *testing.T) {
	_, ok := WallClock(nil)
	require.False(t, ok)

	_, ok = WallClock([]Entry{{Start: "", DurationMS: 100}, {Start: "garbage", DurationMS: 100}})
	require.False(t, ok)
}

func TestFromRecords(t *testing.T) {
	records := []report.TestRecord{
		{StartTime: "2024-05-02T00:00:00Z", DurationMS: 100},
		{StartTime: "", DurationMS: 200},
	}

	entries := FromRecords(records)
	require.Len(t, entries, 2)
	require.Equal(t, "2024-05-02T00:00:00Z", entries[0].Start)
	require.Equal(t, int64(200), entries[1].DurationMS)
}
