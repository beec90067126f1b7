package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeStats_CountsAndTotal(t *testing.T) {
	records := []TestRecord{
		{Status: StatusPassed},
		{Status: StatusPassed},
		{Status: StatusFailed},
		{Status: StatusTimedOut},
		{Status: StatusFlaky},
		{Status: StatusSkipped},
	}

	stats := ComputeStats(records)

	require.Equal(t, 2, stats.Passed)
	// Timed-out records count as failures.
	require.Equal(t, 2, stats.Failed)
	require.Equal(t, 1, stats.Flaky)
	require.Equal(t, 1, stats.Skipped)
	// Skipped tests never ran, so the total excludes them.
	require.Equal(t, 5, stats.Total)
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	require.Zero(t, stats.Total)
	require.Zero(t, stats.Skipped)
}

func TestSerialDurationMS(t *testing.T) {
	records := []TestRecord{
		{DurationMS: 1500},
		{DurationMS: 500},
		{DurationMS: 0},
	}
	require.Equal(t, int64(2000), SerialDurationMS(records))
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "2m 5s", FormatDuration(125000))
	require.Equal(t, "0m 0s", FormatDuration(0))
	require.Equal(t, "0m 0s", FormatDuration(-10))
	require.Equal(t, "0m 59s", FormatDuration(59999))
	require.Equal(t, "1m 0s", FormatDuration(60000))
}
