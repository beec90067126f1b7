package report

import "fmt"

// ComputeStats derives the run-level counters from a record set. The
// Duration field is left for the caller, which knows whether wall-clock
// timing was computable.
func ComputeStats(records []TestRecord) RunStats {
	var stats RunStats
	for _, rec := range records {
		switch rec.Status {
		case StatusPassed:
			stats.Passed++
		case StatusFlaky:
			stats.Flaky++
		case StatusSkipped:
			stats.Skipped++
		default:
			stats.Failed++
		}
	}
	// Skipped tests never ran, so they are excluded from the total.
	stats.Total = stats.Passed + stats.Failed + stats.Flaky
	return stats
}

// SerialDurationMS sums all record durations. Used as the duration
// fallback when no record has usable wall-clock timing.
func SerialDurationMS(records []TestRecord) int64 {
	var total int64
	for _, rec := range records {
		total += rec.DurationMS
	}
	return total
}

// FormatDuration renders a millisecond duration as "<minutes>m <seconds>s".
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%dm %ds", ms/60000, (ms%60000)/1000)
}
