package timing

import (
	"time"

	"github.com/runlens/runlens/internal/report"
)

// Entry is one test's contribution to wall-clock computation.
type Entry struct {
	Start      string
	DurationMS int64
}

// FromRecords projects test records onto timing entries.
func FromRecords(records []report.TestRecord) []Entry {
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, Entry{Start: rec.StartTime, DurationMS: rec.DurationMS})
	}
	return entries
}

// WallClock computes the true elapsed time of a parallel run in
// milliseconds: max(start+duration) - min(start) over all entries with a
// parseable start time and non-negative duration. The second return is
// false when no entry qualifies, since a zero would misleadingly claim
// an instantaneous run.
func WallClock(entries []Entry) (int64, bool) {
	var (
		earliest  time.Time
		latestEnd time.Time
		found     bool
	)

	for _, e := range entries {
		if e.DurationMS < 0 {
			continue
		}
		start, err := time.Parse(time.RFC3339Nano, e.Start)
		if err != nil {
			continue
		}
		end := start.Add(time.Duration(e.DurationMS) * time.Millisecond)

		if !found {
			earliest, latestEnd, found = start, end, true
			continue
		}
		if start.Before(earliest) {
			earliest = start
		}
		if end.After(latestEnd) {
			latestEnd = end
		}
	}

	if !found {
		return 0, false
	}
	return latestEnd.Sub(earliest).Milliseconds(), true
}
