package report

// Outcome classification values reported by the test runner. An outcome is
// a test-level judgment across all attempts, distinct from a single
// attempt's result.
const (
	OutcomeExpected   = "expected"
	OutcomeFlaky      = "flaky"
	OutcomeUnexpected = "unexpected"
	OutcomeSkipped    = "skipped"
)

// ResolveStatus maps a test's outcome classification and the result of its
// final attempt to the canonical status.
//
// The ordering is load-bearing: a test that ultimately skipped must never
// be reported as flaky or failed, even if earlier attempts failed.
func ResolveStatus(outcome string, lastAttemptStatus Status) Status {
	switch {
	case lastAttemptStatus == StatusSkipped:
		return StatusSkipped
	case outcome == OutcomeExpected:
		return lastAttemptStatus
	case outcome == OutcomeFlaky:
		return StatusFlaky
	default:
		return StatusFailed
	}
}
