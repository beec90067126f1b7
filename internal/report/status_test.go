package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveStatus_SkippedLastAttemptAlwaysWins(t *testing.T) {
	// A test whose final attempt skipped is skipped, no matter what the
	// runner's outcome classification says.
	require.Equal(t, StatusSkipped, ResolveStatus(OutcomeFlaky, StatusSkipped))
	require.Equal(t, StatusSkipped, ResolveStatus(OutcomeUnexpected, StatusSkipped))
	require.Equal(t, StatusSkipped, ResolveStatus(OutcomeExpected, StatusSkipped))
	require.Equal(t, StatusSkipped, ResolveStatus(OutcomeSkipped, StatusSkipped))
}

func TestResolveStatus_ExpectedPassesThroughLastAttempt(t *testing.T) {
	require.Equal(t, StatusPassed, ResolveStatus(OutcomeExpected, StatusPassed))
	require.Equal(t, StatusTimedOut, ResolveStatus(OutcomeExpected, StatusTimedOut))
	require.Equal(t, StatusFailed, ResolveStatus(OutcomeExpected, StatusFailed))
}

func TestResolveStatus_Flaky(t *testing.T) {
	require.Equal(t, StatusFlaky, ResolveStatus(OutcomeFlaky, StatusPassed))
	require.Equal(t, StatusFlaky, ResolveStatus(OutcomeFlaky, StatusFailed))
}

func TestResolveStatus_DefaultsToFailed(t *testing.T) {
	require.Equal(t, StatusFailed, ResolveStatus(OutcomeUnexpected, StatusPassed))
	require.Equal(t, StatusFailed, ResolveStatus("", StatusPassed))
	require.Equal(t, StatusFailed, ResolveStatus("something-new", StatusTimedOut))
}
