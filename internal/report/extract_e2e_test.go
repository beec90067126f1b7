package report

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildContainer renders one per-file test container with n tests of the
// given outcome and final-attempt status.
func buildContainer(t *testing.T, file string, n int, outcome, lastStatus string) string {
	t.Helper()

	tests := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		results := []map[string]interface{}{
			{"retry": 0, "status": lastStatus, "duration": 1000 + i*10, "startTime": 1714608000000 + int64(i)*500},
		}
		if outcome == OutcomeFlaky {
			// Flaky tests failed at least once before their final attempt.
			results = append([]map[string]interface{}{
				{"retry": 0, "status": "failed", "duration": 900, "errors": []string{"transient"}},
			}, results...)
		}
		tests = append(tests, map[string]interface{}{
			"testId":  fmt.Sprintf("%s-%d", file, i),
			"title":   fmt.Sprintf("case %d", i),
			"outcome": outcome,
			"results": results,
		})
	}

	doc, err := json.Marshal(map[string]interface{}{
		"fileId":   file,
		"fileName": file,
		"tests":    tests,
	})
	require.NoError(t, err)
	return string(doc)
}

func TestExtractBundle_EndToEndStatusBreakdown(t *testing.T) {
	nested := map[string]string{
		"report.json":   `{"metadata": {}, "startTime": 1714608000000}`,
		"passing.json":  buildContainer(t, "passing.spec.ts", 18, OutcomeExpected, "passed"),
		"failing.json":  buildContainer(t, "failing.spec.ts", 11, OutcomeUnexpected, "failed"),
		"flaky.json":    buildContainer(t, "flaky.spec.ts", 9, OutcomeFlaky, "passed"),
		"skipping.json": buildContainer(t, "skipping.spec.ts", 1, OutcomeSkipped, "skipped"),
	}

	result, err := extractBundle(makeBundle(t, nested))
	require.NoError(t, err)
	require.Len(t, result.Records, 39)

	stats := ComputeStats(result.Records)
	require.Equal(t, 18, stats.Passed)
	require.Equal(t, 11, stats.Failed)
	require.Equal(t, 9, stats.Flaky)
	require.Equal(t, 1, stats.Skipped)
	require.Equal(t, 38, stats.Total)

	for _, rec := range result.Records {
		require.NotEmpty(t, rec.File)
		require.NotEqual(t, "unknown", rec.File)
		require.NotEmpty(t, rec.ID)
		require.NotEmpty(t, rec.Attempts)
	}
}
