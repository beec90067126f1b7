package ingest

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/runlens/runlens/internal/fingerprint"
	"github.com/runlens/runlens/internal/report"
	"github.com/stretchr/testify/require"
)

func flatUpload(t *testing.T, doc string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("report.json")
	require.NoError(t, err)
	_, err = f.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const pipelineDoc = `{
	"config": {},
	"suites": [
		{
			"file": "cart.spec.ts",
			"specs": [
				{
					"title": "adds item",
					"tests": [{"status": "expected", "results": [
						{"status": "passed", "duration": 60000, "startTime": "2024-05-02T00:00:00.000Z"}
					]}]
				},
				{
					"title": "removes item",
					"tests": [{"status": "unexpected", "results": [
						{"status": "failed", "duration": 90000, "startTime": "2024-05-02T00:00:13.000Z", "errors": ["boom"]}
					]}]
				}
			]
		}
	]
}`

func TestRunPipeline_FlatReport(t *testing.T) {
	meta := &IngestionMetadata{ProjectSlug: "web-e2e", Environment: "prod", Branch: "main"}

	result, err := RunPipeline(flatUpload(t, pipelineDoc), meta)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	require.Equal(t, 2, result.Stats.Total)
	require.Equal(t, 1, result.Stats.Passed)
	require.Equal(t, 1, result.Stats.Failed)

	// Wall clock spans earliest start to latest end.
	require.Equal(t, int64(103000), result.DurationMS)
	require.Equal(t, "1m 43s", result.Stats.Duration)

	require.Equal(t, "main", result.Meta.Branch)
	require.Equal(t, "production", result.Meta.Environment)

	require.Equal(t, fingerprint.Calculate(result.Records), result.Fingerprint)
	require.NotNil(t, result.Assets)
}

func TestRunPipeline_PrecomputedFingerprintUsedVerbatim(t *testing.T) {
	precomputed := strings.Repeat("cd", 32)
	meta := &IngestionMetadata{ProjectSlug: "web-e2e", Fingerprint: precomputed}

	result, err := RunPipeline(flatUpload(t, pipelineDoc), meta)
	require.NoError(t, err)
	require.Equal(t, precomputed, result.Fingerprint)
}

func TestRunPipeline_SerialSumFallback(t *testing.T) {
	doc := `{
		"config": {},
		"suites": [
			{
				"file": "a.spec.ts",
				"specs": [
					{"title": "one", "tests": [{"status": "expected", "results": [{"status": "passed", "duration": 700}]}]},
					{"title": "two", "tests": [{"status": "expected", "results": [{"status": "passed", "duration": 300}]}]}
				]
			}
		]
	}`

	result, err := RunPipeline(flatUpload(t, doc), &IngestionMetadata{ProjectSlug: "web-e2e"})
	require.NoError(t, err)
	// No start times anywhere: durations sum serially.
	require.Equal(t, int64(1000), result.DurationMS)
}

func TestRunPipeline_NotAZip(t *testing.T) {
	_, err := RunPipeline([]byte("plain text"), &IngestionMetadata{ProjectSlug: "web-e2e"})

	var formatErr *report.ReportFormatError
	require.ErrorAs(t, err, &formatErr)
}

func TestRunPipeline_BranchFallsBackToUnknown(t *testing.T) {
	result, err := RunPipeline(flatUpload(t, pipelineDoc), &IngestionMetadata{ProjectSlug: "web-e2e"})
	require.NoError(t, err)
	require.Equal(t, "unknown", result.Meta.Branch)
}

func TestRunPipeline_PRTitleBranchDerivation(t *testing.T) {
	meta := &IngestionMetadata{ProjectSlug: "web-e2e", PRTitle: "WS-2938: Fix checkout totals"}

	result, err := RunPipeline(flatUpload(t, pipelineDoc), meta)
	require.NoError(t, err)
	require.Equal(t, "WS-2938", result.Meta.Branch)
}
