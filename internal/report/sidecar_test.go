package report

import (
	"testing"

	"github.com/runlens/runlens/internal/archive"
	"github.com/stretchr/testify/require"
)

func TestScanSidecars(t *testing.T) {
	a, err := archive.Open(makeZip(t, map[string]string{
		"data/a.png.metadata.json": `{"type": "metadata", "data": {"epic": "Checkout", "labels": [{"name": "severity", "value": "critical"}]}}`,
		"data/b.png.metadata.json": `{"type": "attachment", "data": {"epic": "ignored"}}`,
		"data/c.png.metadata.json": `not json`,
		"data/d.png":               "binary",
	}))
	require.NoError(t, err)

	table := scanSidecars(a)
	require.Len(t, table, 1)
	require.Equal(t, "Checkout", table["data/a.png"].Epic)
	require.Equal(t, "severity", table["data/a.png"].Labels[0].Name)
}

func TestMergeSidecarMetadata_ConcatAndFirstWins(t *testing.T) {
	table := sidecarTable{
		"data/a": {
			Epic:        "Checkout",
			Labels:      []Label{{Name: "severity", Value: "critical"}},
			Parameters:  []Parameter{{Name: "browser", Value: "firefox"}},
			Description: "first",
		},
		"data/b": {
			Epic:        "Other",
			Labels:      []Label{{Name: "owner", Value: "payments"}},
			Description: "second",
		},
	}

	rec := TestRecord{
		Attempts: []TestAttempt{
			{Attachments: []Attachment{{ContentType: MetadataAttachmentType, Path: "data/a" + SidecarSuffix}}},
			{Attachments: []Attachment{
				{ContentType: MetadataAttachmentType, Path: "data/b" + SidecarSuffix},
				{ContentType: "text/plain", Path: "data/a" + SidecarSuffix},
			}},
		},
	}

	mergeSidecarMetadata(&rec, table)

	// Labels and parameters concatenate across matches.
	require.Len(t, rec.Metadata.Labels, 2)
	require.Len(t, rec.Metadata.Parameters, 1)
	// Epic and descriptions are first-non-empty-wins.
	require.Equal(t, "Checkout", rec.Metadata.Epic)
	require.Equal(t, "first", rec.Metadata.Description)
}

func TestMergeSidecarMetadata_NoMatchLeavesRecordUntouched(t *testing.T) {
	rec := TestRecord{
		Attempts: []TestAttempt{
			{Attachments: []Attachment{{ContentType: MetadataAttachmentType, Path: "data/missing" + SidecarSuffix}}},
		},
	}

	mergeSidecarMetadata(&rec, sidecarTable{"data/other": {Epic: "x"}})
	require.Empty(t, rec.Metadata.Epic)
	require.Empty(t, rec.Metadata.Labels)
}

func TestExtractBundle_SidecarEnrichment(t *testing.T) {
	nested := map[string]string{
		"suite.json": `{
			"fileName": "a.spec.ts",
			"tests": [
				{
					"title": "annotated",
					"outcome": "expected",
					"results": [
						{
							"status": "passed",
							"attachments": [
								{"name": "meta", "contentType": "` + MetadataAttachmentType + `", "path": "data/m1.metadata.json"}
							]
						}
					]
				}
			]
		}`,
		"data/m1.metadata.json": `{"type": "metadata", "data": {"epic": "Onboarding", "parameters": [{"name": "locale", "value": "de"}]}}`,
	}

	result, err := extractBundle(makeBundle(t, nested))
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	require.Equal(t, "Onboarding", result.Records[0].Metadata.Epic)
	require.Equal(t, "locale", result.Records[0].Metadata.Parameters[0].Name)
}
