package fingerprint

import (
	"testing"

	"github.com/runlens/runlens/internal/report"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []report.TestRecord {
	return []report.TestRecord{
		{File: "a.spec.ts", Name: "adds item", Status: report.StatusPassed, DurationMS: 1200},
		{File: "b.spec.ts", Name: "logs in", Status: report.StatusFailed, DurationMS: 900},
		{File: "a.spec.ts", Name: "removes item", Status: report.StatusFlaky},
	}
}

func TestCalculate_OrderIndependent(t *testing.T) {
	records := sampleRecords()
	reversed := []report.TestRecord{records[2], records[1], records[0]}

	require.Equal(t, Calculate(records), Calculate(reversed))
}

func TestCalculate_MetadataAndTimingIndependent(t *testing.T) {
	records := sampleRecords()
	base := Calculate(records)

	records[0].DurationMS = 99999
	records[1].Metadata.Epic = "Checkout"
	records[2].StartTime = "2024-05-02T00:00:00.000Z"
	records[2].Screenshots = []string{"data/shot.png"}

	require.Equal(t, base, Calculate(records))
}

func TestCalculate_OrderIndependentWithSameFileAndName(t *testing.T) {
	// The same test run under two runner projects shares file and name
	// but can differ in status; the digest must not depend on which
	// projection came first.
	records := []report.TestRecord{
		{File: "login.spec.ts", Name: "logs in", Status: report.StatusPassed},
		{File: "login.spec.ts", Name: "logs in", Status: report.StatusFailed},
	}
	reversed := []report.TestRecord{records[1], records[0]}

	require.Equal(t, Calculate(records), Calculate(reversed))
}

func TestCalculate_StatusSensitive(t *testing.T) {
	records := sampleRecords()
	base := Calculate(records)

	records[1].Status = report.StatusPassed
	require.NotEqual(t, base, Calculate(records))
}

func TestCalculate_Format(t *testing.T) {
	fp := Calculate(sampleRecords())
	require.True(t, Valid(fp))

	require.True(t, Valid(Calculate(nil)))
}

func TestValid(t *testing.T) {
	require.True(t, Valid("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"))
	require.False(t, Valid(""))
	require.False(t, Valid("abc"))
	// Uppercase hex is rejected.
	require.False(t, Valid("0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF"))
	require.False(t, Valid("g123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"))
}
