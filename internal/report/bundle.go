package report

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/runlens/runlens/internal/archive"
)

// A bundle's shell page embeds the real report as a base64 zip assigned to
// a well-known in-page variable.
var embeddedPayloadRe = regexp.MustCompile(`window\.playwrightReportBase64\s*=\s*"data:application/zip;base64,([^"]*)"`)

const (
	bundleReportDoc = "report.json"

	// attachmentDir holds binary attachment blobs inside the nested
	// archive. Entries under it are never test containers.
	attachmentDir = "data/"
)

// bundleReport is the report-level document of the nested archive. Only
// run-level metadata lives here; per-test data comes from the sibling
// per-file containers.
type bundleReport struct {
	Metadata struct {
		CI *CIInfo `json:"ci"`
	} `json:"metadata"`
	StartTime json.RawMessage `json:"startTime"`
}

// rawFileReport is one per-file test container in the nested archive.
type rawFileReport struct {
	FileID   string    `json:"fileId"`
	FileName string    `json:"fileName"`
	Tests    []rawTest `json:"tests"`
}

type rawTest struct {
	TestID      string       `json:"testId"`
	Title       string       `json:"title"`
	ProjectName string       `json:"projectName"`
	Location    rawLocation  `json:"location"`
	Outcome     string       `json:"outcome"`
	Tags        []string     `json:"tags"`
	Annotations []Annotation `json:"annotations"`
	Results     []rawResult  `json:"results"`
}

type rawLocation struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// extractBundle handles the self-contained shape: decode the embedded
// archive out of the shell page, then walk its per-file containers.
func extractBundle(a *archive.Archive) (*ExtractionResult, error) {
	shell, err := a.Read(shellPageName)
	if err != nil {
		return nil, fmt.Errorf("failed to read shell page: %w", err)
	}

	m := embeddedPayloadRe.FindSubmatch(shell)
	if m == nil {
		return nil, &ReportFormatError{Reason: "shell page carries no embedded report payload", Field: shellPageName}
	}

	payload, err := base64.StdEncoding.DecodeString(string(m[1]))
	if err != nil {
		return nil, &ReportFormatError{Reason: "embedded report payload is not valid base64", Field: shellPageName}
	}

	nested, err := archive.Open(payload)
	if err != nil {
		return nil, &ReportFormatError{Reason: "embedded report payload is not a zip archive", Field: shellPageName}
	}

	result := &ExtractionResult{Assets: nested}

	if nested.Has(bundleReportDoc) {
		data, err := nested.Read(bundleReportDoc)
		if err != nil {
			return nil, fmt.Errorf("failed to read report document: %w", err)
		}
		var doc bundleReport
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, &ReportFormatError{Reason: "report document is not valid JSON", Field: bundleReportDoc}
		}
		result.CI = doc.Metadata.CI
		if ts, ok := normalizeTimestamp(doc.StartTime); ok {
			result.StartTime = ts
		}
	}

	sidecars := scanSidecars(nested)

	for _, name := range nested.Names() {
		if !isTestContainer(name) {
			continue
		}

		data, err := nested.Read(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read test container %s: %w", name, err)
		}

		var file rawFileReport
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, &ReportFormatError{Reason: "test container is not valid JSON", Field: name}
		}

		for _, test := range file.Tests {
			// A descriptor with zero results contributes no record.
			if len(test.Results) == 0 {
				continue
			}
			rec, err := buildBundleRecord(name, file, test, sidecars)
			if err != nil {
				return nil, err
			}
			result.Records = append(result.Records, rec)
		}
	}

	return result, nil
}

// isTestContainer reports whether a nested-archive entry is a per-file
// test container: any JSON entry that is not the report document, not a
// sidecar, and not an attachment blob.
func isTestContainer(name string) bool {
	if name == bundleReportDoc {
		return false
	}
	if strings.HasPrefix(name, attachmentDir) {
		return false
	}
	if strings.HasSuffix(name, SidecarSuffix) {
		return false
	}
	return strings.HasSuffix(name, ".json")
}

func buildBundleRecord(entry string, file rawFileReport, test rawTest, sidecars sidecarTable) (TestRecord, error) {
	filePath := test.Location.File
	if filePath == "" {
		filePath = file.FileName
	}
	if filePath == "" {
		return TestRecord{}, &ReportFormatError{Reason: "test descriptor carries no source file path", Field: entry}
	}

	attempts := buildAttempts(test.Results)
	last := attempts[len(attempts)-1]

	var total int64
	for _, att := range attempts {
		total += att.DurationMS
	}

	id := test.TestID
	if id == "" {
		id = filePath + "#" + test.Title
	}

	rec := TestRecord{
		ID:          id,
		Name:        test.Title,
		File:        filePath,
		Status:      ResolveStatus(test.Outcome, last.Status),
		DurationMS:  total,
		WorkerIndex: test.Results[len(test.Results)-1].WorkerIndex,
		StartTime:   last.StartTime,
		Screenshots: append([]string(nil), last.Screenshots...),
		Attempts:    attempts,
		Metadata: RecordMetadata{
			Project:     test.ProjectName,
			Tags:        test.Tags,
			Annotations: test.Annotations,
		},
	}

	mergeSidecarMetadata(&rec, sidecars)

	return rec, nil
}
