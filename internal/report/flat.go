package report

import (
	"encoding/json"
	"fmt"

	"github.com/runlens/runlens/internal/archive"
)

// flatReport is the legacy single-document shape. config and suites are
// required; everything else is tolerated and ignored.
type flatReport struct {
	Config json.RawMessage `json:"config"`
	Suites []flatSuite     `json:"suites"`
}

type flatSuite struct {
	Title  string      `json:"title"`
	File   string      `json:"file"`
	Suites []flatSuite `json:"suites"`
	Specs  []flatSpec  `json:"specs"`
}

type flatSpec struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	File  string     `json:"file"`
	Tests []flatTest `json:"tests"`
}

// flatTest carries the outcome classification in its status field; the
// per-attempt result statuses live in results.
type flatTest struct {
	ProjectName string       `json:"projectName"`
	Status      string       `json:"status"`
	Annotations []Annotation `json:"annotations"`
	Results     []rawResult  `json:"results"`
}

// extractFlat parses the single JSON report document and recursively
// walks its suite tree. No per-attempt history exists in this format, so
// each record carries a single attempt built from the representative
// (last) result.
func extractFlat(a *archive.Archive, entry string) (*ExtractionResult, error) {
	data, err := a.Read(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to read report document: %w", err)
	}

	var doc flatReport
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ReportFormatError{Reason: "report document is not valid JSON", Field: entry}
	}
	if len(doc.Config) == 0 {
		return nil, &ReportFormatError{Reason: "missing required field", Field: entry + ".config"}
	}
	if doc.Suites == nil {
		return nil, &ReportFormatError{Reason: "missing required field", Field: entry + ".suites"}
	}

	result := &ExtractionResult{Assets: a}
	sidecars := scanSidecars(a)

	for i, suite := range doc.Suites {
		path := fmt.Sprintf("%s.suites[%d]", entry, i)
		if err := walkFlatSuite(suite, suite.File, path, sidecars, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func walkFlatSuite(suite flatSuite, inheritedFile, path string, sidecars sidecarTable, result *ExtractionResult) error {
	file := suite.File
	if file == "" {
		file = inheritedFile
	}

	for i, spec := range suite.Specs {
		specPath := fmt.Sprintf("%s.specs[%d]", path, i)
		if err := buildFlatRecords(spec, file, specPath, sidecars, result); err != nil {
			return err
		}
	}

	for i, child := range suite.Suites {
		childPath := fmt.Sprintf("%s.suites[%d]", path, i)
		if err := walkFlatSuite(child, file, childPath, sidecars, result); err != nil {
			return err
		}
	}

	return nil
}

func buildFlatRecords(spec flatSpec, inheritedFile, path string, sidecars sidecarTable, result *ExtractionResult) error {
	file := spec.File
	if file == "" {
		file = inheritedFile
	}
	if file == "" {
		return &ReportFormatError{Reason: "spec carries no source file path", Field: path + ".file"}
	}

	for _, test := range spec.Tests {
		if len(test.Results) == 0 {
			continue
		}

		// The last result is the representative one.
		representative := buildAttempt(0, test.Results[len(test.Results)-1])

		var total int64
		for _, r := range test.Results {
			if r.Duration > 0 {
				total += r.Duration
			}
		}

		id := spec.ID
		if id == "" {
			id = file + "#" + spec.Title
		}
		if test.ProjectName != "" {
			id += "@" + test.ProjectName
		}

		rec := TestRecord{
			ID:          id,
			Name:        spec.Title,
			File:        file,
			Status:      ResolveStatus(test.Status, representative.Status),
			DurationMS:  total,
			WorkerIndex: test.Results[len(test.Results)-1].WorkerIndex,
			StartTime:   representative.StartTime,
			Screenshots: append([]string(nil), representative.Screenshots...),
			Attempts:    []TestAttempt{representative},
			Metadata: RecordMetadata{
				Project:     test.ProjectName,
				Annotations: test.Annotations,
			},
		}

		mergeSidecarMetadata(&rec, sidecars)

		result.Records = append(result.Records, rec)
	}

	return nil
}
