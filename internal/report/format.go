package report

import (
	"fmt"
	"path"
	"strings"

	"github.com/runlens/runlens/internal/archive"
)

// Format identifies which of the two supported archive shapes an upload
// matched.
type Format int

const (
	// FormatBundle is a self-contained report: a static HTML shell with a
	// second zip archive embedded inline as base64.
	FormatBundle Format = iota + 1

	// FormatFlat is the legacy shape: a single JSON report document plus
	// sibling attachment files.
	FormatFlat
)

const (
	shellPageName  = "index.html"
	flatReportName = "report.json"
)

// ReportFormatError indicates the archive matches neither supported shape
// or a required document failed schema validation. It is fatal for the
// ingestion request and never retried.
type ReportFormatError struct {
	Reason string
	Field  string
}

func (e *ReportFormatError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("unsupported report format: %s (at %s)", e.Reason, e.Field)
	}
	return fmt.Sprintf("unsupported report format: %s", e.Reason)
}

// DetectedFormat is the result of format detection, selected once before
// extraction dispatches.
type DetectedFormat struct {
	Kind Format

	// ReportEntry is the name of the flat report document. Empty for
	// bundles.
	ReportEntry string
}

// DetectFormat inspects archive entry names and decides which extractor
// handles the upload.
func DetectFormat(a *archive.Archive) (DetectedFormat, error) {
	if a.Has(shellPageName) {
		return DetectedFormat{Kind: FormatBundle}, nil
	}

	if a.Has(flatReportName) {
		return DetectedFormat{Kind: FormatFlat, ReportEntry: flatReportName}, nil
	}

	// Fall back to any top-level JSON document.
	for _, name := range a.Names() {
		if path.Dir(name) == "." && strings.HasSuffix(name, ".json") {
			return DetectedFormat{Kind: FormatFlat, ReportEntry: name}, nil
		}
	}

	return DetectedFormat{}, &ReportFormatError{Reason: "archive contains neither an HTML report bundle nor a JSON report document"}
}

// ExtractionResult is the canonical output shared by both extractors.
type ExtractionResult struct {
	Records   []TestRecord
	CI        *CIInfo
	StartTime string

	// Assets reads attachment bytes still referenced by archive-relative
	// paths (screenshot upload happens after extraction). For bundles this
	// is the nested archive, for flat reports the upload archive itself.
	Assets *archive.Archive
}

// Extract runs format detection and the matching extractor.
func Extract(a *archive.Archive) (*ExtractionResult, error) {
	format, err := DetectFormat(a)
	if err != nil {
		return nil, err
	}

	switch format.Kind {
	case FormatBundle:
		return extractBundle(a)
	default:
		return extractFlat(a, format.ReportEntry)
	}
}
