package report

import (
	"encoding/json"
	"fmt"
)

// Status is the canonical final status of a test execution.
type Status string

const (
	StatusPassed   Status = "passed"
	StatusFailed   Status = "failed"
	StatusFlaky    Status = "flaky"
	StatusSkipped  Status = "skipped"
	StatusTimedOut Status = "timedOut"
)

// Label is a structured name/value annotation attached via sidecar metadata.
type Label struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Parameter is a named test parameter attached via sidecar metadata.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Annotation is a runner-supplied test annotation (e.g. "slow", "fixme").
type Annotation struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// StepError is the error attached to a step. The source encodes it either
// as a plain string or as an object carrying at least a message field.
type StepError struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// UnmarshalJSON accepts both encodings of a step error.
func (e *StepError) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		e.Message = s
		return nil
	}

	type plain StepError
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("step error must be a string or an object: %w", err)
	}
	*e = StepError(p)
	return nil
}

// Step is one step record within an attempt. Steps nest and are never
// flattened during extraction.
type Step struct {
	Title    string     `json:"title"`
	Duration int64      `json:"duration"`
	Category string     `json:"category,omitempty"`
	Steps    []Step     `json:"steps,omitempty"`
	Error    *StepError `json:"error,omitempty"`
}

// Attachment is a non-image attachment carried by an attempt.
// Path is set for attachments stored as archive entries, Body for inline
// textual content.
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Path        string `json:"path,omitempty"`
	Body        string `json:"body,omitempty"`
}

// TestAttempt is one execution attempt of a test.
// Attempt indices are assigned in source order; the last attempt in a
// record's list is the one that determines the final observable outcome.
type TestAttempt struct {
	Index       int          `json:"index"`
	Status      Status       `json:"status"`
	DurationMS  int64        `json:"durationMs"`
	Error       string       `json:"error,omitempty"`
	ErrorDetail string       `json:"errorDetail,omitempty"`
	Screenshots []string     `json:"screenshots,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	StartTime   string       `json:"startTime,omitempty"`
	Steps       []Step       `json:"steps,omitempty"`
}

// RecordMetadata is the free-form metadata bag of a test record.
type RecordMetadata struct {
	Project         string       `json:"project,omitempty"`
	Tags            []string     `json:"tags,omitempty"`
	Annotations     []Annotation `json:"annotations,omitempty"`
	Epic            string       `json:"epic,omitempty"`
	Labels          []Label      `json:"labels,omitempty"`
	Parameters      []Parameter  `json:"parameters,omitempty"`
	Description     string       `json:"description,omitempty"`
	DescriptionHTML string       `json:"descriptionHtml,omitempty"`
}

// TestRecord is one canonical test execution, possibly spanning multiple
// retry attempts. Records are immutable after extraction except for
// screenshot-reference resolution, which rewrites archive-relative paths
// to external storage references after upload.
type TestRecord struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	File        string         `json:"file"`
	Status      Status         `json:"status"`
	DurationMS  int64          `json:"durationMs"`
	WorkerIndex *int           `json:"workerIndex,omitempty"`
	StartTime   string         `json:"startTime,omitempty"`
	Screenshots []string       `json:"screenshots,omitempty"`
	Attempts    []TestAttempt  `json:"attempts"`
	Metadata    RecordMetadata `json:"metadata"`
}

// CIInfo is the CI provenance block found in a bundle's report document.
type CIInfo struct {
	Commit    string            `json:"commit,omitempty"`
	CommitURL string            `json:"commitUrl,omitempty"`
	BuildURL  string            `json:"buildUrl,omitempty"`
	PRTitle   string            `json:"prTitle,omitempty"`
	PRURL     string            `json:"prUrl,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
}

// RunMetadata is cross-cutting information about a run, independent of any
// single test.
type RunMetadata struct {
	Commit      string
	CommitURL   string
	BuildURL    string
	PRTitle     string
	PRURL       string
	CIEnv       map[string]string
	StartTime   string
	Environment string
	Branch      string
}

// RunStats are the derived run-level counters. Total counts non-skipped
// records only.
type RunStats struct {
	Total    int    `json:"total"`
	Passed   int    `json:"passed"`
	Failed   int    `json:"failed"`
	Flaky    int    `json:"flaky"`
	Skipped  int    `json:"skipped"`
	Duration string `json:"duration"`
}
