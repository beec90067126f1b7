package report

import (
	"encoding/json"
	"strings"
	"time"
)

const imageContentTypePrefix = "image/"

// timestampLayout is the normalized ISO-8601 form for all start times.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// rawResult is one attempt result as emitted by the runner. Both archive
// shapes share this encoding.
type rawResult struct {
	Retry       int             `json:"retry"`
	WorkerIndex *int            `json:"workerIndex"`
	StartTime   json.RawMessage `json:"startTime"`
	Duration    int64           `json:"duration"`
	Status      string          `json:"status"`
	Errors      []string        `json:"errors"`
	Attachments []rawAttachment `json:"attachments"`
	Steps       []Step          `json:"steps"`
}

type rawAttachment struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Path        string `json:"path"`
	Body        string `json:"body"`
}

// buildAttempts converts raw attempt results into TestAttempts, assigning
// indices in source order.
func buildAttempts(results []rawResult) []TestAttempt {
	attempts := make([]TestAttempt, 0, len(results))
	for i, r := range results {
		attempts = append(attempts, buildAttempt(i, r))
	}
	return attempts
}

func buildAttempt(index int, r rawResult) TestAttempt {
	att := TestAttempt{
		Index:      index,
		Status:     parseAttemptStatus(r.Status),
		DurationMS: r.Duration,
		Steps:      r.Steps,
	}
	if att.DurationMS < 0 {
		att.DurationMS = 0
	}

	if len(r.Errors) > 0 {
		att.Error = r.Errors[0]
		att.ErrorDetail = strings.Join(r.Errors, "\n\n")
	}

	for _, a := range r.Attachments {
		switch {
		case strings.HasPrefix(a.ContentType, imageContentTypePrefix) && a.Path != "":
			// Only the path is retained here; bytes are uploaded and the
			// reference rewritten after extraction.
			att.Screenshots = append(att.Screenshots, a.Path)
		case a.ContentType == MetadataAttachmentType && a.Path != "":
			// Kept so sidecar metadata can be matched by path during
			// record construction.
			att.Attachments = append(att.Attachments, Attachment{
				Name:        a.Name,
				ContentType: a.ContentType,
				Path:        a.Path,
			})
		case a.Body != "":
			att.Attachments = append(att.Attachments, Attachment{
				Name:        a.Name,
				ContentType: a.ContentType,
				Path:        a.Path,
				Body:        a.Body,
			})
		}
		// Attachments without inline content and without an image path
		// are dropped.
	}

	if ts, ok := normalizeTimestamp(r.StartTime); ok {
		att.StartTime = ts
	}

	return att
}

// parseAttemptStatus maps a raw attempt result status onto the canonical
// set. Anything unrecognized counts as a failure.
func parseAttemptStatus(s string) Status {
	switch s {
	case "passed":
		return StatusPassed
	case "skipped":
		return StatusSkipped
	case "timedOut":
		return StatusTimedOut
	default:
		return StatusFailed
	}
}

// normalizeTimestamp accepts either an epoch-millisecond number or an
// ISO-8601 string and normalizes to ISO-8601 with millisecond precision.
func normalizeTimestamp(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}

	var millis int64
	if err := json.Unmarshal(raw, &millis); err == nil {
		return time.UnixMilli(millis).UTC().Format(timestampLayout), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return "", false
	}
	return parsed.UTC().Format(timestampLayout), true
}
