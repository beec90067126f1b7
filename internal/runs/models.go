package runs

import (
	"time"

	"github.com/google/uuid"
	"github.com/runlens/runlens/internal/report"
)

// Run is one persisted report ingestion.
type Run struct {
	ID          uuid.UUID       `json:"id"`
	ProjectID   uuid.UUID       `json:"project_id"`
	Fingerprint string          `json:"fingerprint"`
	Branch      string          `json:"branch"`
	Environment string          `json:"environment"`
	Trigger     string          `json:"trigger,omitempty"`
	Commit      string          `json:"commit,omitempty"`
	CommitURL   string          `json:"commit_url,omitempty"`
	BuildURL    string          `json:"build_url,omitempty"`
	PRTitle     string          `json:"pr_title,omitempty"`
	PRURL       string          `json:"pr_url,omitempty"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	DurationMS  int64           `json:"duration_ms"`
	Stats       report.RunStats `json:"stats"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RunDetail is a run together with its test records.
type RunDetail struct {
	Run     Run                 `json:"run"`
	Records []report.TestRecord `json:"records"`
}
