package ingest

import (
	"fmt"

	"github.com/runlens/runlens/internal/fingerprint"
)

// IngestionMetadata is the caller-supplied context accompanying an
// uploaded report archive. Everything except the project slug is
// optional; branch and environment fall back to CI detection and
// normalization when absent.
type IngestionMetadata struct {
	ProjectSlug string `json:"project_slug"`
	Environment string `json:"environment"`
	Trigger     string `json:"trigger"`
	Branch      string `json:"branch"`
	Commit      string `json:"commit"`
	CommitURL   string `json:"commit_url"`
	BuildURL    string `json:"build_url"`
	PRTitle     string `json:"pr_title"`
	PRURL       string `json:"pr_url"`

	// Fingerprint, when supplied, is a client-side precomputed content
	// fingerprint; the server uses it verbatim instead of re-deriving.
	Fingerprint string `json:"fingerprint"`
}

type InvalidMetaError struct {
	Message string
}

func (e *InvalidMetaError) Error() string {
	return e.Message
}

func (m *IngestionMetadata) Validate() error {
	if m.ProjectSlug == "" {
		return &InvalidMetaError{Message: "meta.project_slug is required"}
	}
	if m.Fingerprint != "" && !fingerprint.Valid(m.Fingerprint) {
		return &InvalidMetaError{Message: fmt.Sprintf("meta.fingerprint must be 64 lowercase hex characters (got %d characters)", len(m.Fingerprint))}
	}
	return nil
}
