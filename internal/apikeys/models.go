package apikeys

import (
	"time"

	"github.com/google/uuid"
)

// ApiKeyScope is a permission granted to an API key.
type ApiKeyScope string

const (
	// ScopeIngestWrite allows uploading report archives.
	ScopeIngestWrite ApiKeyScope = "ingest:write"

	// ScopeRunsRead allows reading recorded runs and duplicate probes.
	ScopeRunsRead ApiKeyScope = "runs:read"
)

// ApiKey is a project-scoped bearer credential. Only the SHA-256 hash of
// the token is stored.
type ApiKey struct {
	ID         uuid.UUID
	ProjectID  uuid.UUID
	Name       string
	TokenHash  []byte
	Scopes     []string
	CreatedAt  time.Time
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
	RevokedAt  *time.Time
}
