package dedupe

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Decision is the read-only result of a duplicate lookup.
type Decision struct {
	IsDuplicate   bool       `json:"is_duplicate"`
	ExistingRunID *uuid.UUID `json:"existing_run_id,omitempty"`
	ExistingRunAt *time.Time `json:"existing_run_at,omitempty"`
}

// Service answers "has this exact run been recorded before" by combining
// a content fingerprint with an optional project scope.
type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Check looks up the most recent persisted run with a matching
// fingerprint, optionally constrained to a project. A failed lookup must
// never block a legitimate upload: query errors degrade to "not a
// duplicate" and are logged.
func (s *Service) Check(ctx context.Context, fingerprint string, projectID *uuid.UUID) Decision {
	var (
		runID     uuid.UUID
		createdAt time.Time
		err       error
	)

	if projectID != nil {
		query := `
			SELECT id, created_at FROM runs
			WHERE fingerprint = $1 AND project_id = $2
			ORDER BY created_at DESC
			LIMIT 1
		`
		err = s.pool.QueryRow(ctx, query, fingerprint, *projectID).Scan(&runID, &createdAt)
	} else {
		query := `
			SELECT id, created_at FROM runs
			WHERE fingerprint = $1
			ORDER BY created_at DESC
			LIMIT 1
		`
		err = s.pool.QueryRow(ctx, query, fingerprint).Scan(&runID, &createdAt)
	}

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Decision{}
		}
		log.Warn().
			Err(err).
			Str("fingerprint", fingerprint).
			Msg("Duplicate lookup failed, treating run as not a duplicate")
		return Decision{}
	}

	return Decision{
		IsDuplicate:   true,
		ExistingRunID: &runID,
		ExistingRunAt: &createdAt,
	}
}
