package apikeys

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrAPIKeyNotFound is returned when no key matches the lookup.
var ErrAPIKeyNotFound = errors.New("API key not found")

// Service provides API key persistence operations.
type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Create stores a new API key for a project and returns the stored row.
func (s *Service) Create(ctx context.Context, projectID uuid.UUID, name string, tokenHash []byte, scopes []string) (*ApiKey, error) {
	query := `
		INSERT INTO api_keys (project_id, name, token_hash, scopes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, project_id, name, token_hash, scopes, created_at, last_used_at, expires_at, revoked_at
	`
	return s.scanKey(s.pool.QueryRow(ctx, query, projectID, name, tokenHash, scopes))
}

// GetByTokenHash looks up a key by the hash of its bearer token.
func (s *Service) GetByTokenHash(ctx context.Context, tokenHash []byte) (*ApiKey, error) {
	query := `
		SELECT id, project_id, name, token_hash, scopes, created_at, last_used_at, expires_at, revoked_at
		FROM api_keys
		WHERE token_hash = $1
	`
	return s.scanKey(s.pool.QueryRow(ctx, query, tokenHash))
}

// UpdateLastUsed records that the key was just used.
func (s *Service) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`, id)
	return err
}

func (s *Service) scanKey(row pgx.Row) (*ApiKey, error) {
	var key ApiKey
	err := row.Scan(
		&key.ID,
		&key.ProjectID,
		&key.Name,
		&key.TokenHash,
		&key.Scopes,
		&key.CreatedAt,
		&key.LastUsedAt,
		&key.ExpiresAt,
		&key.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("failed to query API key: %w", err)
	}
	return &key, nil
}
