package projects

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrProjectNotFound is returned when no project matches the lookup.
var ErrProjectNotFound = errors.New("project not found")

// Service provides project lookups and creation.
type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// GetBySlug retrieves a project by its slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Project, error) {
	query := `
		SELECT id, slug, name, webhook_url, webhook_enabled, created_at
		FROM projects
		WHERE slug = $1
	`
	return s.scanProject(s.pool.QueryRow(ctx, query, slug))
}

// GetByID retrieves a project by its ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	query := `
		SELECT id, slug, name, webhook_url, webhook_enabled, created_at
		FROM projects
		WHERE id = $1
	`
	return s.scanProject(s.pool.QueryRow(ctx, query, id))
}

// Create inserts a new project.
func (s *Service) Create(ctx context.Context, slug, name string) (*Project, error) {
	query := `
		INSERT INTO projects (slug, name)
		VALUES ($1, $2)
		RETURNING id, slug, name, webhook_url, webhook_enabled, created_at
	`
	return s.scanProject(s.pool.QueryRow(ctx, query, slug, name))
}

// ConfigureWebhook sets the project's notification webhook.
func (s *Service) ConfigureWebhook(ctx context.Context, id uuid.UUID, webhookURL string, enabled bool) error {
	query := `
		UPDATE projects
		SET webhook_url = $2, webhook_enabled = $3
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query, id, webhookURL, enabled)
	if err != nil {
		return fmt.Errorf("failed to configure webhook: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (s *Service) scanProject(row pgx.Row) (*Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.WebhookURL, &p.WebhookEnabled, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to query project: %w", err)
	}
	return &p, nil
}
