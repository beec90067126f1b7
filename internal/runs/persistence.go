package runs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/runlens/runlens/internal/report"
)

// ErrRunNotFound is returned when no run matches the lookup.
var ErrRunNotFound = errors.New("run not found")

// PersistenceService handles database operations for recorded runs.
type PersistenceService struct {
	pool *pgxpool.Pool
}

func NewPersistenceService(pool *pgxpool.Pool) *PersistenceService {
	return &PersistenceService{pool: pool}
}

// PersistRun stores a run with its normalized records, stats and
// fingerprint in one transaction. The pipeline performs no writes of its
// own before this point, so an aborted ingestion leaves nothing behind.
func (s *PersistenceService) PersistRun(
	ctx context.Context,
	projectID uuid.UUID,
	apiKeyID uuid.UUID,
	meta *report.RunMetadata,
	trigger string,
	records []report.TestRecord,
	stats report.RunStats,
	durationMS int64,
	fingerprint string,
) (*Run, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	run, err := s.insertRun(ctx, tx, projectID, apiKeyID, meta, trigger, stats, durationMS, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	for _, rec := range records {
		if err := s.insertTestRecord(ctx, tx, run.ID, rec); err != nil {
			return nil, fmt.Errorf("failed to insert test record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return run, nil
}

func (s *PersistenceService) insertRun(
	ctx context.Context,
	tx pgx.Tx,
	projectID uuid.UUID,
	apiKeyID uuid.UUID,
	meta *report.RunMetadata,
	trigger string,
	stats report.RunStats,
	durationMS int64,
	fingerprint string,
) (*Run, error) {
	var startedAt *time.Time
	if meta.StartTime != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, meta.StartTime); err == nil {
			startedAt = &parsed
		}
	}

	ciEnvJSON, err := json.Marshal(meta.CIEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal CI env: %w", err)
	}

	query := `
		INSERT INTO runs (
			project_id, api_key_id, fingerprint, branch, environment, trigger,
			commit_sha, commit_url, build_url, pr_title, pr_url, ci_env,
			started_at, duration_ms,
			total, passed, failed, flaky, skipped, duration_text
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12::jsonb,
			$13, $14,
			$15, $16, $17, $18, $19, $20
		)
		RETURNING id, created_at
	`

	run := &Run{
		ProjectID:   projectID,
		Fingerprint: fingerprint,
		Branch:      meta.Branch,
		Environment: meta.Environment,
		Trigger:     trigger,
		Commit:      meta.Commit,
		CommitURL:   meta.CommitURL,
		BuildURL:    meta.BuildURL,
		PRTitle:     meta.PRTitle,
		PRURL:       meta.PRURL,
		StartedAt:   startedAt,
		DurationMS:  durationMS,
		Stats:       stats,
	}

	err = tx.QueryRow(ctx, query,
		projectID,
		apiKeyID,
		fingerprint,
		meta.Branch,
		meta.Environment,
		trigger,
		nullString(meta.Commit),
		nullString(meta.CommitURL),
		nullString(meta.BuildURL),
		nullString(meta.PRTitle),
		nullString(meta.PRURL),
		string(ciEnvJSON),
		startedAt,
		durationMS,
		stats.Total,
		stats.Passed,
		stats.Failed,
		stats.Flaky,
		stats.Skipped,
		stats.Duration,
	).Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		return nil, err
	}

	return run, nil
}

func (s *PersistenceService) insertTestRecord(ctx context.Context, tx pgx.Tx, runID uuid.UUID, rec report.TestRecord) error {
	attemptsJSON, err := json.Marshal(rec.Attempts)
	if err != nil {
		return fmt.Errorf("failed to marshal attempts: %w", err)
	}
	metadataJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	screenshotsJSON, err := json.Marshal(rec.Screenshots)
	if err != nil {
		return fmt.Errorf("failed to marshal screenshots: %w", err)
	}

	var startedAt *time.Time
	if rec.StartTime != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, rec.StartTime); err == nil {
			startedAt = &parsed
		}
	}

	query := `
		INSERT INTO test_records (
			run_id, record_id, name, file, status, duration_ms,
			worker_index, started_at, screenshots, attempts, metadata
		) VALUES (
			$1, $2, $3, $4, $5::test_status, $6,
			$7, $8, $9::jsonb, $10::jsonb, $11::jsonb
		)
	`
	_, err = tx.Exec(ctx, query,
		runID,
		rec.ID,
		rec.Name,
		rec.File,
		string(rec.Status),
		rec.DurationMS,
		rec.WorkerIndex,
		startedAt,
		string(screenshotsJSON),
		string(attemptsJSON),
		string(metadataJSON),
	)
	return err
}

// GetByID retrieves a run and its records.
func (s *PersistenceService) GetByID(ctx context.Context, id uuid.UUID) (*RunDetail, error) {
	query := `
		SELECT id, project_id, fingerprint, branch, environment, trigger,
		       COALESCE(commit_sha, ''), COALESCE(commit_url, ''), COALESCE(build_url, ''),
		       COALESCE(pr_title, ''), COALESCE(pr_url, ''),
		       started_at, duration_ms,
		       total, passed, failed, flaky, skipped, duration_text,
		       created_at
		FROM runs
		WHERE id = $1
	`

	var run Run
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.ProjectID, &run.Fingerprint, &run.Branch, &run.Environment, &run.Trigger,
		&run.Commit, &run.CommitURL, &run.BuildURL,
		&run.PRTitle, &run.PRURL,
		&run.StartedAt, &run.DurationMS,
		&run.Stats.Total, &run.Stats.Passed, &run.Stats.Failed, &run.Stats.Flaky, &run.Stats.Skipped, &run.Stats.Duration,
		&run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	records, err := s.getTestRecords(ctx, id)
	if err != nil {
		return nil, err
	}

	return &RunDetail{Run: run, Records: records}, nil
}

func (s *PersistenceService) getTestRecords(ctx context.Context, runID uuid.UUID) ([]report.TestRecord, error) {
	query := `
		SELECT record_id, name, file, status, duration_ms, worker_index,
		       started_at, screenshots, attempts, metadata
		FROM test_records
		WHERE run_id = $1
		ORDER BY file, name
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query test records: %w", err)
	}
	defer rows.Close()

	var records []report.TestRecord
	for rows.Next() {
		var (
			rec             report.TestRecord
			status          string
			startedAt       *time.Time
			screenshotsJSON []byte
			attemptsJSON    []byte
			metadataJSON    []byte
		)
		if err := rows.Scan(
			&rec.ID, &rec.Name, &rec.File, &status, &rec.DurationMS, &rec.WorkerIndex,
			&startedAt, &screenshotsJSON, &attemptsJSON, &metadataJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan test record: %w", err)
		}

		rec.Status = report.Status(status)
		if startedAt != nil {
			rec.StartTime = startedAt.UTC().Format(time.RFC3339Nano)
		}
		if err := json.Unmarshal(screenshotsJSON, &rec.Screenshots); err != nil {
			return nil, fmt.Errorf("failed to decode screenshots: %w", err)
		}
		if err := json.Unmarshal(attemptsJSON, &rec.Attempts); err != nil {
			return nil, fmt.Errorf("failed to decode attempts: %w", err)
		}
		if err := json.Unmarshal(metadataJSON, &rec.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
