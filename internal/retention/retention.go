package retention

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DeleteOldRuns deletes runs (and, via cascade, their test records) older
// than the retention horizon. The function is idempotent - safe to run
// repeatedly.
//
// Returns the number of runs deleted.
func DeleteOldRuns(ctx context.Context, pool *pgxpool.Pool, retentionDays int) (int64, error) {
	query := `
		DELETE FROM runs
		WHERE created_at < NOW() - INTERVAL '1 day' * $1
	`

	tag, err := pool.Exec(ctx, query, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old runs: %w", err)
	}

	return tag.RowsAffected(), nil
}

// PruneScreenshots removes stored screenshot blobs whose modification
// time is older than the retention horizon. Blobs are content-addressed
// and re-uploaded on the next matching ingestion, so removal is safe.
//
// Returns the number of blobs deleted.
func PruneScreenshots(dir string, retentionDays int) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read screenshot directory: %w", err)
	}

	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			log.Warn().Err(err).Str("blob", entry.Name()).Msg("Failed to delete expired screenshot blob")
			continue
		}
		deleted++
	}

	return deleted, nil
}

// RunRetentionJob executes the retention pass and logs the results.
// This is the main entry point called by the cron scheduler.
func RunRetentionJob(ctx context.Context, pool *pgxpool.Pool, screenshotDir string, retentionDays int) error {
	log.Info().
		Int("retention_days", retentionDays).
		Msg("Starting retention job")

	startTime := time.Now()

	runsDeleted, err := DeleteOldRuns(ctx, pool, retentionDays)
	if err != nil {
		log.Error().Err(err).Msg("Failed to delete old runs")
		return fmt.Errorf("run cleanup failed: %w", err)
	}

	blobsDeleted, err := PruneScreenshots(screenshotDir, retentionDays)
	if err != nil {
		log.Error().Err(err).Msg("Failed to prune screenshot blobs")
		return fmt.Errorf("screenshot cleanup failed: %w", err)
	}

	log.Info().
		Int64("runs_deleted", runsDeleted).
		Int("screenshots_deleted", blobsDeleted).
		Dur("duration", time.Since(startTime)).
		Msg("Retention job completed")

	return nil
}
