package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/runlens/runlens/internal/apikey"
	"github.com/runlens/runlens/internal/apperrors"
	"github.com/runlens/runlens/internal/config"
	"github.com/runlens/runlens/internal/dedupe"
	"github.com/runlens/runlens/internal/notify"
	"github.com/runlens/runlens/internal/projects"
	"github.com/runlens/runlens/internal/report"
	"github.com/runlens/runlens/internal/runs"
	"github.com/runlens/runlens/internal/storage"
)

// IngestionResponse is the response returned after a successful ingestion
type IngestionResponse struct {
	RunID       uuid.UUID       `json:"run_id"`
	Fingerprint string          `json:"fingerprint"`
	IsDuplicate bool            `json:"is_duplicate"`
	Stats       report.RunStats `json:"stats"`
	TestRecords int             `json:"test_records_count"`
}

// DuplicateResponse is returned when the upload matches an existing run.
type DuplicateResponse struct {
	Fingerprint string           `json:"fingerprint"`
	IsDuplicate bool             `json:"is_duplicate"`
	ExistingRun *dedupe.Decision `json:"existing_run,omitempty"`
}

// HandleReportUpload handles POST /api/v1/ingest/report
func HandleReportUpload(pool *pgxpool.Pool, cfg *config.Config, store storage.Store, signer *storage.URLSigner, limits UploadLimits) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// Get API key from context (set by middleware)
		key := apikey.GetAPIKey(ctx)
		if key == nil {
			apperrors.WriteUnauthorized(w, r, "API key required")
			return
		}

		// Parse multipart form with size limit
		if err := r.ParseMultipartForm(limits.MaxArchiveBytes); err != nil {
			if err == multipart.ErrMessageTooLarge {
				apperrors.WritePayloadTooLarge(w, r, fmt.Sprintf("Upload exceeds maximum size of %d bytes", limits.MaxArchiveBytes))
				return
			}
			apperrors.WriteBadRequest(w, r, "Failed to parse multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		// Parse metadata from "meta" field
		metaField := r.FormValue("meta")
		if metaField == "" {
			apperrors.WriteBadRequest(w, r, "Missing 'meta' field in form data")
			return
		}

		var metadata IngestionMetadata
		if err := json.Unmarshal([]byte(metaField), &metadata); err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid JSON in 'meta' field")
			return
		}
		if err := metadata.Validate(); err != nil {
			apperrors.WriteBadRequest(w, r, fmt.Sprintf("Invalid metadata: %v", err))
			return
		}

		// Get the report archive from the form
		files := r.MultipartForm.File["report"]
		if len(files) == 0 {
			apperrors.WriteBadRequest(w, r, "No report archive provided")
			return
		}
		fileHeader := files[0]

		if err := limits.ValidateArchiveSize(fileHeader.Size); err != nil {
			apperrors.WritePayloadTooLarge(w, r, err.Error())
			return
		}

		// Lookup project by slug
		projectService := projects.NewService(pool)
		project, err := projectService.GetBySlug(ctx, metadata.ProjectSlug)
		if err != nil {
			if errors.Is(err, projects.ErrProjectNotFound) {
				apperrors.WriteNotFound(w, r, "Project not found")
				return
			}
			log.Error().Err(err).Str("project_slug", metadata.ProjectSlug).Msg("Failed to lookup project")
			apperrors.WriteInternalError(w, r, "Failed to lookup project")
			return
		}

		// Verify API key belongs to this project
		if key.ProjectID != project.ID {
			apperrors.WriteForbidden(w, r, "API key does not have access to this project")
			return
		}

		// Read the archive into memory
		file, err := fileHeader.Open()
		if err != nil {
			log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded archive")
			apperrors.WriteInternalError(w, r, "Failed to process uploaded archive")
			return
		}
		buf := new(bytes.Buffer)
		_, err = io.Copy(buf, file)
		file.Close()
		if err != nil {
			log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to read uploaded archive")
			apperrors.WriteInternalError(w, r, "Failed to read uploaded archive")
			return
		}

		// Run the ingestion core
		result, err := RunPipeline(buf.Bytes(), &metadata)
		if err != nil {
			var formatErr *report.ReportFormatError
			if errors.As(err, &formatErr) {
				apperrors.WriteUnprocessable(w, r, formatErr.Error())
				return
			}
			log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Ingestion pipeline failed")
			apperrors.WriteInternalError(w, r, "Failed to process report archive")
			return
		}

		// Duplicate check scoped to the project. A lookup failure degrades
		// to "not a duplicate" inside the service.
		decision := dedupe.NewService(pool).Check(ctx, result.Fingerprint, &project.ID)
		if decision.IsDuplicate {
			log.Info().
				Str("project_slug", project.Slug).
				Str("fingerprint", result.Fingerprint).
				Str("existing_run_id", decision.ExistingRunID.String()).
				Msg("Duplicate run detected, skipping persistence")

			apperrors.WriteSuccess(w, r, http.StatusOK, DuplicateResponse{
				Fingerprint: result.Fingerprint,
				IsDuplicate: true,
				ExistingRun: &decision,
			})
			return
		}

		// Upload screenshots and rewrite references before persisting.
		storage.ResolveScreenshots(ctx, result.Records, result.Assets, store, signer)

		persistence := runs.NewPersistenceService(pool)
		run, err := persistence.PersistRun(
			ctx,
			project.ID,
			key.ID,
			&result.Meta,
			metadata.Trigger,
			result.Records,
			result.Stats,
			result.DurationMS,
			result.Fingerprint,
		)
		if err != nil {
			log.Error().Err(err).Msg("Failed to persist run")
			apperrors.WriteInternalError(w, r, "Failed to store run data")
			return
		}

		// Notify the project webhook after the transaction commits.
		if project.WebhookEnabled && project.WebhookURL != nil && *project.WebhookURL != "" {
			go notifyWebhookAsync(cfg, project, run, result.Stats)
		}

		log.Info().
			Str("run_id", run.ID.String()).
			Str("project_slug", project.Slug).
			Str("fingerprint", result.Fingerprint).
			Str("branch", result.Meta.Branch).
			Str("environment", result.Meta.Environment).
			Int("test_records", len(result.Records)).
			Int("passed", result.Stats.Passed).
			Int("failed", result.Stats.Failed).
			Int("flaky", result.Stats.Flaky).
			Int("skipped", result.Stats.Skipped).
			Msg("Ingestion successful")

		apperrors.WriteSuccess(w, r, http.StatusAccepted, IngestionResponse{
			RunID:       run.ID,
			Fingerprint: result.Fingerprint,
			Stats:       result.Stats,
			TestRecords: len(result.Records),
		})
	}
}

// notifyWebhookAsync delivers the run-recorded webhook. It runs in a
// goroutine with a background context so delivery survives the request
// context being cancelled.
func notifyWebhookAsync(cfg *config.Config, project *projects.Project, run *runs.Run, stats report.RunStats) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.WebhookTimeoutMS)*time.Millisecond)
	defer cancel()

	client := notify.NewClient(cfg.WebhookTimeoutMS)
	client.PostRunRecorded(ctx, *project.WebhookURL, notify.RunRecordedMessage{
		Event:        "run.recorded",
		Project:      project.Slug,
		RunID:        run.ID.String(),
		Branch:       run.Branch,
		Environment:  run.Environment,
		Total:        stats.Total,
		Passed:       stats.Passed,
		Failed:       stats.Failed,
		Flaky:        stats.Flaky,
		Skipped:      stats.Skipped,
		Duration:     stats.Duration,
		DashboardURL: fmt.Sprintf("%s/projects/%s/runs/%s", cfg.BaseURL, project.Slug, run.ID.String()),
	})
}
