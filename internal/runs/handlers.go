package runs

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/runlens/runlens/internal/apikey"
	"github.com/runlens/runlens/internal/apperrors"
	"github.com/runlens/runlens/internal/dedupe"
	"github.com/runlens/runlens/internal/fingerprint"
)

// HandleCheckDuplicate handles GET /api/v1/runs/check?fingerprint=<hex>
//
// Callers that computed the fingerprint client-side probe here before
// uploading the archive at all; the fingerprint is accepted as-is and
// never re-derived.
func HandleCheckDuplicate(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fp := r.URL.Query().Get("fingerprint")
		if !fingerprint.Valid(fp) {
			apperrors.WriteBadRequest(w, r, "Query parameter 'fingerprint' must be 64 lowercase hex characters")
			return
		}

		// The API key pins the project scope.
		projectID := apikey.GetProjectID(r.Context())
		var scope *uuid.UUID
		if projectID != uuid.Nil {
			scope = &projectID
		}

		decision := dedupe.NewService(pool).Check(r.Context(), fp, scope)
		apperrors.WriteSuccess(w, r, http.StatusOK, decision)
	}
}

// HandleGetRun handles GET /api/v1/runs/{run_id}
func HandleGetRun(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID, err := uuid.Parse(chi.URLParam(r, "run_id"))
		if err != nil {
			apperrors.WriteBadRequest(w, r, "Invalid run ID")
			return
		}

		detail, err := NewPersistenceService(pool).GetByID(r.Context(), runID)
		if err != nil {
			if errors.Is(err, ErrRunNotFound) {
				apperrors.WriteNotFound(w, r, "Run not found")
				return
			}
			log.Error().Err(err).Str("run_id", runID.String()).Msg("Failed to load run")
			apperrors.WriteInternalError(w, r, "Failed to load run")
			return
		}

		// Keys are project-scoped; a key must not read another project's runs.
		if projectID := apikey.GetProjectID(r.Context()); projectID != uuid.Nil && projectID != detail.Run.ProjectID {
			apperrors.WriteForbidden(w, r, "API key does not have access to this run")
			return
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, detail)
	}
}
