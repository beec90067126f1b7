package storage

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/runlens/runlens/internal/apperrors"
)

// HandleScreenshot serves stored screenshot blobs behind signed URLs.
// GET /screenshots/{key}?token=<jwt>
func HandleScreenshot(store Store, signer *URLSigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		token := r.URL.Query().Get("token")

		if err := signer.Verify(key, token); err != nil {
			apperrors.WriteForbidden(w, r, "Invalid or expired screenshot token")
			return
		}

		blob, contentType, err := store.Open(key)
		if err != nil {
			if errors.Is(err, ErrBlobNotFound) {
				apperrors.WriteNotFound(w, r, "Screenshot not found")
				return
			}
			log.Error().Err(err).Str("key", key).Msg("Failed to open screenshot blob")
			apperrors.WriteInternalError(w, r, "Failed to read screenshot")
			return
		}
		defer blob.Close()

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "private, max-age=3600")
		if _, err := io.Copy(w, blob); err != nil {
			log.Debug().Err(err).Str("key", key).Msg("Screenshot response aborted")
		}
	}
}
