package apperrors

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const contextKeyRequestID contextKey = "request_id"

// RequestIDMiddleware assigns a unique request ID to each request and
// echoes it in the X-Request-ID response header.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), contextKeyRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(contextKeyRequestID).(string)
	if !ok {
		return ""
	}
	return requestID
}
