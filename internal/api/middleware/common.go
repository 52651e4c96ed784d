package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/fxdesk/internal/api/apierr"
	"github.com/mcoot/fxdesk/internal/middleware"
)

// Recovery creates panic recovery middleware for the API.
// Returns JSON error responses on panic.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}

// Logging logs each API request with its request id
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("surface", "api")))
}

// RateLimited answers requests rejected by a rate limiter
func RateLimited(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Retry-After", "60")
	apierr.WriteError(w, apierr.NewRateLimitedError())
}
