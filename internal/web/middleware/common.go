package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/fxdesk/internal/middleware"
	"github.com/mcoot/fxdesk/internal/web/templates/layout"
)

// Recovery renders an error page inside the usual layout when a page handler
// panics
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, r *http.Request, _ any) {
		data := layout.PageData{
			Title:   "Something went wrong",
			Session: GetSession(r.Context()),
		}
		body := layout.Alert("error", "The page could not be shown. Please try again later.")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		if err := layout.Base(data, body).Render(r.Context(), w); err != nil {
			logger.Error("failed to render error page", slog.String("error", err.Error()))
		}
	})
}

// Logging logs each page request with its request id
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("surface", "web")))
}
