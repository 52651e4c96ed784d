package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/mcoot/fxdesk/internal/web/middleware"
	"github.com/mcoot/fxdesk/internal/web/templates/layout"
)

// pageData collects the shared page fields from the request context
func pageData(r *http.Request, title, tab string) layout.PageData {
	return layout.PageData{
		Title:     title,
		Session:   middleware.GetSession(r.Context()),
		Flash:     middleware.GetFlash(r.Context()),
		ActiveTab: tab,
	}
}

func render(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logger.Error("failed to render page",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

func redirectWithFlash(w http.ResponseWriter, r *http.Request, to, flashType, message string) {
	middleware.SetFlash(w, flashType, message)
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// safeNext only allows redirects to local paths
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/"
}
