package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/session"
)

const (
	// SessionCookieName carries the opaque session id
	SessionCookieName = "session"
	sessionContextKey = contextKey("session")
)

// GetSession retrieves the browser session from the request context.
// Returns nil outside the Session middleware.
func GetSession(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(sessionContextKey).(*model.Session)
	return sess
}

// Session returns middleware that loads the browser session before the
// handler runs and persists it afterwards
func Session(manager *session.Manager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				id = cookie.Value
			}

			sess, fresh, err := manager.Load(r.Context(), id)
			if err != nil {
				// Session store down: carry on with a throwaway session
				logger.Warn("failed to load session", slog.String("error", err.Error()))
				sess, fresh = manager.New(), true
			}
			if fresh {
				SetSessionCookie(w, sess.ID, manager.TTL())
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))

			if err := manager.Save(r.Context(), sess); err != nil {
				logger.Warn("failed to save session",
					slog.String("session_id", sess.ID),
					slog.String("error", err.Error()),
				)
			}
		})
	}
}

// SetSessionCookie points the browser at a session id
func SetSessionCookie(w http.ResponseWriter, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
