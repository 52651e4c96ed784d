package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mcoot/fxdesk/internal/model"
)

type contextKey string

// AccountChecker re-reads the account behind a logged-in session
type AccountChecker interface {
	AccountActive(ctx context.Context, username string) bool
	HasRole(ctx context.Context, username string, roles ...model.Role) bool
}

// RequireLogin returns middleware that redirects anonymous visitors to the
// login page, remembering where they were going. A session whose account has
// been deleted or deactivated is logged out.
func RequireLogin(accounts AccountChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loginURL := "/login?next=" + url.QueryEscape(r.URL.Path)
			sess := GetSession(r.Context())
			if sess == nil || !sess.IsLoggedIn {
				http.Redirect(w, r, loginURL, http.StatusSeeOther)
				return
			}
			if !accounts.AccountActive(r.Context(), sess.Username) {
				sess.Clear()
				SetFlash(w, "error", "Your account is no longer active. Please log in again.")
				http.Redirect(w, r, loginURL, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin returns middleware that only lets administrators through. The
// role is looked up on every request, so a demoted admin loses access at once.
// Must be used after RequireLogin.
func RequireAdmin(accounts AccountChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := GetSession(r.Context())
			if sess == nil || !accounts.HasRole(r.Context(), sess.Username, model.RoleAdmin) {
				if sess != nil {
					sess.IsAdmin = false
				}
				SetFlash(w, "error", "You do not have permission to view that page")
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			sess.IsAdmin = true
			next.ServeHTTP(w, r)
		})
	}
}
