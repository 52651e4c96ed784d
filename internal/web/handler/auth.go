package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/fxdesk/internal/services/auth"
	"github.com/mcoot/fxdesk/internal/session"
	"github.com/mcoot/fxdesk/internal/web/middleware"
	"github.com/mcoot/fxdesk/internal/web/templates/layout"
	"github.com/mcoot/fxdesk/internal/web/templates/pages"
)

// AuthHandler handles the login page and logging in and out
type AuthHandler struct {
	authService *auth.Service
	sessions    *session.Manager
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service, sessions *session.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		logger:      logger,
	}
}

// LoginPage renders the login page
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if sess != nil && sess.IsLoggedIn {
		// Already logged in
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.renderLogin(w, r, http.StatusOK, "", "", r.URL.Query().Get("next"))
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, "Invalid form data", "", "")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	next := r.FormValue("next")

	if username == "" || password == "" {
		h.renderLogin(w, r, http.StatusBadRequest, "Username and password are required", username, next)
		return
	}

	sess := middleware.GetSession(r.Context())
	identity, err := h.authService.Login(r.Context(), sess, username, password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Error("login failed", slog.String("username", username), slog.String("error", err.Error()))
		}
		h.renderLogin(w, r, http.StatusUnauthorized, "Invalid username or password", username, next)
		return
	}

	middleware.SetSessionCookie(w, sess.ID, h.sessions.TTL())
	name := identity.DisplayName
	if name == "" {
		name = identity.Username
	}
	redirectWithFlash(w, r, safeNext(next), "success", "Welcome "+name+"!")
}

// Throttled answers a login attempt rejected by the rate limiter
func (h *AuthHandler) Throttled(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, http.StatusTooManyRequests, "Too many login attempts. Please wait a minute and try again.",
		strings.TrimSpace(r.PostFormValue("username")), r.PostFormValue("next"))
}

// Logout ends the session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if sess != nil && sess.IsLoggedIn {
		if err := h.authService.Logout(r.Context(), sess); err != nil {
			h.logger.Error("logout failed", slog.String("error", err.Error()))
		}
		middleware.SetSessionCookie(w, sess.ID, h.sessions.TTL())
	}
	redirectWithFlash(w, r, "/", "info", "You have been logged out")
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, errorMsg, username, next string) {
	data := pages.LoginData{
		PageData: pageData(r, "Login", layout.TabLogin),
		Username: username,
		Error:    errorMsg,
		Next:     next,
	}
	render(w, r, h.logger, status, pages.Login(data))
}
