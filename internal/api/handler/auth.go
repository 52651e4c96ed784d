package handler

import (
	"net/http"

	"github.com/mcoot/fxdesk/internal/api/request"
	"github.com/mcoot/fxdesk/internal/api/response"
	"github.com/mcoot/fxdesk/internal/services/auth"
)

// AuthHandler issues API access tokens
type AuthHandler struct {
	authService *auth.Service
	tokens      *auth.TokenService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	identity, err := h.authService.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	token, expires, err := h.tokens.Issue(identity)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponse{
		Token:     token,
		ExpiresAt: expires,
		Username:  identity.Username,
		Admin:     identity.IsAdmin,
	})
}
