package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidQuote       = "INVALID_QUOTE"
	CodeInvalidTarget      = "INVALID_TARGET"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeSecondaryRejected  = "SECONDARY_REJECTED"
	CodeNoDocuments        = "NO_DOCUMENTS"
	CodeCollectionExists   = "COLLECTION_EXISTS"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Document store errors
	case errors.Is(err, model.ErrInvalidTarget), errors.Is(err, model.ErrNoTarget):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidTarget, "Database and collection names are required"}}
	case errors.Is(err, model.ErrNoDocuments):
		return &httpError{http.StatusNotFound, APIError{CodeNoDocuments, "No data found in the specified collection"}}
	case errors.Is(err, model.ErrCollectionExists):
		return &httpError{http.StatusConflict, APIError{CodeCollectionExists, "Collection already exists"}}
	case errors.Is(err, model.ErrStoreUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStoreUnavailable, "Could not connect to the database"}}
	case errors.Is(err, model.ErrInvalidQuote):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidQuote, err.Error()}}

	// Auth errors are deliberately vague
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired token"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewForbiddenError is returned when a valid token lacks the admin role
func NewForbiddenError() error {
	return &httpError{http.StatusForbidden, APIError{CodeForbidden, "You do not have permission to do that"}}
}

// NewSecondaryRejectedError is returned when a destructive request carries
// the wrong secondary password
func NewSecondaryRejectedError() error {
	return &httpError{http.StatusForbidden, APIError{CodeSecondaryRejected, "Invalid secondary password"}}
}

// NewRateLimitedError is returned once a client exceeds the login rate
func NewRateLimitedError() error {
	return &httpError{http.StatusTooManyRequests, APIError{CodeRateLimited, "Too many login attempts, please wait a minute"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// IsInternal reports whether err maps to a 500 response
func IsInternal(err error) bool {
	return toHTTPError(err).status == http.StatusInternalServerError
}
