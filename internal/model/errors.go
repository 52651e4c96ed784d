package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")
	ErrInvalidRole    = errors.New("invalid role")

	// Document store errors
	ErrNoTarget          = errors.New("no target selected")
	ErrInvalidTarget     = errors.New("database and collection names are required")
	ErrNoDocuments       = errors.New("no data found in the specified collection")
	ErrDocumentNotFound  = errors.New("no documents matched")
	ErrCollectionExists  = errors.New("collection already exists")
	ErrStoreUnavailable  = errors.New("document store unavailable")
	ErrInvalidAction     = errors.New("invalid action")
	ErrReservedFieldName = errors.New("field name is reserved")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Exchange errors
	ErrInvalidQuote = errors.New("invalid exchange quote")
)
