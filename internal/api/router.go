package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/fxdesk/internal/api/handler"
	"github.com/mcoot/fxdesk/internal/api/middleware"
	ratelimit "github.com/mcoot/fxdesk/internal/middleware"
	"github.com/mcoot/fxdesk/internal/services/auth"
	"github.com/mcoot/fxdesk/internal/services/batch"
	"github.com/mcoot/fxdesk/internal/services/browser"
	"github.com/mcoot/fxdesk/internal/services/coercion"
)

// PathPrefix is where the API is mounted
const PathPrefix = "/api/v1"

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Store          handler.Pinger
	AuthService    *auth.Service
	TokenService   *auth.TokenService
	BrowserService *browser.Service
	Executor       *batch.Executor
	Coercion       *coercion.Engine
	LoginLimiter   *ratelimit.RateLimiter
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.TokenService)
	documentsHandler := handler.NewDocumentsHandler(cfg.BrowserService, cfg.Executor, cfg.Coercion, cfg.AuthService, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.TokenService, cfg.AuthService)
	adminMiddleware := middleware.RequireAdmin(cfg.AuthService)

	// API subrouter with common middleware
	api := r.PathPrefix(PathPrefix).Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Health check endpoint (no auth)
	api.HandleFunc("/health", handler.Health(cfg.Store)).Methods(http.MethodGet)

	// Login is rate limited per client
	login := http.Handler(http.HandlerFunc(authHandler.Login))
	if cfg.LoginLimiter != nil {
		login = cfg.LoginLimiter.Middleware(middleware.RateLimited)(login)
	}
	api.Handle("/auth/login", login).Methods(http.MethodPost)

	// Exchange comparison needs any valid token
	exchange := api.PathPrefix("/exchange").Subrouter()
	exchange.Use(authMiddleware)
	exchange.HandleFunc("/compare", handler.Compare).Methods(http.MethodPost)

	// Database routes are admin only
	databases := api.PathPrefix("/databases").Subrouter()
	databases.Use(authMiddleware)
	databases.Use(adminMiddleware)
	databases.HandleFunc("", documentsHandler.ListDatabases).Methods(http.MethodGet)
	databases.HandleFunc("/{db}/collections", documentsHandler.ListCollections).Methods(http.MethodGet)
	databases.HandleFunc("/{db}/collections/{collection}", documentsHandler.CreateCollection).Methods(http.MethodPost)
	databases.HandleFunc("/{db}/collections/{collection}/documents", documentsHandler.Documents).Methods(http.MethodGet)
	databases.HandleFunc("/{db}/collections/{collection}/batch", documentsHandler.Batch).Methods(http.MethodPost)

	return r
}
