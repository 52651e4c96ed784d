package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/fxdesk/internal/middleware"
	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/services/auth"
	"github.com/mcoot/fxdesk/internal/services/batch"
	"github.com/mcoot/fxdesk/internal/services/browser"
	"github.com/mcoot/fxdesk/internal/services/coercion"
	"github.com/mcoot/fxdesk/internal/services/users"
	"github.com/mcoot/fxdesk/internal/session"
	"github.com/mcoot/fxdesk/internal/web/handler"
	webmw "github.com/mcoot/fxdesk/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger         *slog.Logger
	Sessions       *session.Manager
	AuthService    *auth.Service
	UsersService   *users.Service
	BrowserService *browser.Service
	Executor       *batch.Executor
	Coercion       *coercion.Engine
	LoginLimiter   *middleware.RateLimiter
	Transactions   model.Target // collection shown on the transaction history page
	StaticDir      string       // Path to static files directory
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create middleware
	sessionMiddleware := webmw.Session(cfg.Sessions, cfg.Logger)
	flashMiddleware := webmw.Flash()
	requireLogin := webmw.RequireLogin(cfg.AuthService)
	requireAdmin := webmw.RequireAdmin(cfg.AuthService)

	// Apply global middleware to all routes
	r.Use(webmw.Recovery(cfg.Logger))
	r.Use(webmw.Logging(cfg.Logger))

	// Create handlers
	exchangeHandler := handler.NewExchangeHandler(cfg.Logger)
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Sessions, cfg.Logger)
	transactionsHandler := handler.NewTransactionsHandler(cfg.BrowserService, cfg.Transactions, cfg.Logger)
	databaseHandler := handler.NewDatabaseHandler(cfg.BrowserService, cfg.Executor, cfg.Coercion, cfg.AuthService, cfg.Logger)
	usersHandler := handler.NewUsersHandler(cfg.UsersService, cfg.Logger)

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	// Public routes
	public := r.NewRoute().Subrouter()
	public.Use(sessionMiddleware)
	public.Use(flashMiddleware)
	public.HandleFunc("/", exchangeHandler.Home).Methods(http.MethodGet)
	public.HandleFunc("/login", authHandler.LoginPage).Methods(http.MethodGet)
	public.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodGet, http.MethodPost)

	login := http.Handler(http.HandlerFunc(authHandler.Login))
	if cfg.LoginLimiter != nil {
		login = cfg.LoginLimiter.Middleware(authHandler.Throttled)(login)
	}
	public.Handle("/login", login).Methods(http.MethodPost)

	// Logged-in routes
	member := r.NewRoute().Subrouter()
	member.Use(sessionMiddleware)
	member.Use(flashMiddleware)
	member.Use(requireLogin)
	member.HandleFunc("/transactions", transactionsHandler.List).Methods(http.MethodGet)

	// Admin routes
	admin := r.NewRoute().Subrouter()
	admin.Use(sessionMiddleware)
	admin.Use(flashMiddleware)
	admin.Use(requireLogin)
	admin.Use(requireAdmin)

	admin.HandleFunc("/db", databaseHandler.Index).Methods(http.MethodGet)
	admin.HandleFunc("/db/create", databaseHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/db/insert", databaseHandler.Insert).Methods(http.MethodPost)
	admin.HandleFunc("/db/update", databaseHandler.Update).Methods(http.MethodPost)
	admin.HandleFunc("/db/delete", databaseHandler.Delete).Methods(http.MethodPost)
	admin.HandleFunc("/db/{action}", databaseHandler.Show).Methods(http.MethodGet)
	admin.HandleFunc("/db/{action}/target", databaseHandler.SelectTarget).Methods(http.MethodPost)

	admin.HandleFunc("/users", usersHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/users/register", usersHandler.RegisterPage).Methods(http.MethodGet)
	admin.HandleFunc("/users/register", usersHandler.Register).Methods(http.MethodPost)
	admin.HandleFunc("/users/{username}/edit", usersHandler.EditPage).Methods(http.MethodGet)
	admin.HandleFunc("/users/{username}/edit", usersHandler.Edit).Methods(http.MethodPost)
	admin.HandleFunc("/users/{username}/delete", usersHandler.DeletePage).Methods(http.MethodGet)
	admin.HandleFunc("/users/{username}/delete", usersHandler.Delete).Methods(http.MethodPost)

	return r
}
