package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/fxdesk/internal/config"
	"github.com/mcoot/fxdesk/internal/dependencies/clock"
	"github.com/mcoot/fxdesk/internal/dependencies/random"
	"github.com/mcoot/fxdesk/internal/middleware"
	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/services/auth"
	"github.com/mcoot/fxdesk/internal/services/batch"
	"github.com/mcoot/fxdesk/internal/services/browser"
	"github.com/mcoot/fxdesk/internal/services/coercion"
	"github.com/mcoot/fxdesk/internal/services/users"
	"github.com/mcoot/fxdesk/internal/session"
	sessionmemory "github.com/mcoot/fxdesk/internal/session/memory"
	sessionredis "github.com/mcoot/fxdesk/internal/session/redis"
	"github.com/mcoot/fxdesk/internal/storage"
	"github.com/mcoot/fxdesk/internal/storage/memory"
	mongostorage "github.com/mcoot/fxdesk/internal/storage/mongo"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage      storage.Storage
	SessionStore session.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Sessions       *session.Manager
	AuthService    *auth.Service
	TokenService   *auth.TokenService
	UsersService   *users.Service
	BrowserService *browser.Service
	Executor       *batch.Executor
	Coercion       *coercion.Engine
	LoginLimiter   *middleware.RateLimiter

	// Transactions is the collection shown as transaction history
	Transactions model.Target

	closers []func(ctx context.Context) error
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the document store ("memory" or "mongo")
	// If empty, defaults to "memory"
	StorageType string
	// MongoConfig holds Mongo connection settings (required if StorageType is "mongo")
	MongoConfig *mongostorage.Config
	// SessionStore selects the session backend ("memory" or "redis")
	// If empty, defaults to "memory"
	SessionStore string
	// RedisConfig holds Redis connection settings (required if SessionStore is "redis")
	RedisConfig   *sessionredis.Config
	SessionConfig session.Config
	// AuthConfig holds configuration for the auth service (optional)
	// If BcryptCost is zero, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// TokenSecret signs API tokens. If empty a random secret is used, so
	// tokens do not survive a restart.
	TokenSecret string
	TokenTTL    time.Duration
	RateLimit   middleware.RateLimitConfig
	// Transactions is the collection shown as transaction history
	Transactions model.Target
}

// FromConfig maps loaded settings onto a factory Config
func FromConfig(cfg *config.Config, logger *slog.Logger) Config {
	authCfg := auth.DefaultConfig()
	authCfg.MigrateLegacyHashes = cfg.MigrateLegacyHashes
	authCfg.Static = auth.StaticCredentials{
		Username:       cfg.Secrets.App.Username,
		PasswordDigest: cfg.Secrets.App.Password,
	}

	mongoCfg := mongostorage.DefaultConfig()
	mongoCfg.URI = cfg.MongoURI
	mongoCfg.UsersDatabase = cfg.MongoDBName
	mongoCfg.UsersCollection = cfg.UsersCollection

	redisCfg := sessionredis.DefaultConfig()
	redisCfg.URL = cfg.RedisURL

	return Config{
		Logger:        logger,
		StorageType:   cfg.StorageType,
		MongoConfig:   &mongoCfg,
		SessionStore:  cfg.SessionStore,
		RedisConfig:   &redisCfg,
		SessionConfig: session.Config{TTL: cfg.SessionTTL},
		AuthConfig:    authCfg,
		TokenSecret:   cfg.TokenSecret,
		TokenTTL:      cfg.TokenTTL,
		RateLimit: middleware.RateLimitConfig{
			PerMinute: cfg.LoginRatePerMinute,
			Burst:     cfg.LoginBurst,
		},
		Transactions: model.Target{
			Database:   cfg.MongoDBName,
			Collection: cfg.TransactionsCollection,
		},
	}
}

// New creates a new application with all dependencies wired. An unreachable
// document store is logged, not fatal: pages report it when they need it.
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	var closers []func(ctx context.Context) error

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageTypeMemory
	}

	switch storageType {
	case config.StorageTypeMemory:
		store = memory.New()
	case config.StorageTypeMongo:
		if cfg.MongoConfig == nil {
			return nil, errors.New("MongoConfig required when StorageType is mongo")
		}
		mongoStore, err := mongostorage.New(*cfg.MongoConfig)
		if err != nil {
			return nil, err
		}
		if err := mongoStore.Ping(ctx); err != nil {
			logger.Warn("document store unreachable", slog.String("error", err.Error()))
		} else if err := mongoStore.EnsureIndexes(ctx); err != nil {
			logger.Warn("failed to create user indexes", slog.String("error", err.Error()))
		}
		store = mongoStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'mongo'")
	}
	closers = append(closers, store.Close)

	// Create session store based on type
	var sessions session.Store
	switch cfg.SessionStore {
	case "", config.SessionStoreMemory:
		sessions = sessionmemory.New()
	case config.SessionStoreRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when SessionStore is redis")
		}
		redisStore, err := sessionredis.New(*cfg.RedisConfig, clk)
		if err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		sessions = redisStore
		closers = append(closers, func(context.Context) error { return redisStore.Close() })
	default:
		_ = store.Close(ctx)
		return nil, errors.New("invalid SessionStore: must be 'memory' or 'redis'")
	}

	tokenSecret := cfg.TokenSecret
	if tokenSecret == "" {
		logger.Warn("TOKEN_SECRET not set, API tokens will not survive a restart")
		tokenSecret = rnd.Token("") + rnd.Token("")
	}

	app, err := newWithDependencies(store, sessions, clk, rnd, cfg, tokenSecret, logger)
	if err != nil {
		for _, c := range closers {
			_ = c(ctx)
		}
		return nil, err
	}
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, sessions session.Store, clk clock.Clock, rnd random.Random, cfg Config, tokenSecret string, logger *slog.Logger) (*App, error) {
	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.BcryptCost == 0 {
		static := authCfg.Static
		authCfg = auth.DefaultConfig()
		authCfg.Static = static
	}

	tokens, err := auth.NewTokenService(tokenSecret, cfg.TokenTTL, clk)
	if err != nil {
		return nil, err
	}

	transactions := cfg.Transactions
	if !transactions.Valid() {
		transactions = model.Target{Database: config.DefaultDatabase, Collection: "transactions"}
	}

	// Create services
	manager := session.NewManager(sessions, clk, rnd, cfg.SessionConfig)
	authService := auth.New(store, manager, clk, logger, authCfg)
	usersService := users.New(store, authService, clk, logger, authCfg.BcryptCost)

	return &App{
		Storage:        store,
		SessionStore:   sessions,
		Clock:          clk,
		Random:         rnd,
		Sessions:       manager,
		AuthService:    authService,
		TokenService:   tokens,
		UsersService:   usersService,
		BrowserService: browser.New(store, logger),
		Executor:       batch.New(store, logger),
		Coercion:       coercion.New(clk, rnd),
		LoginLimiter:   middleware.NewRateLimiter(clk, cfg.RateLimit),
		Transactions:   transactions,
	}, nil
}

// Close releases the stores
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
