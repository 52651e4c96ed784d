// Package config loads application settings from the environment and the
// secrets file.
//
// Environment variables are parsed with caarlos0/env. Connection details and
// the static fallback credentials live in a TOML secrets file with [mongo] and
// [app] sections. Values set in the environment win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends
const (
	StorageTypeMemory = "memory"
	StorageTypeMongo  = "mongo"
)

// Session store backends
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// DefaultDatabase is used when neither MONGO_DB_NAME nor [mongo] db_name is set
const DefaultDatabase = "fxdesk"

// Config holds all server settings
type Config struct {
	// HTTP server
	ServerHost string `env:"SERVER_HOST"`
	ServerPort int    `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel   string `env:"LOG_LEVEL"   envDefault:"info"`

	// Document store
	StorageType            string `env:"STORAGE_TYPE"            envDefault:"mongo"`
	MongoURI               string `env:"MONGO_URI"`
	MongoDBName            string `env:"MONGO_DB_NAME"`
	UsersCollection        string `env:"USERS_COLLECTION"        envDefault:"users"`
	TransactionsCollection string `env:"TRANSACTIONS_COLLECTION" envDefault:"transactions"`

	// Browser sessions
	SessionStore string        `env:"SESSION_STORE" envDefault:"memory"`
	RedisURL     string        `env:"REDIS_URL"`
	SessionTTL   time.Duration `env:"SESSION_TTL"   envDefault:"24h"`

	// API tokens
	TokenSecret string        `env:"TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"1h"`

	// Login throttling, per client IP
	LoginRatePerMinute int `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	LoginBurst         int `env:"LOGIN_BURST"           envDefault:"5"`

	// Replace legacy digests with bcrypt after a successful login
	MigrateLegacyHashes bool `env:"MIGRATE_LEGACY_HASHES" envDefault:"true"`

	SecretsFile string `env:"SECRETS_FILE" envDefault:".streamlit/secrets.toml"`

	// Secrets is populated from SecretsFile
	Secrets Secrets `env:"-"`
}

// Load parses the environment, reads the secrets file if present and fills in
// derived values
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	secrets, err := LoadSecrets(cfg.SecretsFile)
	switch {
	case err == nil:
		cfg.Secrets = *secrets
	case errors.Is(err, fs.ErrNotExist):
		// No secrets file is fine when everything comes from the environment
	default:
		return nil, err
	}

	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolve() error {
	if c.MongoDBName == "" {
		c.MongoDBName = c.Secrets.Mongo.DBName
	}
	if c.MongoDBName == "" {
		c.MongoDBName = DefaultDatabase
	}

	switch c.StorageType {
	case StorageTypeMemory:
	case StorageTypeMongo:
		if c.MongoURI == "" {
			uri, err := c.Secrets.Mongo.ConnectionString()
			if err != nil {
				return err
			}
			c.MongoURI = uri
		}
	default:
		return fmt.Errorf("config: invalid STORAGE_TYPE %q: must be %q or %q", c.StorageType, StorageTypeMemory, StorageTypeMongo)
	}

	switch c.SessionStore {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.RedisURL == "" {
			return errors.New("config: REDIS_URL required when SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("config: invalid SESSION_STORE %q: must be %q or %q", c.SessionStore, SessionStoreMemory, SessionStoreRedis)
	}

	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
