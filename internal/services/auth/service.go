package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
	"slices"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/fxdesk/internal/dependencies/clock"
	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/session"
	"github.com/mcoot/fxdesk/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyPassword      = errors.New("password must not be empty")
)

// StaticCredentials is the single fallback account read from the secrets file.
// PasswordDigest is a SHA-256 hex digest.
type StaticCredentials struct {
	Username       string
	PasswordDigest string
}

// Config holds configuration for the auth service
type Config struct {
	// MigrateLegacyHashes replaces a legacy digest with bcrypt after a
	// successful login
	MigrateLegacyHashes bool
	BcryptCost          int
	Static              StaticCredentials
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		MigrateLegacyHashes: true,
		BcryptCost:          bcrypt.DefaultCost,
	}
}

// Identity is who a successful login belongs to
type Identity struct {
	Username    string
	DisplayName string
	IsAdmin     bool
}

// Service verifies credentials and manages login state
type Service struct {
	users    storage.UserStore
	sessions *session.Manager
	clock    clock.Clock
	logger   *slog.Logger
	cfg      Config
}

// New creates a new auth Service
func New(users storage.UserStore, sessions *session.Manager, clk clock.Clock, logger *slog.Logger, cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{
		users:    users,
		sessions: sessions,
		clock:    clk,
		logger:   logger,
		cfg:      cfg,
	}
}

// Authenticate reports whether the username and password are valid
func (s *Service) Authenticate(ctx context.Context, username, password string) bool {
	_, err := s.Verify(ctx, username, password)
	return err == nil
}

// Verify checks credentials against the user store first and then the static
// fallback account. Any failure is reported as ErrInvalidCredentials.
func (s *Service) Verify(ctx context.Context, username, password string) (*Identity, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.activeUser(ctx, username)
	switch {
	case err == nil:
		if s.verifyPrimary(ctx, user, password) {
			return &Identity{
				Username:    user.Username,
				DisplayName: user.DisplayName,
				IsAdmin:     user.IsAdmin(),
			}, nil
		}
	case errors.Is(err, model.ErrUserNotFound):
	default:
		s.logger.Warn("user store lookup failed, trying fallback credentials", "username", username, "error", err)
	}

	if s.verifyStatic(username, password) {
		s.logger.Info("user authenticated via fallback credentials", "username", username)
		return &Identity{
			Username:    username,
			DisplayName: username,
			IsAdmin:     s.HasRole(ctx, username, model.RoleAdmin),
		}, nil
	}

	s.logger.Info("authentication failed", "username", username)
	return nil, ErrInvalidCredentials
}

func (s *Service) verifyPrimary(ctx context.Context, user *model.User, password string) bool {
	switch user.Password.Scheme {
	case model.HashSchemeBcrypt:
		if bcrypt.CompareHashAndPassword(user.Password.Value, []byte(password)) != nil {
			return false
		}
		s.logger.Info("user authenticated", "username", user.Username, "scheme", "bcrypt")
		return true

	case model.HashSchemeLegacySHA256:
		if !digestMatches(string(user.Password.Value), password) {
			return false
		}
		s.logger.Warn("user authenticated with legacy password digest", "username", user.Username)
		if s.cfg.MigrateLegacyHashes {
			s.upgradeHash(ctx, user, password)
		}
		return true

	default:
		return false
	}
}

// upgradeHash stores a bcrypt hash in place of a legacy digest. Failure only
// means the user stays on the legacy scheme for now.
func (s *Service) upgradeHash(ctx context.Context, user *model.User, password string) {
	hash, err := HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password for upgrade", "username", user.Username, "error", err)
		return
	}
	user.Password = hash
	user.UpdatedAt = s.clock.Now()
	if err := s.users.UpdateUser(ctx, user); err != nil {
		s.logger.Error("failed to upgrade legacy password digest", "username", user.Username, "error", err)
		return
	}
	s.logger.Info("upgraded legacy password digest to bcrypt", "username", user.Username)
}

func (s *Service) verifyStatic(username, password string) bool {
	static := s.cfg.Static
	if static.Username == "" || static.PasswordDigest == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(static.Username)) != 1 {
		return false
	}
	return digestMatches(static.PasswordDigest, password)
}

// CheckSecondary re-authenticates a user with their secondary password before
// a destructive action. Only bcrypt hashes are accepted.
func (s *Service) CheckSecondary(ctx context.Context, username, secondary string) bool {
	if username == "" || secondary == "" {
		return false
	}
	user, err := s.activeUser(ctx, username)
	if err != nil {
		s.logger.Warn("secondary password check failed", "username", username, "error", err)
		return false
	}
	hash := user.SecondaryPassword
	if hash.IsZero() || hash.Scheme != model.HashSchemeBcrypt {
		s.logger.Warn("secondary password not set", "username", username)
		return false
	}
	if bcrypt.CompareHashAndPassword(hash.Value, []byte(secondary)) != nil {
		s.logger.Info("secondary password rejected", "username", username)
		return false
	}
	return true
}

// HasRole reports whether the active user holds one of the given roles.
// Lookup failures count as no.
func (s *Service) HasRole(ctx context.Context, username string, roles ...model.Role) bool {
	if username == "" {
		return false
	}
	user, err := s.activeUser(ctx, username)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			s.logger.Warn("role check failed", "username", username, "error", err)
		}
		return false
	}
	return slices.Contains(roles, user.Role)
}

// AccountActive reports whether a logged-in username may keep using its
// session: the user record must still exist and be active, or the name must be
// the configured fallback username. Store errors fail closed.
func (s *Service) AccountActive(ctx context.Context, username string) bool {
	if username == "" {
		return false
	}
	_, err := s.activeUser(ctx, username)
	switch {
	case err == nil:
		return true
	case errors.Is(err, model.ErrUserNotFound):
		return s.cfg.Static.Username != "" && username == s.cfg.Static.Username
	default:
		s.logger.Warn("account check failed", "username", username, "error", err)
		return false
	}
}

// Login verifies credentials and marks the session as logged in under a new id
func (s *Service) Login(ctx context.Context, sess *model.Session, username, password string) (*Identity, error) {
	identity, err := s.Verify(ctx, username, password)
	if err != nil {
		return nil, err
	}

	sess.Clear()
	sess.IsLoggedIn = true
	sess.Username = identity.Username
	sess.DisplayName = identity.DisplayName
	sess.IsAdmin = identity.IsAdmin

	if err := s.sessions.Rotate(ctx, sess); err != nil {
		return nil, err
	}
	return identity, nil
}

// Logout resets the session to logged out and gives it a new id
func (s *Service) Logout(ctx context.Context, sess *model.Session) error {
	sess.Clear()
	return s.sessions.Rotate(ctx, sess)
}

// CreateAdmin stores a new admin account with bcrypt hashes
func (s *Service) CreateAdmin(ctx context.Context, username, password, secondary string) (*model.User, error) {
	if username == "" {
		return nil, ErrInvalidCredentials
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	primaryHash, err := HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	var secondaryHash model.PasswordHash
	if secondary != "" {
		if secondaryHash, err = HashPassword(secondary, s.cfg.BcryptCost); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	user := &model.User{
		Username:          username,
		DisplayName:       "Administrator",
		Role:              model.RoleAdmin,
		Active:            true,
		Password:          primaryHash,
		SecondaryPassword: secondaryHash,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("admin user created", "username", username)
	return user, nil
}

func (s *Service) activeUser(ctx context.Context, username string) (*model.User, error) {
	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// HashPassword hashes a password with bcrypt
func HashPassword(password string, cost int) (model.PasswordHash, error) {
	if password == "" {
		return model.PasswordHash{}, ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return model.PasswordHash{}, err
	}
	return model.PasswordHash{Scheme: model.HashSchemeBcrypt, Value: hash}, nil
}

// LegacyDigest returns the SHA-256 hex digest used by older records and the
// secrets file
func LegacyDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func digestMatches(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(LegacyDigest(password))) == 1
}
