package session

import (
	"context"
	"errors"
	"time"

	"github.com/mcoot/fxdesk/internal/dependencies/clock"
	"github.com/mcoot/fxdesk/internal/dependencies/random"
	"github.com/mcoot/fxdesk/internal/model"
)

// Store persists browser sessions between requests
type Store interface {
	Get(ctx context.Context, id string) (*model.Session, error)
	Save(ctx context.Context, s *model.Session) error
	Delete(ctx context.Context, id string) error
}

// Sweeper is implemented by stores that cannot expire sessions on their own.
// Redis drops keys by TTL so it does not need one.
type Sweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Config holds configuration for session handling
type Config struct {
	TTL time.Duration
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		TTL: 24 * time.Hour,
	}
}

// Manager creates, loads and persists sessions
type Manager struct {
	store Store
	clock clock.Clock
	rnd   random.Random
	ttl   time.Duration
}

// NewManager creates a new session Manager
func NewManager(store Store, clk clock.Clock, rnd random.Random, cfg Config) *Manager {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	return &Manager{
		store: store,
		clock: clk,
		rnd:   rnd,
		ttl:   cfg.TTL,
	}
}

// TTL returns how long an idle session lives
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// New returns a fresh logged-out session. It is not persisted until Save.
func (m *Manager) New() *model.Session {
	now := m.clock.Now()
	return &model.Session{
		ID:        m.rnd.Token("sess_"),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
}

// Load returns the session with the given id, or a fresh one when the id is
// empty, unknown or expired. The boolean reports whether a fresh session was made.
func (m *Manager) Load(ctx context.Context, id string) (*model.Session, bool, error) {
	if id == "" {
		return m.New(), true, nil
	}

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return m.New(), true, nil
		}
		return nil, false, err
	}

	if m.clock.Now().After(sess.ExpiresAt) {
		_ = m.store.Delete(ctx, id)
		return m.New(), true, nil
	}

	return sess, false, nil
}

// Save persists the session and slides its expiry forward
func (m *Manager) Save(ctx context.Context, sess *model.Session) error {
	sess.ExpiresAt = m.clock.Now().Add(m.ttl)
	return m.store.Save(ctx, sess)
}

// Rotate gives the session a new id, dropping the old one. Called on login so
// a pre-login id cannot be reused.
func (m *Manager) Rotate(ctx context.Context, sess *model.Session) error {
	oldID := sess.ID
	sess.ID = m.rnd.Token("sess_")
	if err := m.Save(ctx, sess); err != nil {
		return err
	}
	return m.store.Delete(ctx, oldID)
}

// Destroy removes a session
func (m *Manager) Destroy(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// Sweep removes expired sessions from stores that keep them until asked.
// It is a no-op for stores with native expiry.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	sweeper, ok := m.store.(Sweeper)
	if !ok {
		return 0, nil
	}
	return sweeper.DeleteExpired(ctx, m.clock.Now())
}

// Run calls Sweep periodically until ctx is done
func (m *Manager) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_, _ = m.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}
