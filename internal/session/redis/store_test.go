package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/fxdesk/internal/dependencies/mocks"
	"github.com/mcoot/fxdesk/internal/model"
)

type StoreSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	clock *mocks.MockClock
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.store = NewWithClient(client, s.clock)
	s.ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StoreSuite) newSession(id string) *model.Session {
	now := s.clock.Now()
	return &model.Session{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func (s *StoreSuite) TestSaveAndGet() {
	sess := s.newSession("sess_1")
	sess.IsLoggedIn = true
	sess.Username = "alice"
	sess.IsAdmin = true
	sess.SetTarget(model.ActionUpdate, model.Target{Database: "fx", Collection: "rates"})

	err := s.store.Save(s.ctx, sess)
	s.Require().NoError(err)

	retrieved, err := s.store.Get(s.ctx, "sess_1")
	s.Require().NoError(err)
	s.Equal("alice", retrieved.Username)
	s.True(retrieved.IsAdmin)
	s.Equal(model.Target{Database: "fx", Collection: "rates"}, retrieved.Targets[model.ActionUpdate])
}

func (s *StoreSuite) TestGetNotFound() {
	_, err := s.store.Get(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StoreSuite) TestSessionTTLFollowsExpiry() {
	sess := s.newSession("sess_1")
	_ = s.store.Save(s.ctx, sess)

	ttl := s.mini.TTL(sessionKey("sess_1"))
	s.Equal(time.Hour, ttl)

	s.mini.FastForward(time.Hour + time.Second)
	_, err := s.store.Get(s.ctx, "sess_1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StoreSuite) TestSaveExpiredSessionDeletes() {
	sess := s.newSession("sess_1")
	_ = s.store.Save(s.ctx, sess)

	sess.ExpiresAt = s.clock.Now().Add(-time.Minute)
	s.Require().NoError(s.store.Save(s.ctx, sess))
	s.False(s.mini.Exists(sessionKey("sess_1")))
}

func (s *StoreSuite) TestDelete() {
	_ = s.store.Save(s.ctx, s.newSession("sess_1"))

	err := s.store.Delete(s.ctx, "sess_1")
	s.Require().NoError(err)

	_, err = s.store.Get(s.ctx, "sess_1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}
