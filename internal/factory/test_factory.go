package factory

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/fxdesk/internal/dependencies/mocks"
	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/services/auth"
	sessionmemory "github.com/mcoot/fxdesk/internal/session/memory"
	"github.com/mcoot/fxdesk/internal/storage/memory"
	"github.com/mcoot/fxdesk/internal/testutil"
)

// Test accounts created by NewTestApp
const (
	TestAdminUsername  = "root"
	TestAdminPassword  = "rootpass"
	TestAdminSecondary = "rootsecond"
	TestTokenSecret    = "test-token-secret"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Memory is the document store behind App.Storage
	Memory *memory.Storage

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
// and in-memory stores
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(Config{})
}

// NewTestAppWithConfig is NewTestApp with some settings overridden.
// Storage and session backends are always in memory.
func NewTestAppWithConfig(cfg Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	if cfg.AuthConfig.BcryptCost == 0 {
		static := cfg.AuthConfig.Static
		cfg.AuthConfig = auth.DefaultConfig()
		cfg.AuthConfig.Static = static
		cfg.AuthConfig.BcryptCost = bcrypt.MinCost
	}
	if !cfg.Transactions.Valid() {
		cfg.Transactions = model.Target{Database: "fxdesk", Collection: "transactions"}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = testutil.NopLogger()
	}

	app, err := newWithDependencies(store, sessionmemory.New(), mockClock, mockRandom, cfg, TestTokenSecret, logger)
	if err != nil {
		// Only the token secret can fail and it is fixed
		panic(err)
	}

	return &TestApp{
		App:        app,
		Memory:     store,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// CreateTestAdmin stores the test admin account
func (t *TestApp) CreateTestAdmin(ctx context.Context) (*model.User, error) {
	return t.AuthService.CreateAdmin(ctx, TestAdminUsername, TestAdminPassword, TestAdminSecondary)
}
