package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mcoot/fxdesk/internal/dependencies/clock"
	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/services/auth"
	"github.com/mcoot/fxdesk/internal/storage"
)

// Errors
var (
	ErrPasswordMismatch          = errors.New("passwords do not match")
	ErrSecondaryPasswordMismatch = errors.New("secondary passwords do not match")
	ErrUsernameRequired          = errors.New("username is required")
	ErrSelfDelete                = errors.New("cannot delete the account you are logged in with")
	ErrSecondaryRejected         = errors.New("invalid secondary password")
)

// Registration is the submitted new-user form
type Registration struct {
	Username                 string
	Password                 string
	ConfirmPassword          string
	SecondaryPassword        string
	ConfirmSecondaryPassword string
}

// Edit is the submitted edit-user form. Password is only changed when
// ChangePassword is set and NewPassword is not empty.
type Edit struct {
	DisplayName     string
	Email           string
	Active          bool
	ChangePassword  bool
	NewPassword     string
	ConfirmPassword string
}

// Summary is a user as shown in listings, without any credentials
type Summary struct {
	Username    string
	DisplayName string
	Email       string
	Role        model.Role
	Active      bool
	CreatedAt   string
}

// SecondaryChecker verifies the acting user's secondary password
type SecondaryChecker interface {
	CheckSecondary(ctx context.Context, username, secondary string) bool
}

// Service manages user accounts
type Service struct {
	users      storage.UserStore
	secondary  SecondaryChecker
	clock      clock.Clock
	logger     *slog.Logger
	bcryptCost int
}

// New creates a new users Service
func New(users storage.UserStore, secondary SecondaryChecker, clk clock.Clock, logger *slog.Logger, bcryptCost int) *Service {
	return &Service{
		users:      users,
		secondary:  secondary,
		clock:      clk,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// Register creates a regular user. Admins can only be created from the CLI.
func (s *Service) Register(ctx context.Context, reg Registration) (*model.User, error) {
	username := strings.TrimSpace(reg.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if reg.Password != reg.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if reg.SecondaryPassword != reg.ConfirmSecondaryPassword {
		return nil, ErrSecondaryPasswordMismatch
	}

	primary, err := auth.HashPassword(reg.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	secondary, err := auth.HashPassword(reg.SecondaryPassword, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &model.User{
		Username:          username,
		Role:              model.RoleUser,
		Active:            true,
		Password:          primary,
		SecondaryPassword: secondary,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "username", username)
	return user, nil
}

// List returns every user without credentials
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, len(users))
	for i, u := range users {
		out[i] = summarize(u)
	}
	return out, nil
}

// Get returns one user without credentials
func (s *Service) Get(ctx context.Context, username string) (*Summary, error) {
	u, err := s.users.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	sum := summarize(u)
	return &sum, nil
}

func summarize(u *model.User) Summary {
	var created string
	if !u.CreatedAt.IsZero() {
		created = u.CreatedAt.UTC().Format("2006-01-02 15:04")
	}
	role := u.Role
	if role == "" {
		role = model.RoleUser
	}
	return Summary{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Role:        role,
		Active:      u.Active,
		CreatedAt:   created,
	}
}

// Update applies an edit. The role is never changed here.
func (s *Service) Update(ctx context.Context, username string, edit Edit) (*Summary, error) {
	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}

	if edit.ChangePassword && edit.NewPassword != "" {
		if edit.NewPassword != edit.ConfirmPassword {
			return nil, ErrPasswordMismatch
		}
		hash, err := auth.HashPassword(edit.NewPassword, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	user.DisplayName = strings.TrimSpace(edit.DisplayName)
	user.Email = strings.TrimSpace(edit.Email)
	user.Active = edit.Active
	user.UpdatedAt = s.clock.Now()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", "username", username)
	sum := summarize(user)
	return &sum, nil
}

// Delete removes a user after checking the acting admin's secondary password
func (s *Service) Delete(ctx context.Context, actor, username, secondary string) error {
	if actor == username {
		return ErrSelfDelete
	}
	if !s.secondary.CheckSecondary(ctx, actor, secondary) {
		return ErrSecondaryRejected
	}
	if err := s.users.DeleteUser(ctx, username); err != nil {
		return err
	}
	s.logger.Info("user deleted", "username", username, "by", actor)
	return nil
}
