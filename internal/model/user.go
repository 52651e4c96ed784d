package model

import (
	"fmt"
	"time"
)

// Role grants access to parts of the application
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole validates a stored or submitted role name
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// HashScheme identifies how a password hash was produced
type HashScheme string

const (
	HashSchemeBcrypt       HashScheme = "bcrypt"
	HashSchemeLegacySHA256 HashScheme = "sha256" // hex digest, kept for older records
)

// PasswordHash is a stored credential. Exactly one scheme per value.
type PasswordHash struct {
	Scheme HashScheme
	Value  []byte
}

// IsZero reports whether no hash is stored
func (h PasswordHash) IsZero() bool {
	return len(h.Value) == 0
}

// User is an account in the users collection
type User struct {
	Username          string // unique, immutable
	DisplayName       string
	Email             string
	Role              Role
	Active            bool
	Password          PasswordHash
	SecondaryPassword PasswordHash
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Clone returns a deep copy so stores never share hash buffers with callers
func (u *User) Clone() *User {
	c := *u
	c.Password.Value = append([]byte(nil), u.Password.Value...)
	c.SecondaryPassword.Value = append([]byte(nil), u.SecondaryPassword.Value...)
	return &c
}
