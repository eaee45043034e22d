package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	Username       string
	Email          string
	FullName       string
	Avatar         string
	CoverImage     string
	HashedPassword string

	// Last issued refresh token. Nil if the user is logged out.
	// The single source of truth for refresh validity: a well signed
	// token that doesn't equal this value must be rejected.
	RefreshToken *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot returns a copy safe to hand to handlers and responses:
// no password hash, no refresh token.
func (u User) Snapshot() User {
	u.HashedPassword = ""
	u.RefreshToken = nil
	return u
}
