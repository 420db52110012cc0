package users

import (
	"strings"
	"time"

	id "signet/pkg/domain"
	dErrors "signet/pkg/domain-errors"
	mail "signet/pkg/email"
)

// AnonymousUsername names the seeded sentinel account that represents
// unauthenticated sessions. It exists so event records always have a subject.
const AnonymousUsername = "anonymous"

// User is an account known to the provider.
//
// Invariants:
//   - Username is non-empty, at most 150 characters, unique across the store
//   - Exactly one user has IsAnonymous set: the seeded sentinel account
//   - The anonymous user can never authenticate and is excluded from the
//     account count shown on the dashboard
type User struct {
	ID           id.UserID `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsSuperuser  bool      `json:"is_superuser"`
	IsAnonymous  bool      `json:"is_anonymous"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// New constructs a regular user with a hashed password.
func New(username, name, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username cannot be empty")
	}
	if len(username) > 150 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username must be 150 characters or less")
	}
	if username == AnonymousUsername {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username is reserved")
	}

	name = strings.TrimSpace(name)
	if name == "" && email != "" {
		first, last := mail.DeriveNameFromEmail(email)
		name = first + " " + last
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &User{
		ID:           id.NewUserID(),
		Username:     username,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NewAnonymous constructs the sentinel account. It carries no password hash,
// so authentication against it always fails.
func NewAnonymous() *User {
	now := time.Now()
	return &User{
		ID:          id.NewUserID(),
		Username:    AnonymousUsername,
		Name:        "Anonymous",
		IsAnonymous: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
