package users

import (
	"context"

	id "signet/pkg/domain"
)

// Store persists user accounts. Implementations return sentinel.ErrNotFound
// for missing users and sentinel.ErrConflict on username collisions.
type Store interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID id.UserID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// Count reports the number of accounts excluding the anonymous sentinel,
	// which is what the dashboard displays.
	Count(ctx context.Context) (int, error)
}
