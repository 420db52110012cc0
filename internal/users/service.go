package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	id "signet/pkg/domain"
	dErrors "signet/pkg/domain-errors"
	"signet/pkg/platform/sentinel"
	"signet/pkg/requestcontext"
)

// Service wraps the store with authentication and the dashboard count. All
// authentication failures collapse into one unauthorized error so responses
// cannot be used to enumerate accounts.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Authenticate verifies a username/password pair and returns the user.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	unauthorized := dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")

	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, fmt.Errorf("load user: %w", err)
		}
		return nil, unauthorized
	}

	// The anonymous sentinel carries no hash and must never log in.
	if user.IsAnonymous || user.PasswordHash == "" {
		return nil, unauthorized
	}

	if err := VerifyPassword(password, user.PasswordHash); err != nil {
		s.logger.WarnContext(ctx, "authentication failed",
			"request_id", requestcontext.RequestID(ctx),
			"username", username,
		)
		return nil, unauthorized
	}
	return user, nil
}

// IsSuperuser reports whether the user exists and holds superuser rights.
func (s *Service) IsSuperuser(ctx context.Context, userID id.UserID) (bool, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsSuperuser, nil
}

// Count reports the number of accounts excluding the anonymous sentinel.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}
