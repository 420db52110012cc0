package events

import (
	"context"
	"log/slog"

	"github.com/mssola/useragent"

	id "signet/pkg/domain"
	"signet/pkg/requestcontext"
)

// Service records events, enriching them with request-scoped client metadata.
// Recording failures are logged but never propagated: losing one log line
// must not fail the request that caused it.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Record appends an event for the given action. userID may be nil for events
// without an acting user. eventContext may be nil.
func (s *Service) Record(ctx context.Context, action Action, userID *id.UserID, eventContext map[string]any) {
	if eventContext == nil {
		eventContext = map[string]any{}
	}

	rawUA := requestcontext.UserAgent(ctx)
	if rawUA != "" {
		ua := useragent.New(rawUA)
		browser, version := ua.Browser()
		if browser != "" {
			eventContext["browser"] = browser
			eventContext["browser_version"] = version
		}
		if os := ua.OS(); os != "" {
			eventContext["os"] = os
		}
	}

	event := &Event{
		ID:        id.NewEventID(),
		Action:    action,
		UserID:    userID,
		Context:   eventContext,
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: rawUA,
		CreatedAt: requestcontext.Now(ctx).UTC(),
	}
	if err := s.store.Append(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "event not recorded",
			"request_id", requestcontext.RequestID(ctx),
			"action", string(action),
			"error", err,
		)
	}
}

// RecordAuthorization records that a user was let into an application. The
// application name lands in the context field the usage aggregation groups by.
func (s *Service) RecordAuthorization(ctx context.Context, userID id.UserID, application string) {
	s.Record(ctx, ActionAuthorizeApplication, &userID, map[string]any{
		ContextAuthorizedApplication: application,
	})
}

// RecordCacheCleared records an admin clearing a cache namespace.
func (s *Service) RecordCacheCleared(ctx context.Context, userID id.UserID, kind string, removed int64) {
	s.Record(ctx, ActionCacheCleared, &userID, map[string]any{
		ContextCacheKind: kind,
		"keys_removed":   removed,
	})
}

// RecordUpdateAvailable records that the version check found a newer release.
func (s *Service) RecordUpdateAvailable(ctx context.Context, newVersion string) {
	s.Record(ctx, ActionUpdateAvailable, nil, map[string]any{
		ContextNewVersion: newVersion,
	})
}

// TopApplications exposes the dashboard aggregation.
func (s *Service) TopApplications(ctx context.Context, limit int) ([]ApplicationUsage, error) {
	return s.store.TopApplications(ctx, limit)
}
