package events

import "context"

// Store persists the event log. Append is the only write; everything else is
// reporting.
type Store interface {
	Append(ctx context.Context, event *Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
	ListByActions(ctx context.Context, actions []Action, limit int) ([]Event, error)
	// TopApplications aggregates authorize_application events with a
	// recorded application into usage rows, ordered by TotalLogins
	// descending, at most limit rows.
	TopApplications(ctx context.Context, limit int) ([]ApplicationUsage, error)
}
