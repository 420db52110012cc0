package providers

import (
	"context"
)

// Store persists providers and applications. Implementations return
// sentinel.ErrConflict on slug collisions and sentinel.ErrNotFound for
// missing records.
type Store interface {
	CreateProvider(ctx context.Context, provider *Provider) error
	CreateApplication(ctx context.Context, app *Application) error
	// CountProviders reports the total number of configured providers.
	CountProviders(ctx context.Context) (int, error)
	// ListWithoutApplication returns providers no application fronts,
	// ordered by name. These show up on the dashboard as likely
	// misconfigurations.
	ListWithoutApplication(ctx context.Context) ([]Provider, error)
}
