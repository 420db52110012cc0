package providers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	id "signet/pkg/domain"
	"signet/pkg/platform/sentinel"
)

// InMemoryStore keeps providers and applications in maps for unit tests and
// cache-less development.
type InMemoryStore struct {
	mu        sync.RWMutex
	providers map[id.ProviderID]*Provider
	apps      map[id.ApplicationID]*Application
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		providers: make(map[id.ProviderID]*Provider),
		apps:      make(map[id.ApplicationID]*Application),
	}
}

func (s *InMemoryStore) CreateProvider(_ context.Context, provider *Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.providers[provider.ID]; exists {
		return fmt.Errorf("provider %s: %w", provider.ID, sentinel.ErrConflict)
	}
	copied := *provider
	s.providers[provider.ID] = &copied
	return nil
}

func (s *InMemoryStore) CreateApplication(_ context.Context, app *Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.apps {
		if existing.Slug == app.Slug {
			return fmt.Errorf("application slug %q: %w", app.Slug, sentinel.ErrConflict)
		}
	}
	copied := *app
	if app.ProviderID != nil {
		pid := *app.ProviderID
		copied.ProviderID = &pid
	}
	s.apps[app.ID] = &copied
	return nil
}

func (s *InMemoryStore) CountProviders(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.providers), nil
}

func (s *InMemoryStore) ListWithoutApplication(_ context.Context) ([]Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fronted := make(map[id.ProviderID]bool, len(s.apps))
	for _, app := range s.apps {
		if app.ProviderID != nil {
			fronted[*app.ProviderID] = true
		}
	}

	var orphaned []Provider
	for _, provider := range s.providers {
		if !fronted[provider.ID] {
			orphaned = append(orphaned, *provider)
		}
	}
	sort.Slice(orphaned, func(i, j int) bool { return orphaned[i].Name < orphaned[j].Name })
	return orphaned, nil
}
