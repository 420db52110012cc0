package flows

import (
	"context"
	"fmt"
	"sync"

	"signet/pkg/platform/sentinel"
)

// Store persists flows. Flows are few and read-mostly, so the only backing is
// in-memory; the cached plans are the persistent artifact.
type Store interface {
	Create(ctx context.Context, flow *Flow) error
	GetBySlug(ctx context.Context, slug string) (*Flow, error)
	List(ctx context.Context) ([]*Flow, error)
}

// InMemoryStore keeps flows in a map keyed by slug.
type InMemoryStore struct {
	mu    sync.RWMutex
	flows map[string]*Flow
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{flows: make(map[string]*Flow)}
}

func (s *InMemoryStore) Create(_ context.Context, flow *Flow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.flows[flow.Slug]; exists {
		return fmt.Errorf("flow slug %q: %w", flow.Slug, sentinel.ErrConflict)
	}
	copied := *flow
	copied.Stages = append([]string(nil), flow.Stages...)
	s.flows[flow.Slug] = &copied
	return nil
}

func (s *InMemoryStore) GetBySlug(_ context.Context, slug string) (*Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flow, exists := s.flows[slug]
	if !exists {
		return nil, fmt.Errorf("flow slug %q: %w", slug, sentinel.ErrNotFound)
	}
	copied := *flow
	copied.Stages = append([]string(nil), flow.Stages...)
	return &copied, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Flow, 0, len(s.flows))
	for _, flow := range s.flows {
		copied := *flow
		copied.Stages = append([]string(nil), flow.Stages...)
		out = append(out, &copied)
	}
	return out, nil
}
