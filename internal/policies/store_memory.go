package policies

import (
	"context"
	"fmt"
	"sync"

	id "signet/pkg/domain"
	"signet/pkg/platform/sentinel"
)

// InMemoryStore keeps policies and bindings in maps for unit tests and
// cache-less development.
type InMemoryStore struct {
	mu       sync.RWMutex
	policies map[id.PolicyID]*Policy
	bindings []Binding
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{policies: make(map[id.PolicyID]*Policy)}
}

func (s *InMemoryStore) Create(_ context.Context, policy *Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[policy.ID]; exists {
		return fmt.Errorf("policy %s: %w", policy.ID, sentinel.ErrConflict)
	}
	copied := *policy
	s.policies[policy.ID] = &copied
	return nil
}

func (s *InMemoryStore) Bind(_ context.Context, binding Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[binding.PolicyID]; !exists {
		return fmt.Errorf("policy %s: %w", binding.PolicyID, sentinel.ErrNotFound)
	}
	s.bindings = append(s.bindings, binding)
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.policies), nil
}

func (s *InMemoryStore) CountUnbound(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bound := make(map[id.PolicyID]bool, len(s.bindings))
	for _, binding := range s.bindings {
		bound[binding.PolicyID] = true
	}

	count := 0
	for policyID := range s.policies {
		if !bound[policyID] {
			count++
		}
	}
	return count, nil
}
