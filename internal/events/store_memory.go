package events

import (
	"context"
	"sort"
	"sync"

	id "signet/pkg/domain"
)

// InMemoryStore keeps events in an append-order slice. The aggregations
// mirror the SQL the postgres store runs so both backends report the same
// numbers.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

func (s *InMemoryStore) ListByActions(_ context.Context, actions []Action, limit int) ([]Event, error) {
	wanted := make(map[Action]bool, len(actions))
	for _, a := range actions {
		wanted[a] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		if wanted[s.events[i].Action] {
			out = append(out, s.events[i])
		}
	}
	return out, nil
}

func (s *InMemoryStore) TopApplications(_ context.Context, limit int) ([]ApplicationUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type agg struct {
		logins int
		users  map[id.UserID]bool
	}
	byApp := make(map[string]*agg)
	for _, event := range s.events {
		if event.Action != ActionAuthorizeApplication {
			continue
		}
		app, ok := event.Context[ContextAuthorizedApplication].(string)
		if !ok || app == "" {
			continue
		}
		entry := byApp[app]
		if entry == nil {
			entry = &agg{users: make(map[id.UserID]bool)}
			byApp[app] = entry
		}
		entry.logins++
		if event.UserID != nil {
			entry.users[*event.UserID] = true
		}
	}

	usage := make([]ApplicationUsage, 0, len(byApp))
	for app, entry := range byApp {
		usage = append(usage, ApplicationUsage{
			Application: app,
			TotalLogins: entry.logins,
			UniqueUsers: len(entry.users),
		})
	}
	sort.Slice(usage, func(i, j int) bool {
		if usage[i].TotalLogins != usage[j].TotalLogins {
			return usage[i].TotalLogins > usage[j].TotalLogins
		}
		return usage[i].Application < usage[j].Application
	})
	if len(usage) > limit {
		usage = usage[:limit]
	}
	return usage, nil
}
