package flows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"signet/internal/platform/cache"
	id "signet/pkg/domain"
	"signet/pkg/platform/sentinel"
)

// CachePrefix namespaces computed plans in the shared cache.
const CachePrefix = "flow_"

// planTTL keeps plans around long enough to cover a full login journey.
const planTTL = time.Hour

// Plan is the ordered list of stages a specific user will walk through.
type Plan struct {
	FlowSlug   string    `json:"flow_slug"`
	Stages     []string  `json:"stages"`
	ComputedAt time.Time `json:"computed_at"`
}

// Planner computes per-user plans and memoizes them in the shared cache
// under flow_<flowID>_<userID>.
type Planner struct {
	store  Store
	cache  cache.Cache
	logger *slog.Logger
}

func NewPlanner(store Store, c cache.Cache, logger *slog.Logger) *Planner {
	return &Planner{store: store, cache: c, logger: logger}
}

func planKey(flowID id.FlowID, userID id.UserID) string {
	return fmt.Sprintf("%s%s_%s", CachePrefix, flowID, userID)
}

// PlanFor returns the plan for userID through the flow named by slug,
// computing and caching it when absent.
func (p *Planner) PlanFor(ctx context.Context, slug string, userID id.UserID) (*Plan, error) {
	flow, err := p.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	key := planKey(flow.ID, userID)
	if raw, err := p.cache.Get(ctx, key); err == nil {
		var cached Plan
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
		_ = p.cache.Delete(ctx, key)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		p.logger.WarnContext(ctx, "flow plan cache read failed", "flow", slug, "error", err)
	}

	plan := &Plan{
		FlowSlug:   flow.Slug,
		Stages:     append([]string(nil), flow.Stages...),
		ComputedAt: time.Now().UTC(),
	}

	encoded, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("encode flow plan: %w", err)
	}
	if err := p.cache.Set(ctx, key, string(encoded), planTTL); err != nil {
		p.logger.WarnContext(ctx, "flow plan cache write failed", "flow", slug, "error", err)
	}
	return plan, nil
}
