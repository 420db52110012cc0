package policies

import "context"

// Store persists policies and their bindings.
type Store interface {
	Create(ctx context.Context, policy *Policy) error
	Bind(ctx context.Context, binding Binding) error
	// Count reports the total number of policies.
	Count(ctx context.Context) (int, error)
	// CountUnbound reports policies with no binding at all; these can never
	// run and are flagged on the dashboard.
	CountUnbound(ctx context.Context) (int, error)
}
