package testutil

import (
	"context"
	"net/http"

	id "signet/pkg/domain"
	"signet/pkg/requestcontext"
)

// WithUserID adds a user ID to the request context, simulating what the admin
// guard does for authenticated requests. Invalid UUIDs are ignored so tests
// can also exercise the unauthenticated path.
func WithUserID(req *http.Request, userID string) *http.Request {
	if parsed, err := id.ParseUserID(userID); err == nil {
		return req.WithContext(requestcontext.WithUserID(req.Context(), parsed))
	}
	return req
}

// WithClientMetadata adds client IP and User-Agent to the request context,
// simulating the metadata middleware.
func WithClientMetadata(req *http.Request, clientIP, userAgent string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), clientIP, userAgent))
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
