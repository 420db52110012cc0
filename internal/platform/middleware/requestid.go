package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"signet/pkg/requestcontext"
)

// RequestIDHeader carries the request ID to and from clients and proxies.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request an ID, honouring one supplied by an
// upstream proxy. The ID is echoed in the response header and stored in the
// context for log correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
