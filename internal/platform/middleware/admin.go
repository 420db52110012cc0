package middleware

import (
	"context"
	"log/slog"
	"net/http"

	id "signet/pkg/domain"
	"signet/pkg/requestcontext"
)

// TokenValidator validates a session token and resolves the user it belongs to.
type TokenValidator interface {
	Validate(token string) (id.UserID, error)
}

// SuperuserChecker reports whether a user exists and holds superuser rights.
type SuperuserChecker interface {
	IsSuperuser(ctx context.Context, userID id.UserID) (bool, error)
}

// RequireAdmin guards the administration surface. It reads the session cookie,
// validates the token and requires the user to be a superuser. Failures
// redirect to the login page without distinguishing a bad token from missing
// privilege, so the response never reveals which check failed.
func RequireAdmin(cookieName, loginPath string, tokens TokenValidator, users SuperuserChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			userID, err := tokens.Validate(cookie.Value)
			if err != nil {
				logger.WarnContext(ctx, "admin session rejected",
					"request_id", GetRequestID(ctx),
				)
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			isSuper, err := users.IsSuperuser(ctx, userID)
			if err != nil || !isSuper {
				logger.WarnContext(ctx, "admin access denied",
					"request_id", GetRequestID(ctx),
					"user_id", userID.String(),
				)
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithUserID(ctx, userID)))
		})
	}
}
