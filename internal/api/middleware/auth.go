package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/logger"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/response"
)

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*entity.Identity, error)
}

type identityKey struct{}

// Auth rejects requests without a valid ID token and stores the caller's
// identity in the request context.
func Auth(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			identity, err := verifier.Verify(ctx, extractToken(r))
			if err != nil {
				response.FromError(ctx, w, err)
				return
			}

			ctx = WithIdentity(ctx, *identity)
			ctx = logger.WithUser(ctx, identity.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithIdentity(ctx context.Context, identity entity.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFrom(ctx context.Context) (entity.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(entity.Identity)
	return identity, ok
}

// extractToken reads the bearer token. Browsers cannot set headers on a
// websocket handshake, so the token query parameter is accepted as well.
func extractToken(r *http.Request) string {
	bearer := r.Header.Get("Authorization")
	if len(bearer) > 7 && strings.EqualFold(bearer[:7], "Bearer ") {
		return strings.TrimSpace(bearer[7:])
	}
	if uid := r.Header.Get("X-User-Id"); uid != "" {
		return uid
	}
	return r.URL.Query().Get("token")
}
