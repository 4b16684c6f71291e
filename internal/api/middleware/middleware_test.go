package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/launchpad-labs/copilot-backend/internal/identity"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		assert.True(t, ok)
		_, _ = w.Write([]byte(id.UserID))
	})
}

func TestAuthTokenSources(t *testing.T) {
	h := Auth(identity.NewMockVerifier())(echoUser(t))

	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{name: "bearer", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer u1") }, want: "u1"},
		{name: "lowercase bearer", setup: func(r *http.Request) { r.Header.Set("Authorization", "bearer u2") }, want: "u2"},
		{name: "user header", setup: func(r *http.Request) { r.Header.Set("X-User-Id", "u3") }, want: "u3"},
		{name: "query", setup: func(r *http.Request) {
			q := r.URL.Query()
			q.Set("token", "u4")
			r.URL.RawQuery = q.Encode()
		}, want: "u4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	h := Auth(identity.NewMockVerifier())(echoUser(t))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityFromEmptyContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)
}

func TestLoggerPassesThrough(t *testing.T) {
	h := Logger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
