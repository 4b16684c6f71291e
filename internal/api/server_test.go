package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/launchpad-labs/copilot-backend/internal/api/apitest"
	dashboardapi "github.com/launchpad-labs/copilot-backend/internal/api/dashboard"
	onboardingapi "github.com/launchpad-labs/copilot-backend/internal/api/onboarding"
	resultsapi "github.com/launchpad-labs/copilot-backend/internal/api/results"
	streamapi "github.com/launchpad-labs/copilot-backend/internal/api/stream"
	"github.com/launchpad-labs/copilot-backend/internal/config"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/identity"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/formatter"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, checks map[string]HealthCheck) *httptest.Server {
	t.Helper()

	env := apitest.NewEnv(t)
	specPath := filepath.Join(t.TempDir(), "swagger.yaml")
	require.NoError(t, os.WriteFile(specPath, []byte("openapi: 3.0.3\n"), 0o600))

	cfg := &config.Config{
		RequestTimeout:  5 * time.Second,
		AllowedOrigins:  []string{"*"},
		SwaggerSpecPath: specPath,
	}
	v := validator.NewValidator(0)
	handlers := Handlers{
		Dashboard:  dashboardapi.NewHandler(env.Registry, v),
		Onboarding: onboardingapi.NewHandler(env.Registry, v),
		Results:    resultsapi.NewHandler(env.Registry, formatter.NewFactory()),
		Stream:     streamapi.NewHandler(env.Registry, cfg.AllowedOrigins),
	}

	srv := httptest.NewServer(SetupRouter(cfg, handlers, identity.NewMockVerifier(), checks, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealthReportsEachService(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	srv := newTestServer(t, map[string]HealthCheck{"store": ok, "generation": ok})
	resp := get(t, srv.URL+"/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, map[string]string{"store": "ok", "generation": "ok"}, body.Services)

	srv = newTestServer(t, map[string]HealthCheck{"store": down, "generation": ok})
	resp = get(t, srv.URL+"/health", "")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "connection refused", body.Services["store"])
}

func TestDocsServeSpec(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := get(t, srv.URL+"/docs/swagger.yaml", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))
}

func TestAPIRequiresAuth(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := get(t, srv.URL+"/api/v1/dashboard", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = get(t, srv.URL+"/api/v1/dashboard", "u1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state entity.DashboardState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, entity.ViewOnboarding, state.View)
}

func TestStreamIsMountedUnderAuth(t *testing.T) {
	srv := newTestServer(t, nil)
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(base+"?token=u1", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg entity.StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, entity.StreamState, msg.Type)
}
