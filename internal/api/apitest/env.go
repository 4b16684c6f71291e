// Package apitest wires a complete workspace stack on SQLite for handler tests.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/launchpad-labs/copilot-backend/internal/api/middleware"
	"github.com/launchpad-labs/copilot-backend/internal/config"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/identity"
	"github.com/launchpad-labs/copilot-backend/internal/integration/generation"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/pubsub"
	"github.com/launchpad-labs/copilot-backend/internal/repository"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/pipeline"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/project"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/workspace"
	"github.com/stretchr/testify/require"
)

type Env struct {
	Registry *workspace.Registry
	Store    *repository.SQLiteStore
	Drafts   *repository.DraftMemory
	Router   chi.Router
}

// NewEnv returns an authenticated router with no routes. Any bearer token is
// accepted as the user id.
func NewEnv(t testing.TB) *Env {
	t.Helper()

	db, err := repository.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)

	notifier := pubsub.NewMemoryNotifier()
	store := repository.NewSQLiteStore(db, notifier)
	drafts := repository.NewDraftMemory()
	gen := generation.NewMockConnector()

	registry := workspace.NewRegistry(workspace.Deps{
		Store:     store,
		Drafts:    drafts,
		Projects:  project.NewUsecase(store, drafts, &project.FixedScorer{Validation: 80, Execution: 85}),
		Suggester: gen,
		Runner:    pipeline.NewRunner(gen, pipeline.Config{Focus: entity.FocusSaaS, Tone: entity.ToneBold}),
	}, config.WorkspaceConfig{IdleTTL: time.Hour, CleanupInterval: time.Hour, ListenerBuffer: 32})

	t.Cleanup(func() {
		registry.Close()
		_ = notifier.Close()
		_ = store.Close()
	})

	r := chi.NewRouter()
	r.Use(middleware.Auth(identity.NewMockVerifier()))

	return &Env{Registry: registry, Store: store, Drafts: drafts, Router: r}
}

func (e *Env) SeedProject(t testing.TB, uid string, p entity.Project) {
	t.Helper()

	_, err := e.Store.CreateProject(context.Background(), uid, p)
	require.NoError(t, err)
}

// Do sends a request as uid. body is encoded as JSON when not nil.
func (e *Env) Do(t testing.TB, method, path, uid string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req.Header.Set("Authorization", "Bearer "+uid)
	}

	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

func Decode[T any](t testing.TB, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// Status asserts the response code and prints the body on mismatch.
func Status(t testing.TB, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, rec.Body.String())
}
