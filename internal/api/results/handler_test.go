package results

import (
	"net/http"
	"testing"
	"time"

	"github.com/launchpad-labs/copilot-backend/internal/api/apitest"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/formatter"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/dashboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnv(t *testing.T) *apitest.Env {
	env := apitest.NewEnv(t)
	RegisterRoutes(env.Router, NewHandler(env.Registry, formatter.NewFactory()))
	env.SeedProject(t, "u1", entity.Project{
		ID:                  "p1",
		Name:                "Ledgerly Pro!",
		Idea:                "Ledgerly Pro!: bookkeeping",
		Audience:            "freelancers",
		ValidationScore:     81,
		ExecutionConfidence: 77,
	})
	return env
}

func openResults(t *testing.T, env *apitest.Env) {
	t.Helper()

	ws := env.Registry.Get(t.Context(), entity.Identity{UserID: "u1"})
	_, err := ws.Dispatch(t.Context(), dashboard.EventContinueProject, "p1")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap, err := ws.Results()
		return err == nil && snap.Status == entity.RunStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestResultsOutsideResultsView(t *testing.T) {
	env := newTestEnv(t)

	apitest.Status(t, env.Do(t, http.MethodGet, "/results", "u1", nil), http.StatusConflict)
	apitest.Status(t, env.Do(t, http.MethodPost, "/results/restart", "u1", nil), http.StatusConflict)
	apitest.Status(t, env.Do(t, http.MethodGet, "/results/export", "u1", nil), http.StatusConflict)
}

func TestGetResultsAndRestart(t *testing.T) {
	env := newTestEnv(t)
	openResults(t, env)

	rec := env.Do(t, http.MethodGet, "/results", "u1", nil)
	apitest.Status(t, rec, http.StatusOK)
	first := apitest.Decode[entity.RunSnapshot](t, rec)
	assert.Equal(t, "p1", first.ProjectID)
	assert.NotNil(t, first.Validation)
	assert.NotNil(t, first.Roadmap)
	assert.NotNil(t, first.Copy)

	rec = env.Do(t, http.MethodPost, "/results/restart", "u1", nil)
	apitest.Status(t, rec, http.StatusAccepted)
	assert.NotEqual(t, first.ID, apitest.Decode[entity.RunSnapshot](t, rec).ID)
}

func TestExportMarkdown(t *testing.T) {
	env := newTestEnv(t)
	openResults(t, env)

	rec := env.Do(t, http.MethodGet, "/results/export?format=markdown", "u1", nil)
	apitest.Status(t, rec, http.StatusOK)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Ledgerly_Pro.md"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "# Ledgerly Pro!")
	assert.Contains(t, rec.Body.String(), "## Roadmap")
}

func TestExportPDF(t *testing.T) {
	env := newTestEnv(t)
	openResults(t, env)

	rec := env.Do(t, http.MethodGet, "/results/export?format=pdf", "u1", nil)
	apitest.Status(t, rec, http.StatusOK)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF", rec.Body.String()[:4])
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	env := newTestEnv(t)

	apitest.Status(t, env.Do(t, http.MethodGet, "/results/export?format=rtf", "u1", nil), http.StatusBadRequest)
}
