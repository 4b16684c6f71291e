package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/launchpad-labs/copilot-backend/internal/api/apitest"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/dashboard"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, env *apitest.Env, query string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(env.Router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func read(t *testing.T, conn *websocket.Conn) entity.StreamMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg entity.StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestStreamSendsStateThenUpdates(t *testing.T) {
	env := apitest.NewEnv(t)
	RegisterRoutes(env.Router, NewHandler(env.Registry, []string{"*"}))
	env.SeedProject(t, "u1", entity.Project{ID: "p1", Name: "P1", Idea: "P1: x", Audience: "teams", ValidationScore: 70, ExecutionConfidence: 70})

	conn := dial(t, env, "token=u1")

	first := read(t, conn)
	assert.Equal(t, entity.StreamState, first.Type)
	assert.Equal(t, entity.ViewWelcome, first.State.View)

	ws := env.Registry.Get(t.Context(), entity.Identity{UserID: "u1"})
	_, err := ws.Dispatch(t.Context(), dashboard.EventViewAll, "")
	require.NoError(t, err)

	msg := read(t, conn)
	assert.Equal(t, entity.StreamUpdate, msg.Type)
	require.NotNil(t, msg.Update)
	assert.Equal(t, entity.UpdateView, msg.Update.Kind)
	assert.Equal(t, entity.ViewHistory, msg.State.View)
}

func TestStreamClosesWithWorkspace(t *testing.T) {
	env := apitest.NewEnv(t)
	RegisterRoutes(env.Router, NewHandler(env.Registry, nil))

	conn := dial(t, env, "token=u1")
	read(t, conn)

	env.Registry.Drop("u1")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "unexpected error: %v", err)
}

func TestStreamRejectsForeignOrigin(t *testing.T) {
	env := apitest.NewEnv(t)
	RegisterRoutes(env.Router, NewHandler(env.Registry, []string{"https://app.example"}))

	srv := httptest.NewServer(env.Router)
	defer srv.Close()

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws?token=u1", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

type keepAliveRecorder struct {
	*workspace.Registry
	started chan string
	stopped chan string
}

func (k *keepAliveRecorder) KeepAlive(ctx context.Context, userID string) {
	k.started <- userID
	<-ctx.Done()
	k.stopped <- userID
}

func TestStreamKeepsWorkspaceAliveWhileOpen(t *testing.T) {
	env := apitest.NewEnv(t)
	rec := &keepAliveRecorder{Registry: env.Registry, started: make(chan string, 1), stopped: make(chan string, 1)}
	RegisterRoutes(env.Router, NewHandler(rec, nil))

	conn := dial(t, env, "token=u1")
	read(t, conn)

	select {
	case uid := <-rec.started:
		assert.Equal(t, "u1", uid)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not hold its workspace")
	}

	require.NoError(t, conn.Close())

	select {
	case uid := <-rec.stopped:
		assert.Equal(t, "u1", uid)
	case <-time.After(2 * time.Second):
		t.Fatal("workspace hold outlived the stream")
	}
}
