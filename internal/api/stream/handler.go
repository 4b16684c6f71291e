package stream

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/api/middleware"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/logger"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/response"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/workspace"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Handler streams workspace updates over a websocket.
type Handler struct {
	workspaces Workspaces
	upgrader   websocket.Upgrader
}

func NewHandler(workspaces Workspaces, allowedOrigins []string) *Handler {
	allowAll := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")

	return &Handler{
		workspaces: workspaces,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// Serve handles GET /ws
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Stream")

	identity, ok := middleware.IdentityFrom(ctx)
	if !ok {
		response.FromError(ctx, w, entity.ErrUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ctxzap.Warn(ctx, "websocket upgrade failed", zap.Error(err))
		return
	}

	ws := h.workspaces.Get(ctx, identity)
	updates, stop := ws.Subscribe()
	defer stop()

	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	ctxzap.Info(ctx, "stream opened")
	go h.workspaces.KeepAlive(ctx, identity.UserID)
	go readPump(ctx, cancel, conn)
	writePump(ctx, conn, ws, updates)
	ctxzap.Info(ctx, "stream closed")
}

// readPump discards client frames and keeps the read deadline alive. It
// cancels ctx when the connection goes away.
func readPump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	defer cancel()

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				ctxzap.Warn(ctx, "websocket read failed", zap.Error(err))
			}
			return
		}
	}
}

func writePump(ctx context.Context, conn *websocket.Conn, ws *workspace.Workspace, updates <-chan entity.Update) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	if err := writeJSON(conn, entity.StreamMessage{Type: entity.StreamState, State: ws.State()}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case u, ok := <-updates:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "workspace closed"))
				return
			}
			if err := writeJSON(conn, entity.StreamMessage{Type: entity.StreamUpdate, Update: &u, State: ws.State()}); err != nil {
				ctxzap.Debug(ctx, "websocket write failed", zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeJSON(conn *websocket.Conn, msg entity.StreamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
