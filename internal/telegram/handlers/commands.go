package handlers

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/telegram/render"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/dashboard"
	"go.uber.org/zap"
)

// HandleCommand handles bot commands
func (h *Handler) HandleCommand(ctx context.Context, msg *Message) {
	ctxzap.Info(ctx, "command received",
		zap.String("command", msg.Command),
		zap.Int64("user_id", msg.UserID),
	)

	switch msg.Command {
	case "start":
		ctx, ws := h.workspace(ctx, msg)
		_ = h.showState(ctx, msg.ChatID, ws)

	case "help":
		_ = h.sender.Send(ctx, msg.ChatID, render.MsgHelp, nil)

	case "reload":
		ctx, ws := h.workspace(ctx, msg)
		if _, err := ws.Dispatch(ctx, dashboard.EventReload, ""); err != nil {
			h.fail(ctx, msg.ChatID, ws, err)
			return
		}
		_ = h.showState(ctx, msg.ChatID, ws)

	case "signout":
		userID := identityOf(msg).UserID
		h.progress.Stop(userID)
		h.workspaces.Drop(userID)
		_ = h.sender.Send(ctx, msg.ChatID, render.MsgSignedOut, nil)

	default:
		_ = h.sender.Send(ctx, msg.ChatID, render.MsgUnknown, nil)
	}
}
