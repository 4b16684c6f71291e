package handlers

import (
	"context"
	"strconv"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/logger"
	pkgRetry "github.com/launchpad-labs/copilot-backend/internal/pkg/retry"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/validator"
	"github.com/launchpad-labs/copilot-backend/internal/telegram/keyboard"
	"github.com/launchpad-labs/copilot-backend/internal/telegram/render"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/workspace"
	"go.uber.org/zap"
)

// UserIDPrefix namespaces Telegram users in the shared store.
const UserIDPrefix = "telegram:"

// Message represents a normalized Telegram message
type Message struct {
	ChatID       int64
	UserID       int64
	MessageID    int
	FirstName    string
	Text         string
	Command      string
	CallbackData string
	CallbackID   string
}

// Handler drives a user's workspace from chat messages and button presses.
type Handler struct {
	workspaces Workspaces
	formatters FormatterFactory
	validator  *validator.Validator
	sender     *MessageSender
	keyboard   *keyboard.Builder
	progress   *ProgressTracker
}

func NewHandler(
	api Sender,
	workspaces Workspaces,
	formatters FormatterFactory,
	validator *validator.Validator,
	sendRetry pkgRetry.RetryConfig,
) *Handler {
	sender := NewMessageSender(api, sendRetry)
	kb := keyboard.NewBuilder()

	return &Handler{
		workspaces: workspaces,
		formatters: formatters,
		validator:  validator,
		sender:     sender,
		keyboard:   kb,
		progress:   NewProgressTracker(sender, kb),
	}
}

func identityOf(msg *Message) entity.Identity {
	return entity.Identity{
		UserID:      UserIDPrefix + strconv.FormatInt(msg.UserID, 10),
		DisplayName: msg.FirstName,
	}
}

func (h *Handler) workspace(ctx context.Context, msg *Message) (context.Context, *workspace.Workspace) {
	id := identityOf(msg)
	ctx = logger.AddFields(logger.WithUser(ctx, id.UserID), zap.Int64("chat_id", msg.ChatID))
	return ctx, h.workspaces.Get(ctx, id)
}

// showState sends the current view with its buttons and relays results
// progress while the results view is showing.
func (h *Handler) showState(ctx context.Context, chatID int64, ws *workspace.Workspace) error {
	// Subscribe before reading the state so a run finishing in between
	// still produces its final message.
	if ws.State().View == entity.ViewResults {
		h.progress.Follow(ctx, chatID, ws)
	}

	state := ws.State()
	return h.sender.Send(ctx, chatID, render.State(state), h.keyboard.ForState(state))
}

// fail reports err to the user. Guard failures get a hint for the step.
func (h *Handler) fail(ctx context.Context, chatID int64, ws *workspace.Workspace, err error) {
	herr := classifyHandlerError(err)
	logHandlerError(ctx, chatID, herr)

	text := herr.UserMessage
	if text == "" && ws != nil {
		if wiz := ws.State().Wizard; wiz != nil {
			text = render.GuardHint(wiz.Step)
		}
	}
	if text != "" {
		_ = h.sender.Send(ctx, chatID, text, nil)
	}
	if herr.ShowState && ws != nil {
		_ = h.showState(ctx, chatID, ws)
	}
}

// Close stops every progress relay.
func (h *Handler) Close() {
	h.progress.StopAll()
}
