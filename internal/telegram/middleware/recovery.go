package middleware

import (
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/launchpad-labs/copilot-backend/internal/telegram/render"
	"go.uber.org/zap"
)

// Sender sends a message to a chat.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// RecoveryMiddleware recovers from panics
type RecoveryMiddleware struct {
	logger *zap.Logger
	api    Sender
}

func NewRecoveryMiddleware(logger *zap.Logger, api Sender) *RecoveryMiddleware {
	return &RecoveryMiddleware{
		logger: logger,
		api:    api,
	}
}

func (m *RecoveryMiddleware) Handle(update tgbotapi.Update, next Handler) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		m.logger.Error("panic recovered in telegram handler",
			zap.Any("panic", r),
			zap.String("stack", string(debug.Stack())),
			zap.Int("update_id", update.UpdateID),
		)

		if _, chatID, _ := origin(update); chatID != 0 {
			if _, err := m.api.Send(tgbotapi.NewMessage(chatID, render.ErrGeneric)); err != nil {
				m.logger.Error("failed to send error message",
					zap.Error(err),
					zap.Int64("chat_id", chatID),
				)
			}
		}
	}()

	next(update)
}
