package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	pkgRetry "github.com/launchpad-labs/copilot-backend/internal/pkg/retry"
	"go.uber.org/zap"
)

// maxMessageRunes is Telegram's text limit.
const maxMessageRunes = 4096

// MessageSender provides centralized message sending functionality
type MessageSender struct {
	api   Sender
	retry pkgRetry.RetryConfig
}

// NewMessageSender creates a new MessageSender
func NewMessageSender(api Sender, retry pkgRetry.RetryConfig) *MessageSender {
	return &MessageSender{
		api:   api,
		retry: retry,
	}
}

// Send sends a message to the specified chat. markup may be nil.
func (s *MessageSender) Send(ctx context.Context, chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	if _, err := s.api.Send(newMessage(chatID, text, markup)); err != nil {
		ctxzap.Error(ctx, "failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		return err
	}
	return nil
}

// SendCritical retries delivery of messages the user must see, such as the
// final results of a run.
func (s *MessageSender) SendCritical(ctx context.Context, chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	msg := newMessage(chatID, text, markup)

	attempt := 0
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		attempt++
		_, err := s.api.Send(msg)
		if err != nil {
			ctxzap.Warn(ctx, "failed to send message, retrying",
				zap.Error(err),
				zap.Int("attempt", attempt),
				zap.Int64("chat_id", chatID),
			)
		}
		return err
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send message after all retries",
			zap.Error(err),
			zap.Int("attempts", attempt),
			zap.Int64("chat_id", chatID),
		)
		return err
	}
	return nil
}

// SendDocument uploads data as a file.
func (s *MessageSender) SendDocument(ctx context.Context, chatID int64, filename string, data []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	if _, err := s.api.Send(doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

// Answer acknowledges a callback query.
func (s *MessageSender) Answer(ctx context.Context, callbackID, text string) {
	if callbackID == "" {
		return
	}
	if _, err := s.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		ctxzap.Warn(ctx, "failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}

// Typing shows the typing indicator for a few seconds.
func (s *MessageSender) Typing(chatID int64) {
	_, _ = s.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
}

func newMessage(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, truncate(text, maxMessageRunes))
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	return msg
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}
