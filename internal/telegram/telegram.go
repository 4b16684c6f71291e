package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/launchpad-labs/copilot-backend/internal/config"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/validator"
	"github.com/launchpad-labs/copilot-backend/internal/telegram/bot"
	"github.com/launchpad-labs/copilot-backend/internal/telegram/handlers"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot authorizes against the Bot API and wires the chat handlers to the
// shared workspace registry.
func NewBot(
	cfg *config.TelegramConfig,
	workspaces handlers.Workspaces,
	formatters handlers.FormatterFactory,
	fields *validator.Validator,
	logger *zap.Logger,
) (Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	handler := handlers.NewHandler(api, workspaces, formatters, fields, cfg.SendRetry)
	b := bot.New(api, cfg, handler, logger)

	logger.Info("telegram bot initialized successfully")

	return b, nil
}
