package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/config"
	"github.com/launchpad-labs/copilot-backend/internal/telegram/handlers"
	"github.com/launchpad-labs/copilot-backend/internal/telegram/middleware"
	"go.uber.org/zap"
)

// UpdateSource is the part of the Bot API that delivers updates.
type UpdateSource interface {
	middleware.Sender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// UpdateHandler reacts to normalized chat input.
type UpdateHandler interface {
	HandleCommand(ctx context.Context, msg *handlers.Message)
	HandleText(ctx context.Context, msg *handlers.Message)
	HandleCallback(ctx context.Context, msg *handlers.Message)
	Close()
}

// Bot represents the Telegram bot
type Bot struct {
	api         UpdateSource
	cfg         *config.TelegramConfig
	handler     UpdateHandler
	logger      *zap.Logger
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware
	updatesChan tgbotapi.UpdatesChannel
	baseCtx     context.Context
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// New creates a new Telegram bot
func New(api UpdateSource, cfg *config.TelegramConfig, handler UpdateHandler, logger *zap.Logger) *Bot {
	return &Bot{
		api:        api,
		cfg:        cfg,
		handler:    handler,
		logger:     logger,
		loggingMW:  middleware.NewLoggingMiddleware(logger),
		recoveryMW: middleware.NewRecoveryMiddleware(logger, api),
		rateLimitMW: middleware.NewRateLimiterMiddleware(
			cfg.RateLimitPerMinute,
			cfg.RateLimitBurst,
			logger,
			api,
		),
		baseCtx:  context.Background(),
		stopChan: make(chan struct{}),
	}
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	b.updatesChan = b.api.GetUpdatesChan(u)

	// Progress relays started by handlers outlive a single update.
	b.baseCtx = ctxzap.ToContext(context.WithoutCancel(ctx), b.logger)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.processUpdates(b.baseCtx)
	}()

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	b.stopOnce.Do(func() {
		close(b.stopChan)
		b.api.StopReceivingUpdates()
	})

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	var err error
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		err = fmt.Errorf("shutdown timeout exceeded")
	}

	b.handler.Close()

	b.logger.Info("telegram bot stopped")
	return err
}

func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				ctxzap.Info(ctx, "updates channel closed")
				return
			}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.HandleUpdate(u)
			}(update)
		}
	}
}

// HandleUpdate runs one update through the middleware chain.
func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, b.route)
		})
	})
}

func (b *Bot) route(update tgbotapi.Update) {
	ctx := b.baseCtx

	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.Message == nil {
			return
		}
		b.handler.HandleCallback(ctx, &handlers.Message{
			ChatID:       q.Message.Chat.ID,
			UserID:       q.From.ID,
			MessageID:    q.Message.MessageID,
			FirstName:    q.From.FirstName,
			CallbackData: q.Data,
			CallbackID:   q.ID,
		})

	case update.Message != nil && update.Message.From != nil:
		m := update.Message
		msg := &handlers.Message{
			ChatID:    m.Chat.ID,
			UserID:    m.From.ID,
			MessageID: m.MessageID,
			FirstName: m.From.FirstName,
			Text:      m.Text,
		}
		if m.IsCommand() {
			msg.Command = m.Command()
			b.handler.HandleCommand(ctx, msg)
			return
		}
		if m.Text == "" {
			return
		}
		b.handler.HandleText(ctx, msg)
	}
}
