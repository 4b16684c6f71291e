package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/launchpad-labs/copilot-backend/internal/builder"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "telegram-bot:", err)
		os.Exit(1)
	}
}

func run() error {
	bot, release, logger, err := builder.BuildTelegramBot()
	if err != nil {
		return fmt.Errorf("build telegram bot: %w", err)
	}
	defer release()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bot.Start(ctx); err != nil {
		return fmt.Errorf("start telegram bot: %w", err)
	}

	<-ctx.Done()
	logger.Info("shutdown requested")

	if err := bot.Stop(); err != nil {
		logger.Error("telegram bot did not stop cleanly", zap.Error(err))
		return err
	}
	return nil
}
