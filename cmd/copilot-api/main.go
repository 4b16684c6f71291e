package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/launchpad-labs/copilot-backend/internal/builder"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "copilot-api:", err)
		os.Exit(1)
	}
}

func run() error {
	app, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}
