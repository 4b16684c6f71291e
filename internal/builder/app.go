package builder

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// App is the assembled HTTP service.
type App struct {
	server *http.Server
	stack  *stack
	logger *zap.Logger
}

// Run serves until ctx is done or the listener fails, then drains
// connections and releases the stack.
func (a *App) Run(ctx context.Context) error {
	defer func() { _ = a.logger.Sync() }()
	defer a.stack.close()

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.server.Addr))
		serveErr <- a.server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		a.logger.Error("http server failed", zap.Error(err))
		return err
	case <-ctx.Done():
		a.logger.Info("shutdown requested")
	}

	return a.drain()
}

func (a *App) drain() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown does not wait for hijacked websocket connections; closing the
	// workspaces ends their streams.
	a.stack.registry.Close()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown", zap.Error(err))
		return err
	}

	a.logger.Info("http server stopped")
	return nil
}
