package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"positions-console/internal/handler"
	"positions-console/internal/middleware"
	"positions-console/internal/router"
	"positions-console/internal/websocket"
)

type App struct {
	core         *Core
	server       *http.Server
	hub          *websocket.Hub
	cleanupFuncs []func()
}

func New(core *Core) (*App, error) {
	renderer, err := handler.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	hub := websocket.NewHub(core.Bus)
	authMiddleware := middleware.NewAuthMiddleware(core.Guard)

	appRouter := router.New(core.Config, core.Log, core.Metrics, authMiddleware, router.Handlers{
		Auth:      handler.NewAuthHandler(core.Client, core.Sessions, core.Guard, renderer),
		Dashboard: handler.NewDashboardHandler(renderer),
		Positions: handler.NewPositionsHandler(core.Positions, renderer),
	}, hub)

	cfg := core.Config
	server := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{core: core, server: server, hub: hub}, nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Start runs the background workers the web console needs. Run calls it;
// tests that drive Handler directly call it themselves.
func (a *App) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	go a.hub.Run(workerCtx)
	go a.core.WatchSessions(workerCtx)
	a.cleanupFuncs = append(a.cleanupFuncs, cancel)
}

// Run serves until ctx is cancelled or the process is signalled.
func (a *App) Run(ctx context.Context) error {
	a.Start(ctx)

	serveErr := make(chan error, 1)
	go func() {
		a.core.Log.Info("console listening", "addr", "http://"+a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		a.cleanup()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-stop:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a.cleanup()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.core.Log.Info("server stopped")
	return nil
}

func (a *App) cleanup() {
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}
	a.cleanupFuncs = nil
}
