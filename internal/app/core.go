package app

import (
	"context"
	"fmt"
	"log/slog"

	"positions-console/internal/client"
	"positions-console/internal/config"
	"positions-console/internal/event"
	"positions-console/internal/guard"
	"positions-console/internal/observability"
	"positions-console/internal/positions"
	"positions-console/internal/session"
	"positions-console/internal/tokenstore"
)

// Core is the part of the console shared by the CLI and the web server.
type Core struct {
	Config    *config.Config
	Log       *slog.Logger
	Metrics   *observability.Metrics
	Store     tokenstore.Store
	Bus       *event.InMemoryBus
	Sessions  *session.Context
	Client    *client.Client
	Guard     *guard.Guard
	Positions *positions.Controller
}

// NewCore opens the token store and restores any saved session. nav gets
// guard navigations that happen outside a request; it may be nil.
func NewCore(ctx context.Context, cfg *config.Config, log *slog.Logger, nav guard.Navigator) (*Core, error) {
	if log == nil {
		log = slog.Default()
	}

	store, err := tokenstore.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}

	bus := event.NewBus()
	sessions := session.NewContext(store, bus, log)
	if _, err := sessions.Load(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	metrics := observability.NewMetrics()
	remote, err := client.New(client.Options{
		AuthBaseURL:      cfg.APIBaseURL,
		PositionsBaseURL: cfg.PositionsAPIBaseURL,
		Timeout:          cfg.HTTPTimeout,
		Metrics:          metrics,
		Logger:           log,
	}, sessions)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize api client: %w", err)
	}

	g := guard.New(sessions, nav, log)

	return &Core{
		Config:    cfg,
		Log:       log,
		Metrics:   metrics,
		Store:     store,
		Bus:       bus,
		Sessions:  sessions,
		Client:    remote,
		Guard:     g,
		Positions: positions.NewController(remote, g, sessions, log),
	}, nil
}

// WatchSessions counts ended sessions until ctx is done.
func (c *Core) WatchSessions(ctx context.Context) {
	events, unsubscribe := c.Bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if e.Type != event.TypeSessionEnded {
				continue
			}
			if p, ok := e.Payload.(event.SessionPayload); ok {
				c.Metrics.SessionEnded(p.Reason)
			}
		}
	}
}

func (c *Core) Close() error {
	if err := c.Store.Close(); err != nil {
		return fmt.Errorf("failed to close token store: %w", err)
	}
	return nil
}
