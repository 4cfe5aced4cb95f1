package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"positions-console/internal/event"
	"positions-console/internal/model"
	"positions-console/internal/tokenstore"
)

// Context is the process-wide session. The token itself lives only in the
// store; Context adds change notification and a generation counter that lets
// long-running work notice the session it started under has gone.
type Context struct {
	store tokenstore.Store
	bus   event.Bus
	log   *slog.Logger

	mu         sync.Mutex
	generation uint64
}

func NewContext(store tokenstore.Store, bus event.Bus, log *slog.Logger) *Context {
	if log == nil {
		log = slog.Default()
	}
	return &Context{store: store, bus: bus, log: log}
}

// Load reads the persisted token at startup. It reports whether a session
// was found; a missing token is not an error.
func (c *Context) Load(ctx context.Context) (bool, error) {
	token, ok, err := c.store.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		c.log.Debug("no stored session")
		return false, nil
	}

	s := Display(token, c.log)
	c.log.Debug("session restored", "username", s.Username, "role", s.Role)
	return true, nil
}

// Token returns the stored bearer token or model.ErrNoToken.
func (c *Context) Token(ctx context.Context) (string, error) {
	token, ok, err := c.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if !ok || token == "" {
		return "", model.ErrNoToken
	}
	return token, nil
}

// Current returns the token and its display session. ok is false when no
// token is stored.
func (c *Context) Current(ctx context.Context) (string, model.Session, bool, error) {
	token, err := c.Token(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNoToken) {
			return "", model.Session{}, false, nil
		}
		return "", model.Session{}, false, err
	}
	return token, Display(token, c.log), true, nil
}

// Begin stores a freshly issued token, replacing any previous one.
func (c *Context) Begin(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Save(ctx, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	c.generation++

	s := Display(token, c.log)
	c.publish(event.TypeSessionStarted, event.SessionPayload{Username: s.Username})
	c.log.Info("session started", "username", s.Username)
	return nil
}

// End clears the token and tells subscribers the session is over. The
// generation advances and the event is published even when clearing fails,
// so dependents still leave protected views.
func (c *Context) End(ctx context.Context, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endLocked(ctx, reason)
}

// EndIf ends the session only while it is still the one of the given
// generation. It reports whether it did.
func (c *Context) EndIf(ctx context.Context, generation uint64, reason string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != generation {
		c.log.Debug("session already replaced", "reason", reason)
		return false, nil
	}
	return true, c.endLocked(ctx, reason)
}

func (c *Context) endLocked(ctx context.Context, reason string) error {
	err := c.store.Clear(ctx)
	c.generation++

	c.publish(event.TypeSessionEnded, event.SessionPayload{Reason: reason})
	if err != nil {
		c.log.Error("failed to clear token", "reason", reason, "error", err)
		return fmt.Errorf("clear token: %w", err)
	}

	c.log.Info("session ended", "reason", reason)
	return nil
}

// Generation changes on every Begin and End.
func (c *Context) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *Context) publish(t event.Type, payload event.SessionPayload) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(event.Event{Type: t, Payload: payload})
}
