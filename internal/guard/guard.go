package guard

import (
	"context"
	"log/slog"

	"positions-console/internal/event"
	"positions-console/internal/model"
	"positions-console/pkg/apierror"
)

type State int

const (
	Unresolved State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unresolved"
	}
}

// Decision is the outcome of entering a view. Redirect is empty when the
// requested view may be rendered.
type Decision struct {
	State    State
	Session  model.Session
	Token    string
	Redirect View
}

func (d Decision) Allowed() bool {
	return d.State == Authenticated && d.Redirect == ""
}

// Sessions is the slice of session.Context the guard depends on.
type Sessions interface {
	Current(ctx context.Context) (string, model.Session, bool, error)
	End(ctx context.Context, reason string) error
	EndIf(ctx context.Context, generation uint64, reason string) (bool, error)
	Generation() uint64
}

type Guard struct {
	sessions Sessions
	fallback Navigator
	log      *slog.Logger
}

// New returns a guard. fallback receives navigations when the context
// carries no navigator of its own; it may be nil.
func New(sessions Sessions, fallback Navigator, log *slog.Logger) *Guard {
	if log == nil {
		log = slog.Default()
	}
	return &Guard{sessions: sessions, fallback: fallback, log: log}
}

// Enter resolves access to a protected view.
func (g *Guard) Enter(ctx context.Context) Decision {
	token, s, ok, err := g.sessions.Current(ctx)
	if err != nil {
		g.log.Error("failed to read session", "error", err)
	}
	if err != nil || !ok {
		g.navigate(ctx, ViewLogin)
		return Decision{State: Unauthenticated, Redirect: ViewLogin}
	}

	return Decision{State: Authenticated, Session: s, Token: token}
}

// EnterHome sends a visitor who already holds a token on to the dashboard.
// The home view itself is public.
func (g *Guard) EnterHome(ctx context.Context) Decision {
	token, s, ok, err := g.sessions.Current(ctx)
	if err != nil {
		g.log.Warn("failed to read session", "error", err)
	}
	if err != nil || !ok {
		return Decision{State: Unauthenticated}
	}

	g.navigate(ctx, ViewDashboard)
	return Decision{State: Authenticated, Session: s, Token: token, Redirect: ViewDashboard}
}

// Logout clears the session and always navigates to login. A failure to
// clear is returned for logging only.
func (g *Guard) Logout(ctx context.Context) error {
	err := g.sessions.End(ctx, event.ReasonLogout)
	g.navigate(ctx, ViewLogin)
	return err
}

// HandleFailure treats an authorization failure as expiry of the current
// session. It reports true when err was such a failure and the caller must
// drop the result it was waiting for.
func (g *Guard) HandleFailure(ctx context.Context, err error) bool {
	return g.HandleFailureAt(ctx, g.sessions.Generation(), err)
}

// HandleFailureAt is HandleFailure for work started under the given session
// generation. A failure that arrives after that session was replaced is
// dropped without touching the new one.
func (g *Guard) HandleFailureAt(ctx context.Context, generation uint64, err error) bool {
	if !apierror.IsUnauthorized(err) {
		return false
	}

	ended, endErr := g.sessions.EndIf(ctx, generation, event.ReasonExpired)
	if endErr != nil {
		g.log.Error("failed to end expired session", "error", endErr)
	}
	if !ended {
		g.log.Debug("ignoring authorization failure from an earlier session", "error", err)
		return true
	}

	g.log.Warn("session rejected by server", "error", err)
	g.navigate(ctx, ViewLogin)
	return true
}

func (g *Guard) navigate(ctx context.Context, view View) {
	if nav, ok := NavigatorFrom(ctx); ok {
		nav.Navigate(view)
		return
	}
	if g.fallback != nil {
		g.fallback.Navigate(view)
	}
}
