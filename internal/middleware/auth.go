package middleware

import (
	"context"
	"net/http"

	"positions-console/internal/guard"
)

type contextKey string

const decisionContextKey contextKey = "guard_decision"

type sessionGuard interface {
	Enter(ctx context.Context) guard.Decision
}

type AuthMiddleware struct {
	guard sessionGuard
}

func NewAuthMiddleware(g sessionGuard) *AuthMiddleware {
	return &AuthMiddleware{guard: g}
}

// RequireSession runs the guard before any protected view is produced. A
// visitor without a token is redirected to the login view.
func (m *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := withNavigator(r)

		decision := m.guard.Enter(ctx)
		if !decision.Allowed() {
			http.Redirect(w, r, ViewPath(decision.Redirect), http.StatusSeeOther)
			return
		}

		ctx = context.WithValue(ctx, decisionContextKey, decision)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func DecisionFromContext(ctx context.Context) (guard.Decision, bool) {
	decision, ok := ctx.Value(decisionContextKey).(guard.Decision)
	return decision, ok
}
