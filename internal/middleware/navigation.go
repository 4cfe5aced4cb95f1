package middleware

import (
	"context"
	"net/http"
	"sync"

	"positions-console/internal/guard"
)

var viewPaths = map[guard.View]string{
	guard.ViewHome:      "/",
	guard.ViewLogin:     "/login",
	guard.ViewRegister:  "/register",
	guard.ViewDashboard: "/dashboard",
	guard.ViewPositions: "/dashboard/positions",
}

func ViewPath(view guard.View) string {
	if path, ok := viewPaths[view]; ok {
		return path
	}
	return "/"
}

// RedirectNavigator remembers where the guard wants the current request to
// go. Handlers turn that into a redirect once their work is done.
type RedirectNavigator struct {
	mu     sync.Mutex
	target guard.View
}

func (n *RedirectNavigator) Navigate(view guard.View) {
	n.mu.Lock()
	n.target = view
	n.mu.Unlock()
}

func (n *RedirectNavigator) Target() (guard.View, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.target, n.target != ""
}

// withNavigator returns the request context with a navigator attached,
// reusing one that is already there.
func withNavigator(r *http.Request) context.Context {
	ctx := r.Context()
	if _, ok := guard.NavigatorFrom(ctx); ok {
		return ctx
	}
	return guard.WithNavigator(ctx, &RedirectNavigator{})
}

// Navigation attaches a RedirectNavigator to every request.
func Navigation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(withNavigator(r)))
	})
}

// Redirected writes the redirect the guard asked for, if any.
func Redirected(w http.ResponseWriter, r *http.Request) bool {
	nav, ok := guard.NavigatorFrom(r.Context())
	if !ok {
		return false
	}
	rn, ok := nav.(*RedirectNavigator)
	if !ok {
		return false
	}
	view, ok := rn.Target()
	if !ok {
		return false
	}
	http.Redirect(w, r, ViewPath(view), http.StatusSeeOther)
	return true
}
