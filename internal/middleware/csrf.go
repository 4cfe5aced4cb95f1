package middleware

import (
	"crypto/rand"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
)

// CSRF rejects state-changing requests that do not carry the token rendered
// into the console's own forms, or whose Origin is another site.
//
// A nil authKey gets a random one, which invalidates open forms on restart.
func CSRF(authKey []byte) func(http.Handler) http.Handler {
	if len(authKey) == 0 {
		authKey = make([]byte, 32)
		_, _ = rand.Read(authKey)
	}

	protect := csrf.Protect(authKey,
		csrf.Path("/"),
		csrf.Secure(false),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailure)),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func csrfFailure(w http.ResponseWriter, r *http.Request) {
	slog.Warn("cross-site request rejected",
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"reason", csrf.FailureReason(r),
	)
	writeErrorPage(w, http.StatusForbidden, "This form has expired or came from another site. Reload the page and try again.")
}
