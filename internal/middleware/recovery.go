package middleware

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"runtime/debug"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				slog.Error("panic recovered", "path", r.URL.Path, "error", fmt.Sprintf("%v", recovered), "stack", string(debug.Stack()))
				writeErrorPage(w, http.StatusInternalServerError, "Something went wrong on our side. Try again.")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// errorPage is the bare page the middleware answers with when no handler
// gets to render one.
func errorPage(message string) string {
	return `<!doctype html><title>Positions Console</title><p>` + template.HTMLEscapeString(message) + `</p>`
}

func writeErrorPage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(errorPage(message)))
}
