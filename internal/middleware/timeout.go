package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds how long a console page may take, including the remote calls
// made while building it.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message := errorPage("The positions service took too long to answer. Try again.")

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
