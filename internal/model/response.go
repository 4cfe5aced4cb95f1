package model

// APIResponse is the JSON envelope the console server uses for its own
// machine-facing endpoints (health, rate limiting, recovered panics).
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
