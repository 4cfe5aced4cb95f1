package model

import "time"

const (
	DefaultUsername = "Guest"
	DefaultRole     = "User"
)

// Session is the display view of the bearer token's claims. It is derived on
// demand and never stored.
type Session struct {
	SubjectID int64     `json:"sub"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

func GuestSession() Session {
	return Session{Username: DefaultUsername, Role: DefaultRole}
}
