package event

type Type string

const (
	TypeSessionStarted Type = "session.started"
	TypeSessionEnded   Type = "session.ended"
)

// Reasons carried in a session.ended payload.
const (
	ReasonLogout  = "logout"
	ReasonExpired = "expired"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Payload   any    `json:"payload,omitempty"`
	Timestamp string `json:"timestamp"`
}

type SessionPayload struct {
	Username string `json:"username,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
