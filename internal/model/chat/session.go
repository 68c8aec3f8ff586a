package chat

import "time"

// Session captures a transient anonymous conversation keyed by the
// client-generated session id.
type Session struct {
	ID           string    `json:"id"`
	Model        string    `json:"model"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
}

// Transcript is a session together with its ordered turns.
type Transcript struct {
	Session  Session   `json:"session"`
	Messages []Message `json:"messages"`
}
