package chat

import "time"

// Sender identifies who produced a transcript turn.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderDirective Sender = "directive"
	SenderAssistant Sender = "assistant"
)

// Message persists individual turns so follow-up requests carry context.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
