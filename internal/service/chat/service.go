package chat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/zhouzirui/sms-sim/internal/model/chat"
)

var (
	ErrSessionRequired = errors.New("session id is required")
	ErrSessionNotFound = errors.New("session not found")
)

// Store persists transcripts keyed by session id.
type Store interface {
	// Get returns ErrSessionNotFound when the session is unknown or expired.
	Get(ctx context.Context, sessionID string) (chat.Transcript, error)
	// Append creates the session when missing, refreshes its activity time
	// and appends the turns in order.
	Append(ctx context.Context, session chat.Session, messages ...chat.Message) error
	Delete(ctx context.Context, sessionID string) error
}

// Service encapsulates conversation state management.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService wires the chat service to a transcript store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// LoadTranscript returns stored messages for the provided session. Unknown
// sessions yield an empty history since the client owns session creation.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	transcript, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load transcript %s", sessionID)
	}
	return transcript.Messages, nil
}

// SaveExchange appends one request turn and its reply to the session history.
func (s *Service) SaveExchange(ctx context.Context, sessionID, modelName string, request chat.Message, reply chat.Message) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrSessionRequired
	}

	now := s.now().UTC()
	session := chat.Session{
		ID:           sessionID,
		Model:        modelName,
		CreatedAt:    now,
		LastActiveAt: now,
	}

	request = s.stamp(sessionID, request, now)
	reply = s.stamp(sessionID, reply, now)

	if err := s.store.Append(ctx, session, request, reply); err != nil {
		return errors.Wrapf(err, "save exchange for session %s", sessionID)
	}
	return nil
}

// DeleteSession drops the transcript. Deleting an unknown session is not an error.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrSessionRequired
	}
	if err := s.store.Delete(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return errors.Wrapf(err, "delete session %s", sessionID)
	}
	return nil
}

func (s *Service) stamp(sessionID string, message chat.Message, now time.Time) chat.Message {
	message.ID = uuid.NewString()
	message.SessionID = sessionID
	if message.CreatedAt.IsZero() {
		message.CreatedAt = now
	}
	return message
}
