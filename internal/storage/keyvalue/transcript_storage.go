package keyvalue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/zhouzirui/sms-sim/internal/model/chat"
	chatservice "github.com/zhouzirui/sms-sim/internal/service/chat"
)

type messageInternal struct {
	ID        string      `json:"id"`
	Sender    chat.Sender `json:"sender"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

type transcriptInternal struct {
	SessionID    string            `json:"session_id"`
	Model        string            `json:"model"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActiveAt time.Time         `json:"last_active_at"`
	Messages     []messageInternal `json:"messages"`
}

// TranscriptStorage keeps one JSON document per session. Every write
// refreshes the key TTL, so idle sessions expire on their own.
type TranscriptStorage struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewTranscriptStorage returns a Redis backed chat store. ttl <= 0 keeps
// transcripts until deleted.
func NewTranscriptStorage(rdb redis.UniversalClient, ttl time.Duration) *TranscriptStorage {
	return &TranscriptStorage{rdb: rdb, ttl: ttl}
}

var _ chatservice.Store = (*TranscriptStorage)(nil)

func (s *TranscriptStorage) Get(ctx context.Context, sessionID string) (chat.Transcript, error) {
	internal, err := s.getInternal(ctx, sessionID)
	if err != nil {
		return chat.Transcript{}, err
	}
	return fromInternal(internal), nil
}

func (s *TranscriptStorage) Append(ctx context.Context, session chat.Session, messages ...chat.Message) error {
	internal, err := s.getInternal(ctx, session.ID)
	if err != nil {
		if !errors.Is(err, chatservice.ErrSessionNotFound) {
			return err
		}
		internal = transcriptInternal{
			SessionID: session.ID,
			CreatedAt: session.CreatedAt,
			Messages:  make([]messageInternal, 0, len(messages)),
		}
	}

	internal.LastActiveAt = session.LastActiveAt
	if session.Model != "" {
		internal.Model = session.Model
	}
	for _, msg := range messages {
		internal.Messages = append(internal.Messages, messageInternal{
			ID:        msg.ID,
			Sender:    msg.Sender,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}

	return s.setInternal(ctx, internal)
}

func (s *TranscriptStorage) Delete(ctx context.Context, sessionID string) error {
	removed, err := s.rdb.Del(ctx, transcriptKey(sessionID)).Result()
	if err != nil {
		return errors.Wrapf(err, "failed to delete transcript %s", sessionID)
	}
	if removed == 0 {
		return chatservice.ErrSessionNotFound
	}
	return nil
}

func (s *TranscriptStorage) getInternal(ctx context.Context, sessionID string) (transcriptInternal, error) {
	raw, err := s.rdb.Get(ctx, transcriptKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return transcriptInternal{}, chatservice.ErrSessionNotFound
		}
		return transcriptInternal{}, errors.Wrapf(err, "failed to get transcript %s", sessionID)
	}

	var internal transcriptInternal
	if err := json.Unmarshal([]byte(raw), &internal); err != nil {
		return transcriptInternal{}, errors.Wrapf(err, "failed to unmarshal transcript %s", sessionID)
	}
	return internal, nil
}

func (s *TranscriptStorage) setInternal(ctx context.Context, internal transcriptInternal) error {
	payload, err := json.Marshal(internal)
	if err != nil {
		return errors.Wrap(err, "failed to marshal transcript")
	}

	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	key := transcriptKey(internal.SessionID)
	if err := s.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		return errors.Wrapf(err, "failed to save transcript %s", key)
	}
	return nil
}

func fromInternal(internal transcriptInternal) chat.Transcript {
	messages := make([]chat.Message, 0, len(internal.Messages))
	for _, msg := range internal.Messages {
		messages = append(messages, chat.Message{
			ID:        msg.ID,
			SessionID: internal.SessionID,
			Sender:    msg.Sender,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}

	return chat.Transcript{
		Session: chat.Session{
			ID:           internal.SessionID,
			Model:        internal.Model,
			CreatedAt:    internal.CreatedAt,
			LastActiveAt: internal.LastActiveAt,
		},
		Messages: messages,
	}
}

func transcriptKey(sessionID string) string {
	return fmt.Sprintf("transcript_%s", sessionID)
}
