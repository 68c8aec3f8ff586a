package chat

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/sms-sim/internal/model/chat"
)

// MemoryStore keeps transcripts in process and forgets sessions that have
// been idle longer than the configured timeout.
type MemoryStore struct {
	mu          sync.RWMutex
	transcripts map[string]chat.Transcript
	idleTimeout time.Duration
	now         func() time.Time
}

// NewMemoryStore bootstraps the in-memory store. A non-positive idleTimeout
// disables eviction.
func NewMemoryStore(idleTimeout time.Duration) *MemoryStore {
	return &MemoryStore{
		transcripts: make(map[string]chat.Transcript),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// Get returns a copy of the stored transcript.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (chat.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transcript, ok := s.transcripts[sessionID]
	if !ok || s.expired(transcript.Session) {
		return chat.Transcript{}, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(transcript.Messages))
	copy(copied, transcript.Messages)
	transcript.Messages = copied
	return transcript, nil
}

// Append adds turns to the session, creating it on first use.
func (s *MemoryStore) Append(_ context.Context, session chat.Session, messages ...chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	transcript, ok := s.transcripts[session.ID]
	if !ok || s.expired(transcript.Session) {
		transcript = chat.Transcript{
			Session:  session,
			Messages: make([]chat.Message, 0, 16),
		}
	}

	transcript.Session.LastActiveAt = session.LastActiveAt
	if session.Model != "" {
		transcript.Session.Model = session.Model
	}
	transcript.Messages = append(transcript.Messages, messages...)
	s.transcripts[session.ID] = transcript
	return nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transcripts[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.transcripts, sessionID)
	return nil
}

// Len reports the number of sessions currently held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transcripts)
}

// EvictIdle drops expired sessions and returns how many were removed.
func (s *MemoryStore) EvictIdle() int {
	if s.idleTimeout <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, transcript := range s.transcripts {
		if s.expired(transcript.Session) {
			delete(s.transcripts, id)
			evicted++
		}
	}
	return evicted
}

// RunJanitor evicts idle sessions periodically until ctx is done.
func (s *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) error {
	if s.idleTimeout <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.EvictIdle(); n > 0 {
				log.Debug().Str("component", "chat").Int("evicted", n).Msg("evicted idle sessions")
			}
		}
	}
}

func (s *MemoryStore) expired(session chat.Session) bool {
	if s.idleTimeout <= 0 {
		return false
	}
	return session.LastActiveAt.Add(s.idleTimeout).Before(s.now())
}
