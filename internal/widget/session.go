package widget

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	sessionPrefix    = "session_"
	sessionSuffixLen = 9
)

// NewSessionID returns "session_<unix millis>_<9 random chars>". It is a
// correlation token, not a secret.
func NewSessionID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:sessionSuffixLen]
	return sessionPrefix + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + suffix
}

// SessionCell holds the current session id of one widget.
type SessionCell struct {
	mu       sync.Mutex
	id       string
	generate func() string
}

// NewSessionCell starts with a fresh id.
func NewSessionCell() *SessionCell {
	return newSessionCell(NewSessionID)
}

func newSessionCell(generate func() string) *SessionCell {
	return &SessionCell{id: generate(), generate: generate}
}

// Current returns the active id.
func (c *SessionCell) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Regenerate replaces the id and returns the previous one. The new id never
// equals the one it replaces.
func (c *SessionCell) Regenerate() (previous string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous = c.id
	next := c.generate()
	for next == previous {
		next = c.generate()
	}
	c.id = next
	return previous
}
