package widget

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var sessionPattern = regexp.MustCompile(`^session_\d{13,}_[0-9a-f]{9}$`)

func TestNewSessionIDFormat(t *testing.T) {
	id := NewSessionID()
	assert.Regexp(t, sessionPattern, id)
	assert.NotEqual(t, id, NewSessionID())
}

func TestRegenerateAlwaysChanges(t *testing.T) {
	cell := NewSessionCell()
	seen := map[string]bool{cell.Current(): true}

	for i := 0; i < 100; i++ {
		before := cell.Current()
		previous := cell.Regenerate()
		assert.Equal(t, before, previous)
		assert.NotEqual(t, previous, cell.Current())
		assert.False(t, seen[cell.Current()], "id reused: %s", cell.Current())
		seen[cell.Current()] = true
	}
}

func TestRegenerateSkipsRepeatedValue(t *testing.T) {
	values := []string{"a", "a", "a", "b"}
	i := 0
	cell := newSessionCell(func() string {
		v := values[i]
		i++
		return v
	})

	assert.Equal(t, "a", cell.Current())
	cell.Regenerate()
	assert.Equal(t, "b", cell.Current())
}
