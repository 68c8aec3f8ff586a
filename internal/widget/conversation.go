package widget

import "time"

// Direction tells which side of the thread a message sits on.
type Direction int

const (
	// Outgoing messages are typed by the person playing the customer.
	Outgoing Direction = iota
	// Incoming messages come from the business (the model) or the widget itself.
	Incoming
)

func (d Direction) String() string {
	if d == Outgoing {
		return "outgoing"
	}
	return "incoming"
}

// Message is one conversation entry before rendering.
type Message struct {
	Text      string
	Direction Direction
}

// EntryKind separates date markers from messages.
type EntryKind int

const (
	EntryDate EntryKind = iota
	EntryMessage
)

// Entry is a rendered line of the conversation.
type Entry struct {
	Kind      EntryKind
	Text      string
	Direction Direction
	// Time is the display time, stamped when the entry is added.
	Time string
}

// TimeLayout 与短信应用一致的 12 小时制时间。
const TimeLayout = "3:04 PM"

// Conversation is the append-only list a presentation renders. It is not
// safe for concurrent use; it belongs to the UI goroutine.
type Conversation struct {
	entries []Entry
	now     func() time.Time
}

// NewConversation starts with a date marker.
func NewConversation() *Conversation {
	c := &Conversation{now: time.Now}
	c.Reset()
	return c
}

// Reset drops every entry and inserts a fresh date marker.
func (c *Conversation) Reset() {
	c.entries = []Entry{{Kind: EntryDate, Text: DateMarker}}
}

// Add appends a message in arrival order.
func (c *Conversation) Add(msg Message) Entry {
	entry := Entry{
		Kind:      EntryMessage,
		Text:      msg.Text,
		Direction: msg.Direction,
		Time:      c.now().Format(TimeLayout),
	}
	c.entries = append(c.entries, entry)
	return entry
}

// Entries returns a copy of the entries.
func (c *Conversation) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Messages returns only the message entries.
func (c *Conversation) Messages() []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Kind == EntryMessage {
			out = append(out, e)
		}
	}
	return out
}
