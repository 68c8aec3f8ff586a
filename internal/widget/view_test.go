package widget

import (
	"fmt"
	"sync"
)

// recordingView keeps a Conversation plus a log of every call.
type recordingView struct {
	mu      sync.Mutex
	conv    *Conversation
	events  []string
	contact Contact
	typing  bool
	enabled bool
}

func newRecordingView() *recordingView {
	return &recordingView{conv: NewConversation(), enabled: true}
}

func (v *recordingView) Append(msg Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.conv.Add(msg)
	v.events = append(v.events, fmt.Sprintf("append %s: %s", msg.Direction, msg.Text))
}

func (v *recordingView) ResetConversation() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.conv.Reset()
	v.events = append(v.events, "reset")
}

func (v *recordingView) SetTyping(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.typing = on
	v.events = append(v.events, fmt.Sprintf("typing %v", on))
}

func (v *recordingView) SetInputEnabled(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled = on
	v.events = append(v.events, fmt.Sprintf("input %v", on))
}

func (v *recordingView) SetContact(contact Contact) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.contact = contact
	v.events = append(v.events, "contact "+contact.Name)
}

func (v *recordingView) Entries() []Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.conv.Entries()
}

func (v *recordingView) Messages() []Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.conv.Messages()
}

func (v *recordingView) Events() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.events...)
}

func (v *recordingView) State() (typing, enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.typing, v.enabled
}
