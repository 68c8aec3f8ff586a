package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zhouzirui/sms-sim/internal/widget"
)

// Messages the Bridge forwards from controller goroutines to the program.
type (
	AppendMsg  struct{ Message widget.Message }
	ResetMsg   struct{}
	TypingMsg  struct{ On bool }
	InputMsg   struct{ Enabled bool }
	ContactMsg struct{ Contact widget.Contact }
)

// Bridge implements widget.View by turning each call into a tea.Msg on a
// channel the Model listens to.
type Bridge struct {
	ch chan tea.Msg
}

var _ widget.View = (*Bridge)(nil)

// NewBridge creates a bridge with a small buffer.
func NewBridge() *Bridge {
	return &Bridge{ch: make(chan tea.Msg, 64)}
}

// Events is consumed by the Model.
func (b *Bridge) Events() <-chan tea.Msg { return b.ch }

func (b *Bridge) Append(msg widget.Message)         { b.ch <- AppendMsg{Message: msg} }
func (b *Bridge) ResetConversation()                { b.ch <- ResetMsg{} }
func (b *Bridge) SetTyping(on bool)                 { b.ch <- TypingMsg{On: on} }
func (b *Bridge) SetInputEnabled(on bool)           { b.ch <- InputMsg{Enabled: on} }
func (b *Bridge) SetContact(contact widget.Contact) { b.ch <- ContactMsg{Contact: contact} }

func listenForEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return viewEventMsg{msg}
	}
}

// viewEventMsg marks a message that came through the bridge, so the Model
// knows to keep listening.
type viewEventMsg struct{ tea.Msg }
