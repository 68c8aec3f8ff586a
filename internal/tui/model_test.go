package tui_test

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/sms-sim/internal/model/chat"
	"github.com/zhouzirui/sms-sim/internal/tui"
	"github.com/zhouzirui/sms-sim/internal/widget"
)

type fakeTransport struct {
	mu       sync.Mutex
	requests []chat.ChatRequest
	hasKey   bool
}

func (f *fakeTransport) Send(_ context.Context, req chat.ChatRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return fmt.Sprintf("reply %d", len(f.requests)), nil
}

func (f *fakeTransport) Health(context.Context) (chat.HealthResponse, error) {
	return chat.HealthResponse{Status: "ok", HasAPIKey: f.hasKey}, nil
}

func (f *fakeTransport) Forget(context.Context, string) error { return nil }

func (f *fakeTransport) Models(context.Context) (widget.ModelList, error) {
	return widget.ModelList{
		Default: "deepseek-chat",
		Models: []widget.ModelEntry{
			{ID: "deepseek-chat", Available: true},
			{ID: "gpt-4o-mini", Available: true},
			{ID: "claude-3-5-haiku-latest", Available: false},
		},
	}, nil
}

func (f *fakeTransport) Requests() []chat.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chat.ChatRequest(nil), f.requests...)
}

func newModel(tr *fakeTransport, fields widget.Fields) (tui.Model, *widget.Form) {
	form := widget.NewForm(fields)
	bridge := tui.NewBridge()
	ctrl := widget.NewController(bridge, form, tr)
	return tui.New(context.Background(), ctrl, form, bridge.Events(), tui.WithModelSource(tr)), form
}

func TestModel_Teatest(t *testing.T) {
	t.Parallel()

	t.Run("send renders outgoing and reply", func(t *testing.T) {
		t.Parallel()

		tr := &fakeTransport{hasKey: true}
		m, _ := newModel(tr, widget.Fields{BusinessName: "Joe's Pizza", Delay: "0"})

		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

		tm.Type("hello there")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("reply 1"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(tui.Model)
		require.True(t, ok)

		entries := final.Entries()
		require.Len(t, entries, 3)
		assert.Equal(t, widget.EntryDate, entries[0].Kind)
		assert.Equal(t, "hello there", entries[1].Text)
		assert.Equal(t, widget.Outgoing, entries[1].Direction)
		assert.Equal(t, "reply 1", entries[2].Text)
		assert.True(t, final.InputEnabled())
		assert.False(t, final.Typing())
	})

	t.Run("missing api key shows one warning", func(t *testing.T) {
		t.Parallel()

		m, _ := newModel(&fakeTransport{hasKey: false}, widget.Fields{})
		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 24))

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("No API key configured"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		final := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second)).(tui.Model)

		var warnings int
		for _, e := range final.Entries() {
			if e.Text == widget.WarningNoAPIKey {
				warnings++
			}
		}
		assert.Equal(t, 1, warnings)
	})

	t.Run("apply config triggers outreach", func(t *testing.T) {
		t.Parallel()

		tr := &fakeTransport{hasKey: true}
		m, form := newModel(tr, widget.Fields{CustomerName: "Sam", Delay: "0"})
		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 30))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlO})
		tm.Type("Acme")
		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlS})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("reply 1"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		final := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second)).(tui.Model)

		assert.False(t, final.SidebarOpen())
		assert.Equal(t, "Acme", form.Fields().BusinessName)
		assert.Equal(t, widget.Contact{Name: "Acme", Avatar: "A"}, final.Contact())

		reqs := tr.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, chat.KindDirective, reqs[0].Kind)
		assert.Contains(t, reqs[0].Message, "The customer name is Sam.")
	})
}

func TestModelSidebarEditsForm(t *testing.T) {
	m, form := newModel(&fakeTransport{hasKey: true}, widget.Fields{})

	var model tea.Model = m
	model, _ = model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	require.True(t, model.(tui.Model).SidebarOpen())

	// business -> customer -> delay
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("99")})

	assert.Equal(t, "99", form.Fields().Delay)
	assert.Equal(t, 30.0, widget.Resolve(form.Fields()).DelaySeconds)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, model.(tui.Model).SidebarOpen())
}

func TestModelIgnoresEnterWhileDisabled(t *testing.T) {
	tr := &fakeTransport{hasKey: true}
	m, _ := newModel(tr, widget.Fields{})

	var model tea.Model = m
	model, _ = model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})
	model, _ = model.Update(tui.InputMsg{Enabled: false})
	require.False(t, model.(tui.Model).InputEnabled())

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, "hi", model.(tui.Model).Input.Value())
	assert.Empty(t, tr.Requests())
}

func TestModelRendersViewEvents(t *testing.T) {
	m, _ := newModel(&fakeTransport{hasKey: true}, widget.Fields{})

	var model tea.Model = m
	model, _ = model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model, _ = model.Update(tui.AppendMsg{Message: widget.Message{Text: "first", Direction: widget.Incoming}})
	model, _ = model.Update(tui.ContactMsg{Contact: widget.ContactFor("zed")})
	model, _ = model.Update(tui.TypingMsg{On: true})

	view := model.View()
	assert.Contains(t, view, "first")
	assert.Contains(t, view, "zed is typing")
	assert.Contains(t, view, "Today")

	model, _ = model.Update(tui.ResetMsg{})
	assert.Equal(t, []widget.Entry{{Kind: widget.EntryDate, Text: widget.DateMarker}}, model.(tui.Model).Entries())
}
