package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zhouzirui/sms-sim/internal/model/chat"
	"github.com/zhouzirui/sms-sim/internal/widget"
)

type field int

const (
	fieldBusiness field = iota
	fieldCustomer
	fieldDelay
	fieldSystem
	fieldContext
	fieldModel
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Business name",
	"Customer name",
	"Response delay (seconds)",
	"System message",
	"Prompt context",
	"Model",
}

// ModelSource lists the models the selector cycles through.
type ModelSource interface {
	Models(ctx context.Context) (widget.ModelList, error)
}

type (
	actionDoneMsg struct{ err error }
	healthMsg     struct {
		health chat.HealthResponse
		err    error
	}
	modelsMsg struct{ list widget.ModelList }
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model of the SMS widget.
type Model struct {
	// Input is the message composer. Exported for test access.
	Input textinput.Model
	// Viewport shows the conversation.
	Viewport viewport.Model
	// Spinner animates the typing indicator.
	Spinner spinner.Model
	// Fields are the configuration inputs shown in the sidebar.
	Fields []textinput.Model

	ctx      context.Context
	handlers widget.Handlers
	form     *widget.Form
	events   <-chan tea.Msg
	models   ModelSource
	styles   Styles

	conv         *widget.Conversation
	contact      widget.Contact
	modelIDs     []string
	typing       bool
	inputEnabled bool
	sidebar      bool
	focus        field
	status       string
	width        int
	ready        bool
}

// Option customises the Model.
type Option func(*Model)

// WithModelSource enables model cycling from the backend catalog.
func WithModelSource(src ModelSource) Option {
	return func(m *Model) { m.models = src }
}

// New creates the Model. events is the channel of the Bridge the
// controller was built with.
func New(ctx context.Context, handlers widget.Handlers, form *widget.Form, events <-chan tea.Msg, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Text Message"
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Focus()

	values := form.Fields()
	initial := [fieldCount]string{
		values.BusinessName,
		values.CustomerName,
		values.Delay,
		values.SystemMessage,
		values.PromptContext,
		values.Model,
	}
	fields := make([]textinput.Model, fieldCount)
	for i := range fields {
		f := textinput.New()
		f.Prompt = ""
		f.CharLimit = 0
		f.SetValue(initial[i])
		fields[i] = f
	}

	m := Model{
		Input:        ti,
		Spinner:      spinner.New(spinner.WithSpinner(spinner.Ellipsis)),
		Fields:       fields,
		ctx:          ctx,
		handlers:     handlers,
		form:         form,
		events:       events,
		styles:       DefaultStyles(),
		conv:         widget.NewConversation(),
		contact:      widget.ContactFor(values.BusinessName),
		inputEnabled: true,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Entries returns the rendered conversation.
func (m Model) Entries() []widget.Entry { return m.conv.Entries() }

// Typing reports whether the typing indicator is shown.
func (m Model) Typing() bool { return m.typing }

// InputEnabled reports whether the composer accepts messages.
func (m Model) InputEnabled() bool { return m.inputEnabled }

// SidebarOpen reports whether the configuration panel is shown.
func (m Model) SidebarOpen() bool { return m.sidebar }

// Contact returns the header contact.
func (m Model) Contact() widget.Contact { return m.contact }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		listenForEvent(m.events),
		m.checkHealth(),
		m.loadModels(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case viewEventMsg:
		var cmd tea.Cmd
		m, cmd = m.applyViewEvent(msg.Msg)
		return m, tea.Batch(cmd, listenForEvent(m.events))

	case AppendMsg, ResetMsg, TypingMsg, InputMsg, ContactMsg:
		return m.applyViewEvent(msg)

	case actionDoneMsg:
		m.status = ""
		if errors.Is(msg.err, widget.ErrBusy) {
			m.status = "Still waiting for a reply"
		}
		return m, nil

	case healthMsg:
		if msg.err == nil && len(m.modelIDs) == 0 {
			m.modelIDs = msg.health.Models
		}
		return m, nil

	case modelsMsg:
		ids := make([]string, 0, len(msg.list.Models))
		for _, entry := range msg.list.Models {
			if entry.Available {
				ids = append(ids, entry.ID)
			}
		}
		if len(ids) > 0 {
			m.modelIDs = ids
		}
		if m.Fields[fieldModel].Value() == "" && msg.list.Default != "" {
			m.Fields[fieldModel].SetValue(msg.list.Default)
			m.syncField(fieldModel)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.typing {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if m.inputEnabled && !m.sidebar {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) applyViewEvent(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case AppendMsg:
		m.conv.Add(msg.Message)
		m.refresh()
	case ResetMsg:
		m.conv.Reset()
		m.refresh()
	case TypingMsg:
		m.typing = msg.On
		if msg.On {
			return m, m.Spinner.Tick
		}
	case InputMsg:
		m.inputEnabled = msg.Enabled
		if msg.Enabled && !m.sidebar {
			return m, m.Input.Focus()
		}
		m.Input.Blur()
	case ContactMsg:
		m.contact = msg.Contact
	}
	return m, nil
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	// header, typing line, status line and input.
	const chrome = 4
	vpHeight := msg.Height - chrome
	if vpHeight < 1 {
		vpHeight = 1
	}

	m.width = msg.Width
	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Input.Width = msg.Width - 3
	for i := range m.Fields {
		m.Fields[i].Width = msg.Width - 6
	}
	m.refresh()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.sidebar {
		return m.handleSidebarKey(msg)
	}

	switch msg.Type {
	case tea.KeyCtrlO:
		return m.openSidebar()

	case tea.KeyCtrlL:
		return m, m.runAction(m.handlers.OnClearChat)

	case tea.KeyCtrlR:
		return m, m.runAction(m.handlers.OnResetChat)

	case tea.KeyEnter:
		if !m.inputEnabled {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		m.Input.SetValue("")
		return m, m.runAction(func(ctx context.Context) error {
			return m.handlers.OnSend(ctx, text)
		})
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.inputEnabled {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.closeSidebar()

	case tea.KeyTab, tea.KeyDown:
		return m.focusField((m.focus + 1) % fieldCount)

	case tea.KeyShiftTab, tea.KeyUp:
		return m.focusField((m.focus + fieldCount - 1) % fieldCount)

	case tea.KeyCtrlN:
		m.cycleModel()
		return m, nil

	case tea.KeyCtrlS:
		return m.apply()

	case tea.KeyEnter:
		if m.focus == fieldCount-1 {
			return m.apply()
		}
		return m.focusField(m.focus + 1)
	}

	before := m.Fields[m.focus].Value()
	var cmd tea.Cmd
	m.Fields[m.focus], cmd = m.Fields[m.focus].Update(msg)
	if m.Fields[m.focus].Value() == before {
		return m, cmd
	}

	m.syncField(m.focus)
	if m.focus == fieldBusiness {
		return m, tea.Batch(cmd, m.contactChanged())
	}
	return m, cmd
}

func (m Model) openSidebar() (tea.Model, tea.Cmd) {
	m.sidebar = true
	m.Input.Blur()
	return m.focusField(m.focus)
}

func (m Model) closeSidebar() (tea.Model, tea.Cmd) {
	m.sidebar = false
	m.Fields[m.focus].Blur()
	if m.inputEnabled {
		return m, m.Input.Focus()
	}
	return m, nil
}

func (m Model) apply() (tea.Model, tea.Cmd) {
	next, cmd := m.closeSidebar()
	model := next.(Model)
	return model, tea.Batch(cmd, model.runAction(model.handlers.OnApplyConfig))
}

func (m Model) focusField(f field) (tea.Model, tea.Cmd) {
	m.Fields[m.focus].Blur()
	m.focus = f
	return m, m.Fields[f].Focus()
}

func (m *Model) cycleModel() {
	if len(m.modelIDs) == 0 {
		return
	}
	current := m.Fields[fieldModel].Value()
	next := m.modelIDs[0]
	for i, id := range m.modelIDs {
		if id == current {
			next = m.modelIDs[(i+1)%len(m.modelIDs)]
			break
		}
	}
	m.Fields[fieldModel].SetValue(next)
	m.syncField(fieldModel)
}

// syncField copies one sidebar input into the shared form.
func (m Model) syncField(f field) {
	value := m.Fields[f].Value()
	m.form.Update(func(fs *widget.Fields) {
		switch f {
		case fieldBusiness:
			fs.BusinessName = value
		case fieldCustomer:
			fs.CustomerName = value
		case fieldDelay:
			fs.Delay = value
		case fieldSystem:
			fs.SystemMessage = value
		case fieldContext:
			fs.PromptContext = value
		case fieldModel:
			fs.Model = value
		}
	})
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.Viewport.SetContent(m.renderConversation())
	m.Viewport.GotoBottom()
}

func (m Model) runAction(fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{err: fn(ctx)}
	}
}

func (m Model) contactChanged() tea.Cmd {
	handlers := m.handlers
	return func() tea.Msg {
		handlers.OnContactChanged()
		return nil
	}
}

func (m Model) checkHealth() tea.Cmd {
	ctx, handlers := m.ctx, m.handlers
	return func() tea.Msg {
		health, err := handlers.CheckHealth(ctx)
		return healthMsg{health: health, err: err}
	}
}

func (m Model) loadModels() tea.Cmd {
	if m.models == nil {
		return nil
	}
	ctx, src := m.ctx, m.models
	return func() tea.Msg {
		list, err := src.Models(ctx)
		if err != nil {
			return nil
		}
		return modelsMsg{list: list}
	}
}
