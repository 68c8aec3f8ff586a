package widget

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/sms-sim/internal/model/chat"
)

// View is what a presentation implements to receive updates. Calls may
// arrive from handler goroutines.
type View interface {
	Append(msg Message)
	ResetConversation()
	SetTyping(on bool)
	SetInputEnabled(on bool)
	SetContact(contact Contact)
}

// Handlers are the commands a presentation invokes. They block until the
// action completes, so presentations call them off the UI goroutine.
type Handlers interface {
	OnSend(ctx context.Context, text string) error
	OnApplyConfig(ctx context.Context) error
	OnClearChat(ctx context.Context) error
	OnResetChat(ctx context.Context) error
	OnContactChanged()
	CheckHealth(ctx context.Context) (chat.HealthResponse, error)
}

// forgetTimeout bounds the best-effort transcript cleanup.
const forgetTimeout = 3 * time.Second

// Controller owns the session and drives a View through the exchange
// protocol. One action runs at a time; overlapping actions get ErrBusy.
type Controller struct {
	view      View
	fields    FieldSource
	session   *SessionCell
	transport Transport
	exchanger *Exchanger
	logger    zerolog.Logger

	busy atomic.Bool
}

var _ Handlers = (*Controller)(nil)

// ControllerOption customises a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) { c.logger = logger }
}

// NewController wires a view, its form and a transport.
func NewController(view View, fields FieldSource, transport Transport, opts ...ControllerOption) *Controller {
	c := &Controller{
		view:      view,
		fields:    fields,
		session:   NewSessionCell(),
		transport: transport,
		exchanger: NewExchanger(transport),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SessionID returns the active session id.
func (c *Controller) SessionID() string {
	return c.session.Current()
}

// Config resolves the form as it is right now.
func (c *Controller) Config() Configuration {
	return Resolve(c.fields.Fields())
}

// OnSend sends a customer message. Blank text is ignored.
func (c *Controller) OnSend(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if !c.begin() {
		return ErrBusy
	}
	defer c.end()

	c.view.Append(Message{Text: text, Direction: Outgoing})
	c.exchange(ctx, Outbound{Text: text, Kind: chat.KindMessage}, ErrorSendText)
	return nil
}

// OnApplyConfig starts a new conversation with the current configuration
// and asks the model for the opening outreach message.
func (c *Controller) OnApplyConfig(ctx context.Context) error {
	if !c.begin() {
		return ErrBusy
	}
	defer c.end()

	c.restart()
	c.OnContactChanged()
	c.outreach(ctx)
	return nil
}

// OnClearChat starts a new, empty conversation.
func (c *Controller) OnClearChat(ctx context.Context) error {
	if !c.begin() {
		return ErrBusy
	}
	defer c.end()

	c.restart()
	return nil
}

// OnResetChat clears the conversation and triggers the opening message again.
func (c *Controller) OnResetChat(ctx context.Context) error {
	if !c.begin() {
		return ErrBusy
	}
	defer c.end()

	c.restart()
	c.outreach(ctx)
	return nil
}

// OnContactChanged refreshes the header from the business name.
func (c *Controller) OnContactChanged() {
	c.view.SetContact(ContactFor(c.fields.Fields().BusinessName))
}

// CheckHealth appends one warning when the backend is unreachable or has
// no API key, and nothing otherwise.
func (c *Controller) CheckHealth(ctx context.Context) (chat.HealthResponse, error) {
	health, err := c.transport.Health(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("health check failed")
		c.view.Append(Message{Text: WarningUnreachable, Direction: Incoming})
		return health, err
	}
	if !health.HasAPIKey {
		c.view.Append(Message{Text: WarningNoAPIKey, Direction: Incoming})
	}
	return health, nil
}

func (c *Controller) outreach(ctx context.Context) {
	directive := OutreachDirective(c.Config().CustomerName)
	c.exchange(ctx, Outbound{Text: directive, Kind: chat.KindDirective}, ErrorStartText)
}

// exchange runs one exchange with the typing indicator on and renders
// exactly one incoming message.
func (c *Controller) exchange(ctx context.Context, out Outbound, failureText string) {
	cfg := c.Config()
	sessionID := c.session.Current()

	c.view.SetTyping(true)
	reply, err := c.exchanger.Exchange(ctx, out, cfg, sessionID)
	c.view.SetTyping(false)

	if err != nil {
		c.logger.Warn().Err(err).Str("session", sessionID).Str("kind", string(out.Kind)).Msg("exchange failed")
		c.view.Append(Message{Text: failureText, Direction: Incoming})
		return
	}
	c.view.Append(reply)
}

// restart regenerates the session before anything else is sent and resets
// the conversation.
func (c *Controller) restart() {
	previous := c.session.Regenerate()
	c.view.ResetConversation()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), forgetTimeout)
		defer cancel()
		if err := c.transport.Forget(ctx, previous); err != nil {
			c.logger.Debug().Err(err).Str("session", previous).Msg("forget session failed")
		}
	}()
}

func (c *Controller) begin() bool {
	if !c.busy.CompareAndSwap(false, true) {
		return false
	}
	c.view.SetInputEnabled(false)
	return true
}

func (c *Controller) end() {
	c.view.SetInputEnabled(true)
	c.busy.Store(false)
}
