package widget

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sourcegraph/conc"

	"github.com/zhouzirui/sms-sim/internal/model/chat"
)

var (
	// ErrExchangeFailed wraps every failure of one exchange: transport,
	// non-2xx status and malformed body alike.
	ErrExchangeFailed = errors.New("exchange failed")
	// ErrBusy is returned when an exchange is already pending.
	ErrBusy = errors.New("an exchange is already pending")
)

type exchangeError struct {
	cause error
}

func (e *exchangeError) Error() string        { return "exchange failed: " + e.cause.Error() }
func (e *exchangeError) Unwrap() error        { return e.cause }
func (e *exchangeError) Is(target error) bool { return target == ErrExchangeFailed }

// Outbound is one message handed to the exchanger.
type Outbound struct {
	Text string
	Kind chat.Kind
}

// Exchanger runs the request and the typing delay side by side and returns
// once both are done, so the visible latency is max(network, delay).
type Exchanger struct {
	transport Transport
	pending   atomic.Bool
}

// NewExchanger wraps a transport.
func NewExchanger(transport Transport) *Exchanger {
	return &Exchanger{transport: transport}
}

// Pending reports whether an exchange is in flight.
func (e *Exchanger) Pending() bool {
	return e.pending.Load()
}

// Exchange performs one request/response cycle. No retries.
func (e *Exchanger) Exchange(ctx context.Context, out Outbound, cfg Configuration, sessionID string) (Message, error) {
	if !e.pending.CompareAndSwap(false, true) {
		return Message{}, ErrBusy
	}
	defer e.pending.Store(false)

	kind := out.Kind
	if kind == "" {
		kind = chat.KindMessage
	}
	req := chat.ChatRequest{
		SessionID:     sessionID,
		Message:       out.Text,
		Kind:          kind,
		SystemMessage: cfg.SystemMessage,
		PromptContext: cfg.PromptContext,
		Model:         cfg.Model,
	}

	var (
		reply   string
		sendErr error
	)
	wg := conc.NewWaitGroup()
	wg.Go(func() {
		reply, sendErr = e.transport.Send(ctx, req)
	})
	wg.Go(func() {
		wait(ctx, cfg.Delay())
	})
	wg.Wait()

	if sendErr != nil {
		return Message{}, &exchangeError{cause: sendErr}
	}
	return Message{Text: reply, Direction: Incoming}, nil
}

func wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
