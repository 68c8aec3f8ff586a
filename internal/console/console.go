// Package console is a line-oriented presentation of the widget for pipes
// and dumb terminals.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/zhouzirui/sms-sim/internal/widget"
)

const help = `commands:
  /apply               start a new conversation with the current settings
  /clear               clear the conversation
  /reset               clear and send the opening message again
  /set <field> <text>  business, customer, delay, system, context, model
  /show                print the current settings
  /quit                exit
anything else is sent as a text message`

// Printer implements widget.View by writing one line per event.
type Printer struct {
	mu   sync.Mutex
	out  io.Writer
	conv *widget.Conversation
}

var _ widget.View = (*Printer)(nil)

// NewPrinter writes to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, conv: widget.NewConversation()}
}

func (p *Printer) Append(msg widget.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry := p.conv.Add(msg)
	arrow := "<"
	if msg.Direction == widget.Outgoing {
		arrow = ">"
	}
	fmt.Fprintf(p.out, "[%s] %s %s\n", entry.Time, arrow, entry.Text)
}

func (p *Printer) ResetConversation() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.conv.Reset()
	fmt.Fprintf(p.out, "---- %s ----\n", widget.DateMarker)
}

func (p *Printer) SetTyping(on bool) {
	if !on {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, "... typing")
}

func (p *Printer) SetInputEnabled(bool) {}

func (p *Printer) SetContact(contact widget.Contact) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "(%s) %s\n", contact.Avatar, contact.Name)
}

// Entries returns what has been printed since the last reset.
func (p *Printer) Entries() []widget.Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conv.Entries()
}

// Run reads commands from in until EOF, /quit or ctx is done. Each line is
// handled to completion before the next is read, so exchanges never overlap.
func Run(ctx context.Context, in io.Reader, out io.Writer, handlers widget.Handlers, form *widget.Form) error {
	fmt.Fprintln(out, help)
	handlers.OnContactChanged()
	_, _ = handlers.CheckHealth(ctx)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		quit, err := handleLine(ctx, line, out, handlers, form)
		if err != nil {
			fmt.Fprintf(out, "! %v\n", err)
		}
		if quit {
			return nil
		}
	}
	return errors.Wrap(scanner.Err(), "read input")
}

func handleLine(ctx context.Context, line string, out io.Writer, handlers widget.Handlers, form *widget.Form) (bool, error) {
	if !strings.HasPrefix(line, "/") {
		return false, handlers.OnSend(ctx, line)
	}

	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "/quit", "/exit":
		return true, nil
	case "/apply":
		return false, handlers.OnApplyConfig(ctx)
	case "/clear":
		return false, handlers.OnClearChat(ctx)
	case "/reset":
		return false, handlers.OnResetChat(ctx)
	case "/show":
		printFields(out, form.Fields())
		return false, nil
	case "/set":
		name, value, _ := strings.Cut(strings.TrimSpace(rest), " ")
		if err := setField(form, name, strings.TrimSpace(value)); err != nil {
			return false, err
		}
		if name == "business" {
			handlers.OnContactChanged()
		}
		return false, nil
	case "/help":
		fmt.Fprintln(out, help)
		return false, nil
	default:
		return false, errors.Errorf("unknown command %s", cmd)
	}
}

func setField(form *widget.Form, name, value string) error {
	var err error
	form.Update(func(f *widget.Fields) {
		switch name {
		case "business":
			f.BusinessName = value
		case "customer":
			f.CustomerName = value
		case "delay":
			f.Delay = value
		case "system":
			f.SystemMessage = value
		case "context":
			f.PromptContext = value
		case "model":
			f.Model = value
		default:
			err = errors.Errorf("unknown field %q", name)
		}
	})
	return err
}

func printFields(out io.Writer, f widget.Fields) {
	cfg := widget.Resolve(f)
	fmt.Fprintf(out, "business: %s\ncustomer: %s\ndelay:    %gs\nmodel:    %s\nsystem:   %s\ncontext:  %s\n",
		cfg.BusinessName, cfg.CustomerName, cfg.DelaySeconds, cfg.Model, cfg.SystemMessage, cfg.PromptContext)
}
