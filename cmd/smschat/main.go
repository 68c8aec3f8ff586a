package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/sms-sim/internal/console"
	"github.com/zhouzirui/sms-sim/internal/model/profile"
	"github.com/zhouzirui/sms-sim/internal/tui"
	"github.com/zhouzirui/sms-sim/internal/widget"
	"github.com/zhouzirui/sms-sim/pkg/utils"
)

type options struct {
	server    string
	transport string
	profiles  string
	profile   string
	logLevel  string
	logFile   string
	plain     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "smschat",
		Short: "Chat with the SMS reactivation simulator",
		Long: `smschat plays the customer side of an SMS reactivation conversation.
The business side is generated by the backend started with cmd/api.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.server, "server", "http://localhost:3000", "backend base URL")
	flags.StringVar(&opts.transport, "transport", "http", "exchange transport: http or ws")
	flags.StringVar(&opts.profiles, "profiles", "", "YAML file with extra profiles")
	flags.StringVar(&opts.profile, "profile", "default", "profile used to prefill the settings")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file")
	flags.BoolVar(&opts.plain, "plain", false, "line mode instead of the full-screen UI")

	return cmd
}

func run(ctx context.Context, opts *options) error {
	plain := opts.plain || !isatty.IsTerminal(os.Stdout.Fd())

	logOut, closeLog, err := logOutput(opts.logFile, plain)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := utils.ConfigureLogger(opts.logLevel, logOut)

	fields, err := loadProfile(opts.profiles, opts.profile)
	if err != nil {
		return err
	}
	form := widget.NewForm(fields)

	transport, httpTransport, err := newTransport(opts.server, opts.transport)
	if err != nil {
		return err
	}
	if closer, ok := transport.(io.Closer); ok {
		defer closer.Close()
	}

	logger.Info().Str("server", opts.server).Str("transport", opts.transport).Str("profile", opts.profile).Msg("starting")

	if plain {
		printer := console.NewPrinter(os.Stdout)
		ctrl := widget.NewController(printer, form, transport, widget.WithLogger(logger))
		return console.Run(ctx, os.Stdin, os.Stdout, ctrl, form)
	}

	bridge := tui.NewBridge()
	ctrl := widget.NewController(bridge, form, transport, widget.WithLogger(logger))
	model := tui.New(ctx, ctrl, form, bridge.Events(), tui.WithModelSource(httpTransport))

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run ui")
	}
	return nil
}

// newTransport 构造交换使用的传输层。HTTP 客户端不设超时，交换只受传输层自身限制。
// 模型列表始终走 HTTP。
func newTransport(server, kind string) (widget.Transport, *widget.HTTPTransport, error) {
	httpTransport := widget.NewHTTPTransport(server, nil)
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "http", "":
		return httpTransport, httpTransport, nil
	case "ws":
		return widget.NewWSTransport(server, nil), httpTransport, nil
	default:
		return nil, nil, errors.Errorf("unknown transport %q", kind)
	}
}

// logOutput 选择日志输出：指定文件时写文件，行模式写 stderr，全屏模式丢弃。
func logOutput(path string, plain bool) (io.Writer, func(), error) {
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open log file")
		}
		return f, func() { _ = f.Close() }, nil
	}
	if plain {
		return os.Stderr, func() {}, nil
	}
	return io.Discard, func() {}, nil
}

func loadProfile(path, id string) (widget.Fields, error) {
	var store profile.Store = profile.NewMemoryStore(profile.Seed())
	if path != "" {
		loaded, err := profile.LoadFile(path)
		if err != nil {
			return widget.Fields{}, err
		}
		store = loaded
	}

	p, ok := store.FindByID(id)
	if !ok {
		var ids []string
		for _, item := range store.List() {
			ids = append(ids, item.ID)
		}
		return widget.Fields{}, fmt.Errorf("unknown profile %q (available: %s)", id, strings.Join(ids, ", "))
	}
	return p.Fields, nil
}
