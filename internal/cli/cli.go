// Package cli implements the interactive TradeCLI shell on top of a session.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/tradecli/internal/domain"
	"github.com/vadiminshakov/tradecli/internal/session"
	"github.com/vadiminshakov/tradecli/internal/storage/simstate"
	"go.uber.org/zap"
)

type stateStore interface {
	Save(state simstate.State) error
	Load() (*simstate.State, error)
	Path() string
}

type tradeLog interface {
	Last(n int) ([]domain.Fill, error)
}

// App reads commands, runs them against the session and prints the results.
type App struct {
	session  *session.Session
	store    stateStore
	trades   tradeLog
	markdown markdownRenderer
	out      io.Writer
	logger   *zap.Logger
	now      func() time.Time

	commands []command
	index    map[string]*command
}

// Option configures App.
type Option func(*App)

// WithStateStore enables save and load.
func WithStateStore(store stateStore) Option {
	return func(a *App) {
		a.store = store
	}
}

// WithTradeLog enables the trades command.
func WithTradeLog(trades tradeLog) Option {
	return func(a *App) {
		a.trades = trades
	}
}

// WithGlamour renders markdown reports with the named glamour style, or the
// style matching the terminal background when style is empty.
func WithGlamour(style string) Option {
	return func(a *App) {
		r, err := newGlamourRenderer(style)
		if err != nil {
			a.logger.Warn("markdown renderer unavailable, printing plain markdown", zap.Error(err))
			return
		}
		a.markdown = r
	}
}

// New creates the shell writing to out.
func New(s *session.Session, out io.Writer, logger *zap.Logger, opts ...Option) (*App, error) {
	if s == nil {
		return nil, errors.New("session is required for App")
	}
	if out == nil {
		return nil, errors.New("output is required for App")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{
		session:  s,
		markdown: plainMarkdown{},
		out:      out,
		logger:   logger,
		now:      time.Now,
	}
	a.commands = commandTable()
	a.index = make(map[string]*command, len(a.commands))
	for i := range a.commands {
		c := &a.commands[i]
		a.index[c.name] = c
		for _, alias := range c.aliases {
			a.index[alias] = c
		}
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Run executes commands read from in until exit, end of input or ctx is done.
func (a *App) Run(ctx context.Context, in io.Reader) error {
	a.printBanner()

	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			a.println("\nExiting TradeCLI. Goodbye!")
			return nil
		}

		fmt.Fprint(a.out, promptStyle.Render("TradeCLI>")+" ")
		if !scanner.Scan() {
			a.println("\nExiting TradeCLI. Goodbye!")
			return scanner.Err()
		}

		if !a.Execute(ctx, scanner.Text()) {
			return nil
		}
	}
}

// Execute runs one command line. Alerts are evaluated after a successful
// command that changes state or advances prices. It returns false once the
// user asked to exit.
func (a *App) Execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		a.println("\aNo command entered. Please type 'help' for available commands.")
		return true
	}

	name := strings.ToLower(fields[0])
	args := fields[1:]

	cmd, ok := a.index[name]
	switch {
	case !ok:
		a.println("Unknown command. Type 'help' for available commands.")
		return true
	case len(args) < cmd.minArgs || len(args) > cmd.maxArgs:
		a.println("Usage: " + cmd.usage)
		return true
	case cmd.exit:
		a.println("Exiting TradeCLI. Goodbye!")
		return false
	}

	if err := cmd.run(a, ctx, args); err != nil {
		a.logger.Debug("command failed", zap.String("command", cmd.name), zap.Error(err))
		a.println(errorStyle.Render(describe(err)))
		return true
	}

	if cmd.mutates {
		a.notifyAlerts(ctx)
	}
	return true
}

func (a *App) notifyAlerts(ctx context.Context) {
	for _, fired := range a.session.EvaluateAlerts(ctx) {
		a.println(alertStyle.Render("🔔 " + fired.String()))
	}
}

func (a *App) printBanner() {
	a.println(bannerStyle.Render("TradeCLI"))
	a.println(titleStyle.Render("Welcome to the TradeCLI!"))
	a.println("Type 'help' to see available commands.")
}

func (a *App) println(s string) {
	fmt.Fprintln(a.out, s)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) printMarkdown(md string) {
	rendered, err := a.markdown.Render(md)
	if err != nil {
		a.logger.Warn("failed to render markdown", zap.Error(err))
		rendered = md
	}
	fmt.Fprint(a.out, rendered)
}

// describe maps domain errors to the messages shown to the user.
func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "Quantity must be a positive integer."
	case errors.Is(err, domain.ErrInsufficientShares):
		return "Insufficient shares to sell."
	case errors.Is(err, domain.ErrPriceUnavailable):
		return "Price unavailable right now, nothing was done. Try again."
	case errors.Is(err, domain.ErrInvalidTicker):
		return "Invalid ticker."
	case errors.Is(err, domain.ErrInvalidAlert):
		return "Alert values must be positive numbers."
	default:
		return "Error: " + err.Error()
	}
}
