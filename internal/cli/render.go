package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tradecli/internal/domain"
)

var (
	green = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#73F59F"}
	red   = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#FF6B6B"}
	amber = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#F2CC60"}

	bannerStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true).
			Border(lipgloss.DoubleBorder(), true, false).
			BorderForeground(green).
			Padding(0, 18)
	titleStyle  = lipgloss.NewStyle().Foreground(green).Bold(true)
	promptStyle = lipgloss.NewStyle().Foreground(green).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(red)
	alertStyle  = lipgloss.NewStyle().Foreground(amber).Bold(true)
	gainStyle   = lipgloss.NewStyle().Foreground(green)
	lossStyle   = lipgloss.NewStyle().Foreground(red)
	chartStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(green).
			Padding(0, 1)
	cellStyle = lipgloss.NewStyle().Padding(0, 1)
)

// markdownRenderer turns a markdown report into terminal output.
type markdownRenderer interface {
	Render(in string) (string, error)
}

// plainMarkdown prints markdown untouched.
type plainMarkdown struct{}

func (plainMarkdown) Render(in string) (string, error) { return in, nil }

func newGlamourRenderer(style string) (markdownRenderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(100)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	return glamour.NewTermRenderer(opts...)
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func signedMoney(d decimal.Decimal) string {
	s := money(d)
	switch {
	case d.IsPositive():
		return gainStyle.Render(s)
	case d.IsNegative():
		return lossStyle.Render(s)
	default:
		return s
	}
}

func percent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

func tickerList(tickers []domain.Ticker) string {
	parts := make([]string, len(tickers))
	for i, t := range tickers {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(_, _ int) lipgloss.Style { return cellStyle }).
		Headers(headers...)
}

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

// sparkline draws values as a single row of block characters scaled between
// the minimum and maximum value.
func sparkline(values []decimal.Decimal) string {
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = decimal.Min(lo, v)
		hi = decimal.Max(hi, v)
	}

	span := hi.Sub(lo)
	steps := decimal.NewFromInt(int64(len(sparkTicks) - 1))
	var b strings.Builder
	for _, v := range values {
		idx := 0
		if span.IsPositive() {
			idx = int(v.Sub(lo).Div(span).Mul(steps).Round(0).IntPart())
		}
		b.WriteRune(sparkTicks[idx])
	}
	return b.String()
}

func chartBox(ticker domain.Ticker, history []decimal.Decimal) string {
	lo, hi := history[0], history[0]
	for _, v := range history[1:] {
		lo = decimal.Min(lo, v)
		hi = decimal.Max(hi, v)
	}
	last := history[len(history)-1]

	body := fmt.Sprintf("%s\n%s\nlow %s  high %s  last %s  (%d points)",
		titleStyle.Render("Price History for "+ticker.String()),
		sparkline(history),
		money(lo), money(hi), money(last), len(history))
	return chartStyle.Render(body)
}
