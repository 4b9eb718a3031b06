package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tradecli/internal/domain"
	"github.com/vadiminshakov/tradecli/internal/services/valuator"
	"github.com/vadiminshakov/tradecli/internal/storage/simstate"
)

const defaultTradesShown = 10

var popularPairs = []string{
	"EUR/USD", "GBP/USD", "USD/JPY",
	"AUD/USD", "BTC/USD", "TSLA", "AAPL", "GOOGL",
}

type command struct {
	name    string
	aliases []string
	usage   string
	help    string
	minArgs int
	maxArgs int
	exit    bool
	// mutates marks commands that change session state or advance a price
	// clock; alerts are evaluated only after these succeed.
	mutates bool
	run     func(a *App, ctx context.Context, args []string) error
}

func commandTable() []command {
	return []command{
		{name: "help", usage: "help", help: "Show this help message", run: (*App).help},
		{name: "quote", usage: "quote <ticker>", help: "Get the current market quote for the ticker", minArgs: 1, maxArgs: 1, mutates: true, run: (*App).quote},
		{name: "buy", usage: "buy <ticker> <qty>", help: "Buy specified number of shares", minArgs: 2, maxArgs: 2, mutates: true, run: (*App).buy},
		{name: "sell", usage: "sell <ticker> <qty>", help: "Sell specified number of shares", minArgs: 2, maxArgs: 2, mutates: true, run: (*App).sell},
		{name: "positions", usage: "positions", help: "Show current holdings and profit/loss", mutates: true, run: (*App).positions},
		{name: "chart", usage: "chart <ticker>", help: "Display price history chart", minArgs: 1, maxArgs: 1, mutates: true, run: (*App).chart},
		{name: "dashboard", usage: "dashboard", help: "Show overall portfolio performance", mutates: true, run: (*App).dashboard},
		{name: "popular", usage: "popular", help: "Show popular trading pairs", run: (*App).popular},
		{name: "favourite", usage: "favourite <ticker>", help: "Add a ticker to favourites", minArgs: 1, maxArgs: 1, run: (*App).favourite},
		{name: "unfavourite", usage: "unfavourite <ticker>", help: "Remove a ticker from favourites", minArgs: 1, maxArgs: 1, run: (*App).unfavourite},
		{name: "favourites", usage: "favourites", help: "List favourite tickers", run: (*App).favourites},
		{name: "screener", usage: "screener", help: "Run the price screener", run: (*App).screener},
		{name: "alert", usage: "alert <ticker> <price> | alert <ticker> <pct>% [base]", help: "Alert when price reaches a target or moves by a percentage", minArgs: 2, maxArgs: 3, mutates: true, run: (*App).alert},
		{name: "alerts", usage: "alerts", help: "List armed alerts", run: (*App).alerts},
		{name: "unalert", usage: "unalert <id>", help: "Remove an armed alert", minArgs: 1, maxArgs: 1, run: (*App).unalert},
		{name: "realized", usage: "realized", help: "Show realized profit/loss", run: (*App).realized},
		{name: "trades", usage: "trades [n]", help: "Show the last n journaled trades", maxArgs: 1, run: (*App).tradesCmd},
		{name: "save", usage: "save", help: "Save positions and favourites", run: (*App).save},
		{name: "load", usage: "load", help: "Load saved positions and favourites", mutates: true, run: (*App).load},
		{name: "clear", aliases: []string{"cls"}, usage: "clear / cls", help: "Clear the terminal screen", run: (*App).clear},
		{name: "exit", aliases: []string{"quit"}, usage: "exit", help: "Exit the terminal", exit: true},
	}
}

func (a *App) help(_ context.Context, _ []string) error {
	var b strings.Builder
	b.WriteString("# Available Commands\n\n| Command | Description |\n|---|---|\n")
	for _, c := range a.commands {
		fmt.Fprintf(&b, "| `%s` | %s |\n", strings.ReplaceAll(c.usage, "|", "or"), c.help)
	}
	a.printMarkdown(b.String())
	return nil
}

func (a *App) quote(ctx context.Context, args []string) error {
	q, err := a.session.Quote(ctx, args[0])
	if err != nil {
		return err
	}
	a.printf("Quote for %s: %s\n", q.Ticker, money(q.Price))
	return nil
}

func (a *App) buy(ctx context.Context, args []string) error {
	qty, err := domain.ParseQuantity(args[1])
	if err != nil {
		return err
	}
	fill, err := a.session.Buy(ctx, args[0], qty)
	if err != nil {
		return err
	}
	a.printf("Bought %d shares of %s at %s/share for %s.\n", fill.Quantity, fill.Ticker, money(fill.Price), money(fill.Amount))
	return nil
}

func (a *App) sell(ctx context.Context, args []string) error {
	qty, err := domain.ParseQuantity(args[1])
	if err != nil {
		return err
	}
	fill, err := a.session.Sell(ctx, args[0], qty)
	if err != nil {
		return err
	}
	a.printf("Sold %d shares of %s at %s/share for %s (realized %s).\n",
		fill.Quantity, fill.Ticker, money(fill.Price), money(fill.Amount), signedMoney(fill.RealizedPnL))
	return nil
}

func (a *App) positions(ctx context.Context, _ []string) error {
	report := a.session.Portfolio(ctx)
	if len(report.Lines) == 0 {
		a.println("No positions held.")
		return nil
	}

	t := newTable("Ticker", "Shares", "Avg Cost", "Current", "P/L")
	for _, line := range report.Lines {
		if line.Unavailable {
			t.Row(line.Ticker.String(), strconv.FormatInt(line.Quantity, 10), money(line.AverageCost), "n/a", "n/a")
			continue
		}
		t.Row(line.Ticker.String(), strconv.FormatInt(line.Quantity, 10), money(line.AverageCost), money(line.CurrentPrice), signedMoney(line.UnrealizedPnL))
	}

	a.println(titleStyle.Render("Current Positions:"))
	a.println(t.Render())
	a.println("Total Unrealized P/L: " + signedMoney(report.TotalUnrealized))
	a.printUnpriced(report)
	return nil
}

func (a *App) dashboard(ctx context.Context, _ []string) error {
	report := a.session.Portfolio(ctx)
	if len(report.Lines) == 0 {
		a.println("No positions held.")
		return nil
	}
	a.printMarkdown(dashboardMarkdown(report, a.session.Realized()))
	a.printUnpriced(report)
	return nil
}

func dashboardMarkdown(report valuator.Report, realized decimal.Decimal) string {
	weights := valuator.Diversification(report)

	var b strings.Builder
	b.WriteString("# Portfolio Dashboard\n\n")
	b.WriteString("| Ticker | Shares | Avg Cost | Current Price | Market Value | Profit/Loss | Weight |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
	for _, line := range report.Lines {
		if line.Unavailable {
			fmt.Fprintf(&b, "| %s | %d | %s | n/a | n/a | n/a | n/a |\n", line.Ticker, line.Quantity, money(line.AverageCost))
			continue
		}
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %s |\n",
			line.Ticker, line.Quantity, money(line.AverageCost), money(line.CurrentPrice),
			money(domain.Round2(line.MarketValue)), money(line.UnrealizedPnL), percent(weights[line.Ticker]))
	}

	fmt.Fprintf(&b, "\n- Overall Invested: **%s**\n", money(report.TotalInvested))
	fmt.Fprintf(&b, "- Current Portfolio Value: **%s**\n", money(report.TotalValue))
	fmt.Fprintf(&b, "- Overall Profit/Loss: **%s**\n", money(domain.Round2(report.OverallPnL)))
	fmt.Fprintf(&b, "- Realized Profit/Loss: **%s**\n", money(realized))
	return b.String()
}

func (a *App) printUnpriced(report valuator.Report) {
	if len(report.Unpriced) > 0 {
		a.println(errorStyle.Render("No price for " + tickerList(report.Unpriced) + ", left out of totals."))
	}
}

func (a *App) chart(ctx context.Context, args []string) error {
	q, err := a.session.Quote(ctx, args[0])
	if err != nil && !errors.Is(err, domain.ErrPriceUnavailable) {
		return err
	}

	history, err := a.session.History(q.Ticker.String())
	if err != nil {
		return err
	}
	if len(history) < 2 {
		a.printf("Not enough data to plot chart for %s\n", q.Ticker)
		return nil
	}

	a.println(chartBox(q.Ticker, history))
	return nil
}

func (a *App) popular(_ context.Context, _ []string) error {
	a.println(titleStyle.Render("Popular Pairs and Tickers:"))
	for _, p := range popularPairs {
		a.println("  " + p)
	}
	return nil
}

func (a *App) favourite(_ context.Context, args []string) error {
	ticker, err := a.session.AddFavourite(args[0])
	if err != nil {
		return err
	}
	a.printf("Added %s to favourites.\n", ticker)
	return nil
}

func (a *App) unfavourite(_ context.Context, args []string) error {
	removed, err := a.session.RemoveFavourite(args[0])
	if err != nil {
		return err
	}
	if !removed {
		a.printf("%s is not a favourite.\n", strings.ToUpper(args[0]))
		return nil
	}
	a.printf("Removed %s from favourites.\n", strings.ToUpper(args[0]))
	return nil
}

func (a *App) favourites(_ context.Context, _ []string) error {
	favs := a.session.Favourites()
	if len(favs) == 0 {
		a.println("No favourites yet.")
		return nil
	}
	a.println(titleStyle.Render("Favourite Tickers:"))
	for _, t := range favs {
		a.println("  " + t.String())
	}
	return nil
}

func (a *App) screener(_ context.Context, _ []string) error {
	a.println(titleStyle.Render("Screener Results:"))
	results := a.session.Screener()
	if len(results) == 0 {
		a.println("  No trending tickers detected.")
		return nil
	}

	for _, r := range results {
		line := fmt.Sprintf("  %s is trending up. Current price: %s", r.Ticker, money(r.Price))
		if r.HasSMA {
			line += " SMA(5) " + money(r.SMA)
		}
		if r.HasEMA {
			line += " EMA(12) " + money(r.EMA)
		}
		if r.HasMACD {
			line += " MACD " + r.MACD.StringFixed(2) + " signal " + r.MACDSignal.StringFixed(2)
		}
		if r.HasRSI {
			line += " RSI(14) " + r.RSI.StringFixed(1)
		}
		a.println(line)
	}
	return nil
}

func (a *App) alert(ctx context.Context, args []string) error {
	value := args[1]
	if pct, ok := strings.CutSuffix(value, "%"); ok {
		threshold, err := decimal.NewFromString(pct)
		if err != nil {
			return errors.Wrapf(domain.ErrInvalidAlert, "threshold %q", value)
		}
		base := decimal.Zero
		if len(args) == 3 {
			if base, err = decimal.NewFromString(args[2]); err != nil || !base.IsPositive() {
				return errors.Wrapf(domain.ErrInvalidAlert, "base %q", args[2])
			}
		}

		alert, err := a.session.AddPercentAlert(ctx, args[0], base, threshold)
		if err != nil {
			return err
		}
		a.printf("Armed %s\n", alert)
		return nil
	}

	if len(args) == 3 {
		return errors.Errorf("a base price only applies to percentage alerts, usage: %s", a.index["alert"].usage)
	}
	target, err := decimal.NewFromString(value)
	if err != nil {
		return errors.Wrapf(domain.ErrInvalidAlert, "target %q", value)
	}
	alert, err := a.session.AddAbsoluteAlert(args[0], target)
	if err != nil {
		return err
	}
	a.printf("Armed %s\n", alert)
	return nil
}

func (a *App) alerts(_ context.Context, _ []string) error {
	pending := a.session.Alerts()
	if len(pending) == 0 {
		a.println("No alerts armed.")
		return nil
	}
	a.println(titleStyle.Render("Armed Alerts:"))
	for _, al := range pending {
		a.println("  " + al.String())
	}
	return nil
}

func (a *App) unalert(_ context.Context, args []string) error {
	id, err := strconv.ParseUint(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil {
		return errors.Errorf("invalid alert id %q", args[0])
	}
	if !a.session.RemoveAlert(id) {
		a.printf("No alert #%d.\n", id)
		return nil
	}
	a.printf("Removed alert #%d.\n", id)
	return nil
}

func (a *App) realized(_ context.Context, _ []string) error {
	a.println("Realized P/L: " + signedMoney(a.session.Realized()))
	return nil
}

func (a *App) tradesCmd(_ context.Context, args []string) error {
	if a.trades == nil {
		a.println("Trade journal is disabled.")
		return nil
	}

	n := defaultTradesShown
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return errors.Errorf("invalid trade count %q", args[0])
		}
		n = v
	}

	fills, err := a.trades.Last(n)
	if err != nil {
		return errors.Wrap(err, "read trade journal")
	}
	if len(fills) == 0 {
		a.println("No trades yet.")
		return nil
	}

	t := newTable("Time", "Side", "Ticker", "Qty", "Price", "Amount", "Realized")
	for _, f := range fills {
		realized := ""
		if f.Side == domain.SideSell {
			realized = money(f.RealizedPnL)
		}
		t.Row(f.Time.Format("2006-01-02 15:04:05"), f.Side.String(), f.Ticker.String(),
			strconv.FormatInt(f.Quantity, 10), money(f.Price), money(f.Amount), realized)
	}
	a.println(t.Render())
	return nil
}

func (a *App) save(_ context.Context, _ []string) error {
	if a.store == nil {
		a.println("Saving is disabled.")
		return nil
	}
	if err := a.store.Save(simstate.NewState(a.session.State(), a.now())); err != nil {
		return err
	}
	a.printf("Saved session to %s.\n", a.store.Path())
	return nil
}

func (a *App) load(_ context.Context, _ []string) error {
	if a.store == nil {
		a.println("Loading is disabled.")
		return nil
	}

	stored, err := a.store.Load()
	if err != nil {
		return err
	}
	if stored == nil {
		a.printf("Nothing saved at %s.\n", a.store.Path())
		return nil
	}

	state, err := stored.ToSessionState()
	if err != nil {
		return err
	}
	if err := a.session.Restore(state); err != nil {
		return err
	}
	a.printf("Loaded %d positions and %d favourites from %s.\n", len(state.Positions), len(state.Favourites), a.store.Path())
	return nil
}

func (a *App) clear(_ context.Context, _ []string) error {
	fmt.Fprint(a.out, "\033[H\033[2J")
	return nil
}
