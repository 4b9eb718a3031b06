// Package valuator computes portfolio P&L, market value and diversification
// from a ledger snapshot and a price lookup. It owns no state. When the lookup
// is backed by a stateful oracle, each valuation pass advances that oracle's
// clock once per ticker.
package valuator

import (
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tradecli/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// PriceLookup returns the current price of a ticker, decimal.Zero when unavailable.
type PriceLookup func(domain.Ticker) decimal.Decimal

// Line valuation of a single position.
type Line struct {
	Ticker        domain.Ticker
	Quantity      int64
	AverageCost   decimal.Decimal
	TotalCost     decimal.Decimal
	CurrentPrice  decimal.Decimal
	MarketValue   decimal.Decimal
	UnrealizedPnL decimal.Decimal
	// Unavailable the price lookup returned the sentinel; the line is left
	// out of every total.
	Unavailable bool
}

// Report valuation of a whole snapshot.
type Report struct {
	Lines           []Line
	TotalInvested   decimal.Decimal
	TotalValue      decimal.Decimal
	OverallPnL      decimal.Decimal
	TotalUnrealized decimal.Decimal
	Unpriced        []domain.Ticker
}

// UnrealizedPnL (price - average cost) * quantity, rounded to cents.
func UnrealizedPnL(view domain.PositionView, price decimal.Decimal) decimal.Decimal {
	return domain.Round2(view.PnL(price))
}

// MarketValue price * quantity.
func MarketValue(view domain.PositionView, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(view.Quantity))
}

// Value prices every position exactly once, in ticker order.
func Value(snapshot domain.Snapshot, lookup PriceLookup) Report {
	report := Report{
		Lines:           make([]Line, 0, len(snapshot)),
		TotalInvested:   decimal.Zero,
		TotalValue:      decimal.Zero,
		OverallPnL:      decimal.Zero,
		TotalUnrealized: decimal.Zero,
	}

	for _, ticker := range snapshot.Tickers() {
		view := snapshot[ticker]
		price := lookup(ticker)
		line := Line{
			Ticker:       ticker,
			Quantity:     view.Quantity,
			AverageCost:  view.AverageCost,
			TotalCost:    view.TotalCost,
			CurrentPrice: price,
		}

		if domain.IsUnavailable(price) {
			line.Unavailable = true
			report.Unpriced = append(report.Unpriced, ticker)
			report.Lines = append(report.Lines, line)
			continue
		}

		line.MarketValue = MarketValue(view, price)
		line.UnrealizedPnL = UnrealizedPnL(view, price)

		report.TotalInvested = report.TotalInvested.Add(view.TotalCost)
		report.TotalValue = report.TotalValue.Add(line.MarketValue)
		report.TotalUnrealized = report.TotalUnrealized.Add(line.UnrealizedPnL)
		report.Lines = append(report.Lines, line)
	}

	report.OverallPnL = report.TotalValue.Sub(report.TotalInvested)
	return report
}

// Diversification share of each priced position in the total market value,
// in percent. Every share is zero when the total value is zero.
func Diversification(report Report) map[domain.Ticker]decimal.Decimal {
	out := make(map[domain.Ticker]decimal.Decimal, len(report.Lines))
	for _, line := range report.Lines {
		if line.Unavailable || !report.TotalValue.IsPositive() {
			out[line.Ticker] = decimal.Zero
			continue
		}
		out[line.Ticker] = line.MarketValue.Div(report.TotalValue).Mul(hundred)
	}
	return out
}
