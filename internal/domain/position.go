package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Position open holding of a single ticker tracked by the ledger.
type Position struct {
	// Quantity number of shares held, always greater than zero.
	Quantity int64
	// TotalCost cumulative cost basis kept at full precision.
	TotalCost decimal.Decimal
}

// AverageCost volume-weighted average entry price.
func (p *Position) AverageCost() decimal.Decimal {
	if p == nil || p.Quantity <= 0 {
		return decimal.Zero
	}

	return p.TotalCost.Div(decimal.NewFromInt(p.Quantity))
}

// View returns an immutable copy of the position.
func (p *Position) View(ticker Ticker) PositionView {
	return PositionView{
		Ticker:      ticker,
		Quantity:    p.Quantity,
		AverageCost: p.AverageCost(),
		TotalCost:   p.TotalCost,
	}
}

// PositionView read-only position data handed out of the ledger.
type PositionView struct {
	Ticker      Ticker
	Quantity    int64
	AverageCost decimal.Decimal
	TotalCost   decimal.Decimal
}

// PnL unrealized profit for the given market price, not rounded.
func (v PositionView) PnL(currentPrice decimal.Decimal) decimal.Decimal {
	return currentPrice.Sub(v.AverageCost).Mul(decimal.NewFromInt(v.Quantity))
}

// Snapshot ledger positions keyed by ticker.
type Snapshot map[Ticker]PositionView

// Tickers returns the snapshot tickers in alphabetical order.
func (s Snapshot) Tickers() []Ticker {
	out := make([]Ticker, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
