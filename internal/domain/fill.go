package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Fill executed simulated trade.
type Fill struct {
	// ID unique fill identifier.
	ID string `json:"id"`
	// Time wall-clock time of execution.
	Time time.Time `json:"time"`
	// Side buy or sell.
	Side Side `json:"side"`
	// Ticker traded instrument.
	Ticker Ticker `json:"ticker"`
	// Quantity number of shares.
	Quantity int64 `json:"quantity"`
	// Price unit price at which the trade executed.
	Price decimal.Decimal `json:"price"`
	// Amount price times quantity rounded to cents.
	Amount decimal.Decimal `json:"amount"`
	// RealizedPnL proceeds minus cost basis released, sells only.
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
}

// String returns a human-readable string representation.
func (f *Fill) String() string {
	return fmt.Sprintf("%s %s %d @ %s = %s", f.Ticker, f.Side, f.Quantity, f.Price.StringFixed(2), f.Amount.StringFixed(2))
}
