package domain

import "github.com/shopspring/decimal"

// SessionState persistable part of a session: open positions, favourites and
// realized profit. Price series and alerts are not persisted.
type SessionState struct {
	Positions  Snapshot
	Favourites []Ticker
	Realized   decimal.Decimal
}
