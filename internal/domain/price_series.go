package domain

import "github.com/shopspring/decimal"

// DefaultHistoryLimit number of prices kept per ticker.
const DefaultHistoryLimit = 100

// PriceSeries price state of one ticker.
type PriceSeries struct {
	// Ticker instrument the series belongs to.
	Ticker Ticker
	// Tick number of queries made for the ticker so far.
	Tick uint64
	// LastPrice latest price rounded to cents, zero when never priced.
	LastPrice decimal.Decimal
	// History past prices in chronological order.
	History []decimal.Decimal
}

// Record appends a price, keeping at most limit entries.
func (s *PriceSeries) Record(price decimal.Decimal, limit int) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	s.LastPrice = price
	s.History = append(s.History, price)
	if over := len(s.History) - limit; over > 0 {
		// copy into a fresh slice so the dropped prefix can be collected
		trimmed := make([]decimal.Decimal, limit)
		copy(trimmed, s.History[over:])
		s.History = trimmed
	}
}

// Clone returns a deep copy safe to hand out to readers.
func (s PriceSeries) Clone() PriceSeries {
	out := s
	out.History = make([]decimal.Decimal, len(s.History))
	copy(out.History, s.History)
	return out
}

// TrendingUp reports whether the newest price is above the previous one.
func (s PriceSeries) TrendingUp() bool {
	n := len(s.History)
	return n >= 2 && s.History[n-1].GreaterThan(s.History[n-2])
}
