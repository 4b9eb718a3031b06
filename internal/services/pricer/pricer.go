// Package pricer provides price oracles: a deterministic synthetic generator and
// a remote pricer backed by exchange public APIs. Every oracle owns the price
// series of the tickers it was asked about.
package pricer

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tradecli/internal/domain"
)

// Oracle produces prices for tickers. Price never fails: decimal.Zero means
// the price is unavailable and must not be traded on.
type Oracle interface {
	Price(ctx context.Context, ticker domain.Ticker) decimal.Decimal
	Series(ticker domain.Ticker) (domain.PriceSeries, bool)
	Tickers() []domain.Ticker
}

// seriesBook stores per-ticker series in first-seen order.
type seriesBook struct {
	mu      sync.RWMutex
	limit   int
	series  map[domain.Ticker]*domain.PriceSeries
	tickers []domain.Ticker
}

func newSeriesBook(limit int) *seriesBook {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	return &seriesBook{
		limit:  limit,
		series: make(map[domain.Ticker]*domain.PriceSeries),
	}
}

// advance increments the tick of the ticker, creating its series lazily,
// and returns the new tick.
func (b *seriesBook) advance(ticker domain.Ticker) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.series[ticker]
	if !ok {
		s = &domain.PriceSeries{Ticker: ticker}
		b.series[ticker] = s
		b.tickers = append(b.tickers, ticker)
	}
	s.Tick++
	return s.Tick
}

func (b *seriesBook) record(ticker domain.Ticker, price decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.series[ticker]; ok {
		s.Record(price, b.limit)
	}
}

// Series returns a copy of the ticker's series.
func (b *seriesBook) Series(ticker domain.Ticker) (domain.PriceSeries, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s, ok := b.series[ticker]
	if !ok {
		return domain.PriceSeries{}, false
	}
	return s.Clone(), true
}

// Tickers returns every ticker priced so far, in first-seen order.
func (b *seriesBook) Tickers() []domain.Ticker {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]domain.Ticker, len(b.tickers))
	copy(out, b.tickers)
	return out
}
