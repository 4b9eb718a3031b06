// Package screener scans price histories for upward trends.
package screener

import (
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tradecli/internal/domain"
	"github.com/vadiminshakov/tradecli/pkg/indicators"
)

const (
	smaPeriod = 5
	emaPeriod = 12
	rsiPeriod = 14
)

type seriesSource interface {
	Series(ticker domain.Ticker) (domain.PriceSeries, bool)
	Tickers() []domain.Ticker
}

// Result one trending ticker.
type Result struct {
	Ticker domain.Ticker
	Price  decimal.Decimal
	// indicators are set only when the history is long enough
	SMA        decimal.Decimal
	HasSMA     bool
	EMA        decimal.Decimal
	HasEMA     bool
	MACD       decimal.Decimal
	MACDSignal decimal.Decimal
	HasMACD    bool
	// HasRSI stays false when RSI is undefined for the newest prices.
	RSI    decimal.Decimal
	HasRSI bool
}

// Scan lists tickers whose newest price is above the previous one, in the
// order they were first priced. It reads stored histories only and never
// advances any clock.
func Scan(source seriesSource) []Result {
	var out []Result
	for _, ticker := range source.Tickers() {
		series, ok := source.Series(ticker)
		if !ok || !series.TrendingUp() {
			continue
		}

		out = append(out, enrich(Result{Ticker: ticker, Price: series.LastPrice}, series.History))
	}
	return out
}

func enrich(r Result, history []decimal.Decimal) Result {
	if sma, err := indicators.CalculateSMA(history, smaPeriod); err == nil {
		r.SMA, r.HasSMA = indicators.Last(sma)
		r.SMA = domain.Round2(r.SMA)
	}
	if ema, err := indicators.CalculateEMA(history, emaPeriod); err == nil {
		r.EMA, r.HasEMA = indicators.Last(ema)
		r.EMA = domain.Round2(r.EMA)
	}
	if macd, signal, err := indicators.CalculateMACD(history); err == nil {
		line, okLine := indicators.Last(macd)
		sig, okSig := indicators.Last(signal)
		r.MACD, r.MACDSignal, r.HasMACD = line.Round(2), sig.Round(2), okLine && okSig
	}
	if rsi, err := indicators.CalculateRSI(history, rsiPeriod); err == nil {
		r.RSI, r.HasRSI = indicators.Last(rsi)
		r.RSI = r.RSI.Round(1)
	}
	return r
}
