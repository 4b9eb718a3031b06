// Package indicators computes screener indicators (SMA, EMA, MACD, RSI) over
// a ticker's recorded price history.
package indicators

import (
	"fmt"
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// MACDMinPrices is the shortest history that yields a MACD and signal value:
// the slow EMA(26) plus the signal EMA(9) warm-up.
const MACDMinPrices = trend.DefaultMacdPeriod2 + trend.DefaultMacdPeriod3 - 1

// ErrUndefined is returned when the newest indicator value is not a finite
// number, e.g. RSI over a window with no price change at all.
var ErrUndefined = errors.New("indicator undefined for the latest prices")

// CalculateSMA calculates the Simple Moving Average for the given period.
func CalculateSMA(prices []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if period < 1 || len(prices) < period {
		return nil, fmt.Errorf("not enough prices: need %d, got %d", period, len(prices))
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	return toDecimals(helper.ChanToSlice(sma.Compute(helper.SliceToChan(toFloats(prices)))))
}

// CalculateEMA calculates the Exponential Moving Average for the given period.
func CalculateEMA(prices []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if period < 1 || len(prices) < period {
		return nil, fmt.Errorf("not enough prices: need %d, got %d", period, len(prices))
	}

	ema := trend.NewEmaWithPeriod[float64](period)
	return toDecimals(helper.ChanToSlice(ema.Compute(helper.SliceToChan(toFloats(prices)))))
}

// CalculateMACD calculates the MACD(12, 26) line and its EMA(9) signal line.
// Both slices have the same length and are aligned on the newest price.
func CalculateMACD(prices []decimal.Decimal) (macd, signal []decimal.Decimal, err error) {
	if len(prices) < MACDMinPrices {
		return nil, nil, fmt.Errorf("not enough prices for MACD: need %d, got %d", MACDMinPrices, len(prices))
	}

	macdChan, signalChan := trend.NewMacd[float64]().Compute(helper.SliceToChan(toFloats(prices)))

	// both outputs share one duplicated input, so they are drained together
	var signalFloats []float64
	done := make(chan struct{})
	go func() {
		defer close(done)
		signalFloats = helper.ChanToSlice(signalChan)
	}()
	macdFloats := helper.ChanToSlice(macdChan)
	<-done

	if macd, err = toDecimals(macdFloats); err != nil {
		return nil, nil, err
	}
	if signal, err = toDecimals(signalFloats); err != nil {
		return nil, nil, err
	}
	return macd, signal, nil
}

// CalculateRSI calculates the Relative Strength Index for the given period.
func CalculateRSI(prices []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if period < 1 || len(prices) < period+1 {
		return nil, fmt.Errorf("not enough prices for RSI: need %d, got %d", period+1, len(prices))
	}

	rsi := momentum.NewRsiWithPeriod[float64](period)
	return toDecimals(helper.ChanToSlice(rsi.Compute(helper.SliceToChan(toFloats(prices)))))
}

// Last returns the newest value of an indicator series.
func Last(values []decimal.Decimal) (decimal.Decimal, bool) {
	if len(values) == 0 {
		return decimal.Zero, false
	}
	return values[len(values)-1], true
}

func toFloats(prices []decimal.Decimal) []float64 {
	result := make([]float64, len(prices))
	for i, d := range prices {
		result[i], _ = d.Float64()
	}
	return result
}

// toDecimals converts indicator output, dropping warm-up NaN values. A
// non-finite newest value fails with ErrUndefined so callers never mistake an
// older value for the current one.
func toDecimals(floats []float64) ([]decimal.Decimal, error) {
	if n := len(floats); n > 0 && !finite(floats[n-1]) {
		return nil, ErrUndefined
	}

	result := make([]decimal.Decimal, 0, len(floats))
	for _, f := range floats {
		if finite(f) {
			result = append(result, decimal.NewFromFloat(f))
		}
	}
	return result, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
