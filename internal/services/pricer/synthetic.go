package pricer

import (
	"context"
	"hash/crc32"
	"math"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tradecli/internal/domain"
)

const (
	DefaultBase      = 100.0
	DefaultAmplitude = 20.0
	DefaultFrequency = 0.1

	// phaseModulus keeps the phase inside [0, 2*pi) at millis resolution.
	phaseModulus = 6283
)

// Wave parameters of the synthetic generator.
type Wave struct {
	Base      float64
	Amplitude float64
	Frequency float64
}

// DefaultWave returns the stock 100 +/- 20 wave.
func DefaultWave() Wave {
	return Wave{Base: DefaultBase, Amplitude: DefaultAmplitude, Frequency: DefaultFrequency}
}

// SyntheticPricer generates base + amplitude*sin(frequency*tick + phase).
// Each call advances the ticker's clock, so it is the session's only clock.
type SyntheticPricer struct {
	*seriesBook
	wave Wave
}

// NewSyntheticPricer creates a synthetic pricer keeping historyLimit prices per ticker.
func NewSyntheticPricer(wave Wave, historyLimit int) *SyntheticPricer {
	return &SyntheticPricer{
		seriesBook: newSeriesBook(historyLimit),
		wave:       wave,
	}
}

// Price advances the ticker's tick and returns the new price.
func (p *SyntheticPricer) Price(_ context.Context, ticker domain.Ticker) decimal.Decimal {
	tick := p.advance(ticker)
	price := p.At(ticker, tick)
	p.record(ticker, price)
	return price
}

// At computes the price of ticker at tick without touching any state.
func (p *SyntheticPricer) At(ticker domain.Ticker, tick uint64) decimal.Decimal {
	raw := p.wave.Base + p.wave.Amplitude*math.Sin(p.wave.Frequency*float64(tick)+Phase(ticker))
	return domain.Round2(decimal.NewFromFloat(raw))
}

// Phase derives the wave phase from a CRC-32 checksum of the ticker, so every
// run and every implementation sees the same waveform for a ticker.
func Phase(ticker domain.Ticker) float64 {
	return float64(crc32.ChecksumIEEE([]byte(ticker))%phaseModulus) / 1000
}
