// Package alerts holds armed price alerts and evaluates them against a price
// lookup. An alert lives Armed until it fires; firing removes it in the same
// pass, so it is reported exactly once.
package alerts

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tradecli/internal/domain"
	"go.uber.org/zap"
)

// PriceLookup returns the current price of a ticker, decimal.Zero when unavailable.
type PriceLookup func(domain.Ticker) decimal.Decimal

// Engine pending alert set in creation order. Not safe for concurrent use.
type Engine struct {
	pending []domain.Alert
	nextID  uint64
	logger  *zap.Logger
}

// NewEngine creates an empty alert engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{nextID: 1, logger: logger}
}

// AddAbsolute arms an alert firing once the price is at or above target.
func (e *Engine) AddAbsolute(ticker domain.Ticker, target decimal.Decimal) (domain.AbsoluteAlert, error) {
	if !target.IsPositive() {
		return domain.AbsoluteAlert{}, errors.Wrapf(domain.ErrInvalidAlert, "target must be positive, got %s", target)
	}

	a := domain.AbsoluteAlert{ID: e.id(), Ticker: ticker, Target: target}
	e.pending = append(e.pending, a)
	return a, nil
}

// AddPercent arms an alert firing once the price moves thresholdPercent away
// from base in either direction.
func (e *Engine) AddPercent(ticker domain.Ticker, base, thresholdPercent decimal.Decimal) (domain.PercentAlert, error) {
	if !base.IsPositive() {
		return domain.PercentAlert{}, errors.Wrapf(domain.ErrInvalidAlert, "base price must be positive, got %s", base)
	}
	if !thresholdPercent.IsPositive() {
		return domain.PercentAlert{}, errors.Wrapf(domain.ErrInvalidAlert, "threshold must be positive, got %s", thresholdPercent)
	}

	a := domain.PercentAlert{ID: e.id(), Ticker: ticker, Base: base, ThresholdPercent: thresholdPercent}
	e.pending = append(e.pending, a)
	return a, nil
}

// Evaluate checks every armed alert once. Fired alerts are removed and
// returned in creation order; alerts whose price is unavailable stay armed.
func (e *Engine) Evaluate(lookup PriceLookup) []domain.FiredAlert {
	if len(e.pending) == 0 {
		return nil
	}

	var fired []domain.FiredAlert
	kept := e.pending[:0]
	for _, a := range e.pending {
		price := lookup(a.AlertTicker())
		if domain.IsUnavailable(price) {
			e.logger.Debug("alert skipped, price unavailable",
				zap.Uint64("id", a.AlertID()),
				zap.String("ticker", a.AlertTicker().String()))
			kept = append(kept, a)
			continue
		}
		if !a.Triggered(price) {
			kept = append(kept, a)
			continue
		}

		fired = append(fired, domain.NewFiredAlert(a, price))
		e.logger.Info("alert fired",
			zap.Uint64("id", a.AlertID()),
			zap.String("ticker", a.AlertTicker().String()),
			zap.String("kind", a.Kind().String()),
			zap.String("price", price.String()))
	}

	// clear the tail so dropped alerts are not retained by the backing array
	for i := len(kept); i < len(e.pending); i++ {
		e.pending[i] = nil
	}
	e.pending = kept

	return fired
}

// Pending returns the armed alerts in creation order.
func (e *Engine) Pending() []domain.Alert {
	out := make([]domain.Alert, len(e.pending))
	copy(out, e.pending)
	return out
}

// Remove disarms an alert by ID.
func (e *Engine) Remove(id uint64) bool {
	for i, a := range e.pending {
		if a.AlertID() == id {
			e.pending = append(e.pending[:i], e.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Len number of armed alerts.
func (e *Engine) Len() int {
	return len(e.pending)
}

func (e *Engine) id() uint64 {
	id := e.nextID
	e.nextID++
	return id
}
