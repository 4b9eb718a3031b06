// Package ledger implements the long-only position ledger with average-cost
// accounting. There is no cash balance: buys are never constrained by capital.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tradecli/internal/domain"
)

// Ledger owns open positions keyed by ticker. It is not safe for concurrent
// use; the session serializes access.
type Ledger struct {
	positions map[domain.Ticker]*domain.Position
	realized  decimal.Decimal
	now       func() time.Time
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		positions: make(map[domain.Ticker]*domain.Position),
		realized:  decimal.Zero,
		now:       time.Now,
	}
}

// Buy adds quantity shares at unitPrice, folding the cost into the average.
func (l *Ledger) Buy(ticker domain.Ticker, quantity int64, unitPrice decimal.Decimal) (domain.Fill, error) {
	if err := validate(quantity, unitPrice); err != nil {
		return domain.Fill{}, errors.Wrapf(err, "buy %s", ticker)
	}

	cost := domain.Round2(unitPrice.Mul(decimal.NewFromInt(quantity)))
	if pos, ok := l.positions[ticker]; ok {
		pos.Quantity += quantity
		pos.TotalCost = pos.TotalCost.Add(cost)
	} else {
		l.positions[ticker] = &domain.Position{Quantity: quantity, TotalCost: cost}
	}

	return l.fill(domain.SideBuy, ticker, quantity, unitPrice, cost, decimal.Zero), nil
}

// Sell removes quantity shares at unitPrice. The cost basis shrinks
// proportionally, so the average cost of the remainder is unchanged.
func (l *Ledger) Sell(ticker domain.Ticker, quantity int64, unitPrice decimal.Decimal) (domain.Fill, error) {
	if err := validate(quantity, unitPrice); err != nil {
		return domain.Fill{}, errors.Wrapf(err, "sell %s", ticker)
	}

	pos, ok := l.positions[ticker]
	if !ok {
		return domain.Fill{}, errors.Wrapf(domain.ErrInsufficientShares, "no %s position", ticker)
	}
	if pos.Quantity < quantity {
		return domain.Fill{}, errors.Wrapf(domain.ErrInsufficientShares, "have %d %s, need %d", pos.Quantity, ticker, quantity)
	}

	qty := decimal.NewFromInt(quantity)
	released := pos.AverageCost().Mul(qty)
	proceeds := domain.Round2(unitPrice.Mul(qty))
	realized := domain.Round2(proceeds.Sub(released))

	pos.Quantity -= quantity
	pos.TotalCost = pos.TotalCost.Sub(released)
	if pos.Quantity == 0 {
		delete(l.positions, ticker)
	}
	l.realized = l.realized.Add(realized)

	return l.fill(domain.SideSell, ticker, quantity, unitPrice, proceeds, realized), nil
}

// Position returns a copy of the ticker's position.
func (l *Ledger) Position(ticker domain.Ticker) (domain.PositionView, bool) {
	pos, ok := l.positions[ticker]
	if !ok {
		return domain.PositionView{}, false
	}
	return pos.View(ticker), true
}

// Snapshot returns an immutable view of every open position.
func (l *Ledger) Snapshot() domain.Snapshot {
	out := make(domain.Snapshot, len(l.positions))
	for ticker, pos := range l.positions {
		out[ticker] = pos.View(ticker)
	}
	return out
}

// Restore replaces the ledger content with a previously saved snapshot.
// Cost bases are taken as-is; only the positive quantity invariant is checked.
// On error the ledger is left unchanged.
func (l *Ledger) Restore(snapshot domain.Snapshot, realized decimal.Decimal) error {
	positions := make(map[domain.Ticker]*domain.Position, len(snapshot))
	for ticker, view := range snapshot {
		if view.Quantity <= 0 {
			return errors.Wrapf(domain.ErrInvalidQuantity, "restore %s with quantity %d", ticker, view.Quantity)
		}
		positions[ticker] = &domain.Position{Quantity: view.Quantity, TotalCost: view.TotalCost}
	}

	l.positions = positions
	l.realized = realized
	return nil
}

// Realized cumulative realized profit of all sells.
func (l *Ledger) Realized() decimal.Decimal {
	return l.realized
}

// Len number of open positions.
func (l *Ledger) Len() int {
	return len(l.positions)
}

func (l *Ledger) fill(side domain.Side, ticker domain.Ticker, quantity int64, price, amount, realized decimal.Decimal) domain.Fill {
	return domain.Fill{
		ID:          uuid.NewString(),
		Time:        l.now(),
		Side:        side,
		Ticker:      ticker,
		Quantity:    quantity,
		Price:       price,
		Amount:      amount,
		RealizedPnL: realized,
	}
}

func validate(quantity int64, unitPrice decimal.Decimal) error {
	if quantity <= 0 {
		return errors.Wrapf(domain.ErrInvalidQuantity, "got %d", quantity)
	}
	if domain.IsUnavailable(unitPrice) {
		return domain.ErrPriceUnavailable
	}
	return nil
}
