// Package session composes the price oracle, position ledger and alert engine
// of one interactive run and exposes them to the command layer.
package session

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tradecli/internal/domain"
	"github.com/vadiminshakov/tradecli/internal/services/alerts"
	"github.com/vadiminshakov/tradecli/internal/services/ledger"
	"github.com/vadiminshakov/tradecli/internal/services/pricer"
	"github.com/vadiminshakov/tradecli/internal/services/screener"
	"github.com/vadiminshakov/tradecli/internal/services/valuator"
	"go.uber.org/zap"
)

type tradeJournal interface {
	Save(fill domain.Fill) error
}

// Quote price returned by Session.Quote.
type Quote struct {
	Ticker domain.Ticker
	Price  decimal.Decimal
	Tick   uint64
}

// Session exclusively owns the oracle, ledger, alert engine and favourites.
// Every operation holds one session-wide lock, so ledger read-modify-write
// sequences never interleave.
type Session struct {
	mu         sync.Mutex
	oracle     pricer.Oracle
	ledger     *ledger.Ledger
	alerts     *alerts.Engine
	favourites map[domain.Ticker]struct{}
	journal    tradeJournal
	logger     *zap.Logger
}

// Option configures Session.
type Option func(*Session)

// WithJournal records every fill in j. Journal failures are logged, never
// returned: the trade has already happened in memory.
func WithJournal(j tradeJournal) Option {
	return func(s *Session) {
		s.journal = j
	}
}

// New creates a session around oracle.
func New(oracle pricer.Oracle, logger *zap.Logger, opts ...Option) (*Session, error) {
	if oracle == nil {
		return nil, errors.New("price oracle is required for Session")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		oracle:     oracle,
		ledger:     ledger.New(),
		alerts:     alerts.NewEngine(logger),
		favourites: make(map[domain.Ticker]struct{}),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Quote advances the ticker's clock and returns the new price.
func (s *Session) Quote(ctx context.Context, raw string) (Quote, error) {
	ticker, err := domain.NewTicker(raw)
	if err != nil {
		return Quote{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	price := s.oracle.Price(ctx, ticker)
	if domain.IsUnavailable(price) {
		return Quote{Ticker: ticker}, errors.Wrapf(domain.ErrPriceUnavailable, "quote %s", ticker)
	}

	q := Quote{Ticker: ticker, Price: price}
	if series, ok := s.oracle.Series(ticker); ok {
		q.Tick = series.Tick
	}
	return q, nil
}

// Buy prices the ticker and adds quantity shares at that price.
func (s *Session) Buy(ctx context.Context, raw string, quantity int64) (domain.Fill, error) {
	return s.trade(ctx, domain.SideBuy, raw, quantity)
}

// Sell prices the ticker and sells quantity shares at that price.
func (s *Session) Sell(ctx context.Context, raw string, quantity int64) (domain.Fill, error) {
	return s.trade(ctx, domain.SideSell, raw, quantity)
}

func (s *Session) trade(ctx context.Context, side domain.Side, raw string, quantity int64) (domain.Fill, error) {
	ticker, err := domain.NewTicker(raw)
	if err != nil {
		return domain.Fill{}, err
	}
	if quantity <= 0 {
		return domain.Fill{}, errors.Wrapf(domain.ErrInvalidQuantity, "%s %s: got %d", side, ticker, quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// the holding check comes first so a doomed sell does not advance the clock
	if side == domain.SideSell {
		view, ok := s.ledger.Position(ticker)
		if !ok || view.Quantity < quantity {
			return domain.Fill{}, errors.Wrapf(domain.ErrInsufficientShares, "sell %d %s", quantity, ticker)
		}
	}

	price := s.oracle.Price(ctx, ticker)
	if domain.IsUnavailable(price) {
		return domain.Fill{}, errors.Wrapf(domain.ErrPriceUnavailable, "%s %s", side, ticker)
	}

	var fill domain.Fill
	if side == domain.SideBuy {
		fill, err = s.ledger.Buy(ticker, quantity, price)
	} else {
		fill, err = s.ledger.Sell(ticker, quantity, price)
	}
	if err != nil {
		return domain.Fill{}, err
	}

	s.logger.Info("simulated fill",
		zap.String("id", fill.ID),
		zap.String("side", side.String()),
		zap.String("ticker", ticker.String()),
		zap.Int64("quantity", quantity),
		zap.String("price", price.String()),
		zap.String("amount", fill.Amount.String()))

	if s.journal != nil {
		if err := s.journal.Save(fill); err != nil {
			s.logger.Warn("failed to journal fill", zap.String("id", fill.ID), zap.Error(err))
		}
	}

	return fill, nil
}

// Positions returns the ledger snapshot without pricing it.
func (s *Session) Positions() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.Snapshot()
}

// Portfolio values every open position at a fresh price. Each ticker's clock
// advances once.
func (s *Session) Portfolio(ctx context.Context) valuator.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	return valuator.Value(s.ledger.Snapshot(), s.lookup(ctx))
}

// Realized cumulative realized profit.
func (s *Session) Realized() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.Realized()
}

// History returns the stored prices of a ticker. It does not advance the clock.
func (s *Session) History(raw string) ([]decimal.Decimal, error) {
	ticker, err := domain.NewTicker(raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	series, ok := s.oracle.Series(ticker)
	if !ok {
		return nil, nil
	}
	return series.History, nil
}

// Screener lists tickers trending up in their stored history.
func (s *Session) Screener() []screener.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	return screener.Scan(s.oracle)
}

// AddFavourite marks a ticker as favourite.
func (s *Session) AddFavourite(raw string) (domain.Ticker, error) {
	ticker, err := domain.NewTicker(raw)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.favourites[ticker] = struct{}{}
	return ticker, nil
}

// RemoveFavourite unmarks a ticker, reporting whether it was a favourite.
func (s *Session) RemoveFavourite(raw string) (bool, error) {
	ticker, err := domain.NewTicker(raw)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.favourites[ticker]
	delete(s.favourites, ticker)
	return ok, nil
}

// Favourites returns favourite tickers in alphabetical order.
func (s *Session) Favourites() []domain.Ticker {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.favouritesLocked()
}

func (s *Session) favouritesLocked() []domain.Ticker {
	out := make([]domain.Ticker, 0, len(s.favourites))
	for t := range s.favourites {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AddAbsoluteAlert arms an alert firing when the ticker trades at or above target.
func (s *Session) AddAbsoluteAlert(raw string, target decimal.Decimal) (domain.AbsoluteAlert, error) {
	ticker, err := domain.NewTicker(raw)
	if err != nil {
		return domain.AbsoluteAlert{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.alerts.AddAbsolute(ticker, target)
}

// AddPercentAlert arms an alert firing when the ticker moves thresholdPercent
// away from base. A zero base means "from the current price", which costs a tick.
func (s *Session) AddPercentAlert(ctx context.Context, raw string, base, thresholdPercent decimal.Decimal) (domain.PercentAlert, error) {
	ticker, err := domain.NewTicker(raw)
	if err != nil {
		return domain.PercentAlert{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if base.IsZero() {
		base = s.oracle.Price(ctx, ticker)
		if domain.IsUnavailable(base) {
			return domain.PercentAlert{}, errors.Wrapf(domain.ErrPriceUnavailable, "base price for %s", ticker)
		}
	}

	return s.alerts.AddPercent(ticker, base, thresholdPercent)
}

// RemoveAlert disarms an alert.
func (s *Session) RemoveAlert(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.alerts.Remove(id)
}

// Alerts returns the armed alerts.
func (s *Session) Alerts() []domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.alerts.Pending()
}

// EvaluateAlerts runs one evaluation pass. The command layer calls it after
// every command; there is no background loop, so price excursions between
// commands are never seen. Within the pass each ticker is priced once.
func (s *Session) EvaluateAlerts(ctx context.Context) []domain.FiredAlert {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alerts.Len() == 0 {
		return nil
	}

	cache := make(map[domain.Ticker]decimal.Decimal)
	lookup := s.lookup(ctx)
	return s.alerts.Evaluate(func(t domain.Ticker) decimal.Decimal {
		if p, ok := cache[t]; ok {
			return p
		}
		p := lookup(t)
		cache[t] = p
		return p
	})
}

// State returns the persistable part of the session.
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.SessionState{
		Positions:  s.ledger.Snapshot(),
		Favourites: s.favouritesLocked(),
		Realized:   s.ledger.Realized(),
	}
}

// Restore replaces positions, favourites and realized profit with a saved
// state. Cost bases are trusted as saved.
func (s *Session) Restore(state domain.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.Restore(state.Positions, state.Realized); err != nil {
		return errors.Wrap(err, "restore ledger")
	}

	s.favourites = make(map[domain.Ticker]struct{}, len(state.Favourites))
	for _, t := range state.Favourites {
		s.favourites[t] = struct{}{}
	}

	s.logger.Info("session restored",
		zap.Int("positions", len(state.Positions)),
		zap.Int("favourites", len(state.Favourites)))
	return nil
}

func (s *Session) lookup(ctx context.Context) func(domain.Ticker) decimal.Decimal {
	return func(t domain.Ticker) decimal.Decimal {
		return s.oracle.Price(ctx, t)
	}
}
