package session

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/tradecli/internal/domain"
	"github.com/vadiminshakov/tradecli/internal/services/pricer"
	"go.uber.org/zap"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fixedOracle returns a settable price per ticker and counts queries.
type fixedOracle struct {
	mu     sync.Mutex
	prices map[domain.Ticker]decimal.Decimal
	calls  map[domain.Ticker]int
}

func newFixedOracle() *fixedOracle {
	return &fixedOracle{
		prices: make(map[domain.Ticker]decimal.Decimal),
		calls:  make(map[domain.Ticker]int),
	}
}

func (o *fixedOracle) set(t domain.Ticker, p string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prices[t] = d(p)
}

func (o *fixedOracle) Price(_ context.Context, t domain.Ticker) decimal.Decimal {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls[t]++
	return o.prices[t]
}

func (o *fixedOracle) Series(t domain.Ticker) (domain.PriceSeries, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	n, ok := o.calls[t]
	if !ok {
		return domain.PriceSeries{}, false
	}
	return domain.PriceSeries{Ticker: t, Tick: uint64(n), LastPrice: o.prices[t]}, true
}

func (o *fixedOracle) Tickers() []domain.Ticker {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]domain.Ticker, 0, len(o.calls))
	for t := range o.calls {
		out = append(out, t)
	}
	return out
}

type memJournal struct {
	fills []domain.Fill
	err   error
}

func (j *memJournal) Save(fill domain.Fill) error {
	if j.err != nil {
		return j.err
	}
	j.fills = append(j.fills, fill)
	return nil
}

func newSession(t *testing.T, oracle pricer.Oracle, opts ...Option) *Session {
	t.Helper()
	s, err := New(oracle, zap.NewNop(), opts...)
	require.NoError(t, err)
	return s
}

func TestNew_RequiresOracle(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)
}

func TestSession_QuoteAdvancesSyntheticClock(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, pricer.NewSyntheticPricer(pricer.DefaultWave(), 0))
	ref := pricer.NewSyntheticPricer(pricer.DefaultWave(), 0)

	for tick := uint64(1); tick <= 3; tick++ {
		q, err := s.Quote(ctx, " aapl ")
		require.NoError(t, err)
		assert.Equal(t, domain.Ticker("AAPL"), q.Ticker)
		assert.Equal(t, tick, q.Tick)
		assert.True(t, ref.At("AAPL", tick).Equal(q.Price))
	}

	history, err := s.History("AAPL")
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestSession_QuoteRejectsBadTicker(t *testing.T) {
	s := newSession(t, newFixedOracle())

	_, err := s.Quote(context.Background(), "   ")
	assert.True(t, errors.Is(err, domain.ErrInvalidTicker))
}

func TestSession_QuoteUnavailable(t *testing.T) {
	s := newSession(t, newFixedOracle())

	_, err := s.Quote(context.Background(), "AAPL")
	assert.True(t, errors.Is(err, domain.ErrPriceUnavailable))
}

func TestSession_BuySellRoundTrip(t *testing.T) {
	ctx := context.Background()
	oracle := newFixedOracle()
	journal := &memJournal{}
	s := newSession(t, oracle, WithJournal(journal))

	oracle.set("X", "100")
	buy, err := s.Buy(ctx, "x", 10)
	require.NoError(t, err)
	assert.Equal(t, domain.SideBuy, buy.Side)
	assert.True(t, d("1000").Equal(buy.Amount))

	oracle.set("X", "120")
	sell, err := s.Sell(ctx, "X", 5)
	require.NoError(t, err)
	assert.True(t, d("600").Equal(sell.Amount))
	assert.True(t, d("100").Equal(sell.RealizedPnL))

	positions := s.Positions()
	require.Contains(t, positions, domain.Ticker("X"))
	assert.Equal(t, int64(5), positions["X"].Quantity)
	assert.True(t, d("100").Equal(positions["X"].AverageCost))
	assert.True(t, d("100").Equal(s.Realized()))

	require.Len(t, journal.fills, 2)
	assert.Equal(t, buy.ID, journal.fills[0].ID)
	assert.Equal(t, sell.ID, journal.fills[1].ID)
}

func TestSession_TradeErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		prepare func(s *Session, o *fixedOracle)
		trade   func(s *Session) error
		wantErr error
		calls   int
	}{
		{
			name:    "zero quantity",
			trade:   func(s *Session) error { _, err := s.Buy(ctx, "X", 0); return err },
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name:    "negative sell quantity",
			trade:   func(s *Session) error { _, err := s.Sell(ctx, "X", -1); return err },
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name:    "sell without position",
			trade:   func(s *Session) error { _, err := s.Sell(ctx, "X", 1); return err },
			wantErr: domain.ErrInsufficientShares,
		},
		{
			name: "sell more than held",
			prepare: func(s *Session, o *fixedOracle) {
				o.set("X", "10")
				_, err := s.Buy(ctx, "X", 2)
				require.NoError(t, err)
			},
			trade:   func(s *Session) error { _, err := s.Sell(ctx, "X", 3); return err },
			wantErr: domain.ErrInsufficientShares,
			calls:   1,
		},
		{
			name:    "buy without price",
			trade:   func(s *Session) error { _, err := s.Buy(ctx, "X", 1); return err },
			wantErr: domain.ErrPriceUnavailable,
			calls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := newFixedOracle()
			s := newSession(t, oracle)
			if tt.prepare != nil {
				tt.prepare(s, oracle)
			}
			before := s.Positions()

			err := tt.trade(s)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, before, s.Positions())
			assert.Equal(t, tt.calls, oracle.calls["X"])
		})
	}
}

func TestSession_JournalFailureDoesNotFailTrade(t *testing.T) {
	oracle := newFixedOracle()
	oracle.set("X", "5")
	s := newSession(t, oracle, WithJournal(&memJournal{err: errors.New("disk full")}))

	_, err := s.Buy(context.Background(), "X", 1)
	require.NoError(t, err)
	assert.Len(t, s.Positions(), 1)
}

func TestSession_PortfolioPricesEachPositionOnce(t *testing.T) {
	ctx := context.Background()
	oracle := newFixedOracle()
	s := newSession(t, oracle)

	oracle.set("A", "10")
	oracle.set("B", "20")
	_, err := s.Buy(ctx, "A", 1)
	require.NoError(t, err)
	_, err = s.Buy(ctx, "B", 1)
	require.NoError(t, err)

	oracle.set("A", "15")
	report := s.Portfolio(ctx)

	assert.True(t, d("30").Equal(report.TotalInvested))
	assert.True(t, d("35").Equal(report.TotalValue))
	assert.True(t, d("5").Equal(report.OverallPnL))
	assert.Equal(t, 2, oracle.calls["A"])
	assert.Equal(t, 2, oracle.calls["B"])
}

func TestSession_Favourites(t *testing.T) {
	s := newSession(t, newFixedOracle())

	for _, raw := range []string{"tsla", "AAPL", "TSLA"} {
		_, err := s.AddFavourite(raw)
		require.NoError(t, err)
	}
	assert.Equal(t, []domain.Ticker{"AAPL", "TSLA"}, s.Favourites())

	removed, err := s.RemoveFavourite("aapl")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.RemoveFavourite("MSFT")
	require.NoError(t, err)
	assert.False(t, removed)

	assert.Equal(t, []domain.Ticker{"TSLA"}, s.Favourites())
}

func TestSession_EvaluateAlertsMemoizesPricePerPass(t *testing.T) {
	ctx := context.Background()
	oracle := newFixedOracle()
	s := newSession(t, oracle)

	_, err := s.AddAbsoluteAlert("X", d("50"))
	require.NoError(t, err)
	_, err = s.AddAbsoluteAlert("X", d("60"))
	require.NoError(t, err)

	oracle.set("X", "55")
	fired := s.EvaluateAlerts(ctx)
	require.Len(t, fired, 1)
	assert.True(t, d("50").Equal(fired[0].TriggerValue))
	assert.Equal(t, 1, oracle.calls["X"])

	assert.Len(t, s.Alerts(), 1)
}

func TestSession_EvaluateAlertsSkipsUnavailable(t *testing.T) {
	s := newSession(t, newFixedOracle())

	_, err := s.AddAbsoluteAlert("X", d("1"))
	require.NoError(t, err)

	assert.Empty(t, s.EvaluateAlerts(context.Background()))
	assert.Len(t, s.Alerts(), 1)
}

func TestSession_EvaluateAlertsWithoutAlertsDoesNotPrice(t *testing.T) {
	oracle := newFixedOracle()
	s := newSession(t, oracle)

	assert.Empty(t, s.EvaluateAlerts(context.Background()))
	assert.Empty(t, oracle.calls)
}

func TestSession_PercentAlertFromCurrentPrice(t *testing.T) {
	ctx := context.Background()
	oracle := newFixedOracle()
	s := newSession(t, oracle)

	oracle.set("X", "100")
	alert, err := s.AddPercentAlert(ctx, "X", decimal.Zero, d("5"))
	require.NoError(t, err)
	assert.True(t, d("100").Equal(alert.Base))

	oracle.set("X", "104.9")
	assert.Empty(t, s.EvaluateAlerts(ctx))

	oracle.set("X", "95")
	fired := s.EvaluateAlerts(ctx)
	require.Len(t, fired, 1)
	assert.Equal(t, alert.ID, fired[0].ID)
	assert.Equal(t, domain.AlertKindPercent, fired[0].Kind)
}

func TestSession_PercentAlertWithoutPrice(t *testing.T) {
	s := newSession(t, newFixedOracle())

	_, err := s.AddPercentAlert(context.Background(), "X", decimal.Zero, d("5"))
	assert.True(t, errors.Is(err, domain.ErrPriceUnavailable))
	assert.Empty(t, s.Alerts())
}

func TestSession_RemoveAlert(t *testing.T) {
	s := newSession(t, newFixedOracle())

	a, err := s.AddAbsoluteAlert("X", d("10"))
	require.NoError(t, err)

	assert.True(t, s.RemoveAlert(a.ID))
	assert.False(t, s.RemoveAlert(a.ID))
	assert.Empty(t, s.Alerts())
}

func TestSession_StateRestore(t *testing.T) {
	ctx := context.Background()
	oracle := newFixedOracle()
	src := newSession(t, oracle)

	oracle.set("X", "100")
	_, err := src.Buy(ctx, "X", 10)
	require.NoError(t, err)
	oracle.set("X", "110")
	_, err = src.Sell(ctx, "X", 4)
	require.NoError(t, err)
	_, err = src.AddFavourite("Y")
	require.NoError(t, err)

	state := src.State()

	dst := newSession(t, newFixedOracle())
	require.NoError(t, dst.Restore(state))

	restored := dst.Positions()
	require.Len(t, restored, 1)
	assert.Equal(t, int64(6), restored["X"].Quantity)
	assert.True(t, d("600").Equal(restored["X"].TotalCost))
	assert.True(t, d("100").Equal(restored["X"].AverageCost))
	assert.Equal(t, []domain.Ticker{"Y"}, dst.Favourites())
	assert.True(t, d("40").Equal(dst.Realized()))
}

func TestSession_RestoreRejectsEmptyPosition(t *testing.T) {
	s := newSession(t, newFixedOracle())

	err := s.Restore(domain.SessionState{
		Positions: domain.Snapshot{"X": {Ticker: "X", Quantity: 0}},
	})
	require.Error(t, err)
	assert.Empty(t, s.Positions())
}

func TestSession_ConcurrentTrades(t *testing.T) {
	ctx := context.Background()
	oracle := newFixedOracle()
	oracle.set("X", "1")
	s := newSession(t, oracle)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Buy(ctx, "X", 2)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	positions := s.Positions()
	assert.Equal(t, int64(100), positions["X"].Quantity)
	assert.True(t, d("100").Equal(positions["X"].TotalCost))
}
