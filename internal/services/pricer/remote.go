package pricer

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tradecli/internal/domain"
	"github.com/vadiminshakov/tradecli/pkg/retrier"
	"go.uber.org/zap"
)

const defaultFetchTimeout = 3 * time.Second

var errNonPositive = errors.New("non-positive price")

// QuoteSource fetches the latest traded price of a ticker from an external venue.
type QuoteSource interface {
	Name() string
	Quote(ctx context.Context, ticker domain.Ticker) (decimal.Decimal, error)
}

// RemotePricer adapts a QuoteSource to the Oracle contract: bounded timeout,
// retries with backoff, and failures mapped to the zero sentinel.
type RemotePricer struct {
	*seriesBook
	source  QuoteSource
	timeout time.Duration
	retrier *retrier.Retrier
	logger  *zap.Logger
}

// RemoteOption configures RemotePricer.
type RemoteOption func(*RemotePricer)

// WithTimeout bounds every fetch, retries included.
func WithTimeout(d time.Duration) RemoteOption {
	return func(p *RemotePricer) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithRetrier overrides the retry policy.
func WithRetrier(r *retrier.Retrier) RemoteOption {
	return func(p *RemotePricer) {
		if r != nil {
			p.retrier = r
		}
	}
}

// WithRetries sets how many times a failed fetch is retried.
func WithRetries(n int) RemoteOption {
	return func(p *RemotePricer) {
		if n >= 0 {
			p.retrier = newQuoteRetrier(n)
		}
	}
}

func newQuoteRetrier(maxRetries int) *retrier.Retrier {
	return retrier.New(retrier.WithMaxRetries(maxRetries), retrier.WithRetryIf(isTransient))
}

// NewRemotePricer creates a remote pricer.
func NewRemotePricer(source QuoteSource, historyLimit int, logger *zap.Logger, opts ...RemoteOption) (*RemotePricer, error) {
	if source == nil {
		return nil, errors.New("quote source is required for RemotePricer")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &RemotePricer{
		seriesBook: newSeriesBook(historyLimit),
		source:     source,
		timeout:    defaultFetchTimeout,
		retrier:    newQuoteRetrier(2),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Price fetches a quote. Every call advances the ticker's tick; only real
// prices are appended to its history.
func (p *RemotePricer) Price(ctx context.Context, ticker domain.Ticker) decimal.Decimal {
	p.advance(ticker)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	price, err := retrier.Fetch(ctx, p.retrier, func(ctx context.Context) (decimal.Decimal, error) {
		q, err := p.source.Quote(ctx, ticker)
		if err != nil {
			return decimal.Zero, err
		}
		if !q.IsPositive() {
			return decimal.Zero, errors.Wrapf(errNonPositive, "%s quoted %s", p.source.Name(), q.String())
		}
		return q, nil
	})
	if err != nil {
		p.logger.Warn("price unavailable",
			zap.String("source", p.source.Name()),
			zap.String("ticker", ticker.String()),
			zap.Error(err))
		return decimal.Zero
	}

	price = domain.Round2(price)
	p.record(ticker, price)
	return price
}

// isTransient reports whether a quote failure is worth retrying.
func isTransient(err error) bool {
	return !errors.Is(err, errNonPositive)
}
