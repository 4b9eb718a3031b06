package pricer

import (
	"context"
	"fmt"

	"github.com/hirokisan/bybit/v2"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tradecli/internal/domain"
)

type BybitSource struct {
	client *bybit.Client
	quote  string
}

func NewBybitSource(client *bybit.Client, quote string) *BybitSource {
	return &BybitSource{client: client, quote: quote}
}

func (s *BybitSource) Name() string { return "bybit" }

// Quote reads the last spot price. The bybit client has no context support,
// the caller's deadline is checked before the request is sent.
func (s *BybitSource) Quote(ctx context.Context, ticker domain.Ticker) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Decimal{}, err
	}
	symbol := bybit.SymbolV5(ticker.Symbol(s.quote))

	result, err := s.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: "spot",
		Symbol:   &symbol,
	})
	if err != nil {
		return decimal.Decimal{}, err
	}

	if len(result.Result.Spot.List) == 0 {
		return decimal.Decimal{}, fmt.Errorf("bybit API returned empty prices for %s", symbol)
	}

	return decimal.NewFromString(result.Result.Spot.List[0].LastPrice)
}
