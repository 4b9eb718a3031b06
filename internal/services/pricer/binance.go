package pricer

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tradecli/internal/domain"
)

// BinanceSource fetches real market prices from Binance public API
// without requiring authentication
type BinanceSource struct {
	client *binance.Client
	quote  string
}

// NewBinanceSource creates a quote source that prices tickers against the quote currency.
func NewBinanceSource(client *binance.Client, quote string) *BinanceSource {
	return &BinanceSource{client: client, quote: quote}
}

func (s *BinanceSource) Name() string { return "binance" }

// Quote fetches the current market price from Binance public API
func (s *BinanceSource) Quote(ctx context.Context, ticker domain.Ticker) (decimal.Decimal, error) {
	symbol := ticker.Symbol(s.quote)
	prices, err := s.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(prices) == 0 {
		return decimal.Decimal{}, fmt.Errorf("binance API returned empty prices for %s", symbol)
	}

	return decimal.NewFromString(prices[0].Price)
}
