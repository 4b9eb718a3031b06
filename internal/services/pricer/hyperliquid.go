package pricer

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	hyperliquid "github.com/sonirico/go-hyperliquid"
	"github.com/vadiminshakov/tradecli/internal/domain"
)

// HyperliquidSource fetches prices from Hyperliquid public Info API.
type HyperliquidSource struct {
	info *hyperliquid.Info
}

func NewHyperliquidSource(info *hyperliquid.Info) *HyperliquidSource {
	return &HyperliquidSource{info: info}
}

func (s *HyperliquidSource) Name() string { return "hyperliquid" }

func (s *HyperliquidSource) Quote(ctx context.Context, ticker domain.Ticker) (decimal.Decimal, error) {
	if s.info == nil {
		return decimal.Zero, fmt.Errorf("hyperliquid info client is nil")
	}

	mids, err := s.info.AllMids(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	// Hyperliquid mids are keyed by base coin (e.g., "BTC").
	mid, ok := mids[ticker.Base()]
	if !ok || mid == "" {
		return decimal.Zero, fmt.Errorf("hyperliquid API returned empty mid price for %s", ticker.Base())
	}
	return decimal.NewFromString(mid)
}
