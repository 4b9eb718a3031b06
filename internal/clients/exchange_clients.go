// Package clients builds exchange API clients for reading public market data.
// No order endpoint is ever called, so no credentials are required.
package clients

import (
	"github.com/adshao/go-binance/v2"
	"github.com/hirokisan/bybit/v2"
)

// NewBinanceClient returns an unauthenticated Binance client.
func NewBinanceClient() *binance.Client {
	return binance.NewClient("", "")
}

// NewBybitClient returns an unauthenticated Bybit client.
func NewBybitClient() *bybit.Client {
	return bybit.NewClient()
}
