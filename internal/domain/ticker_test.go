package domain

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicker(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Ticker
		wantErr  bool
	}{
		{name: "lower case", input: "aapl", expected: "AAPL"},
		{name: "mixed case with spaces", input: "  TsLa ", expected: "TSLA"},
		{name: "pair", input: "btc/usd", expected: "BTC/USD"},
		{name: "empty", input: "   ", wantErr: true},
		{name: "inner whitespace", input: "BR K", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTicker(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTicker))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTicker_Symbol(t *testing.T) {
	assert.Equal(t, "BTCUSDT", Ticker("BTC").Symbol("usdt"))
	assert.Equal(t, "EURUSD", Ticker("EUR/USD").Symbol("USDT"))
	assert.Equal(t, "ETHUSDC", Ticker("ETH_USDC").Symbol("USDT"))
	assert.Equal(t, "BTC", Ticker("BTC/USD").Base())
	assert.Equal(t, "SOL", Ticker("SOL").Base())
}

func TestParseQuantity(t *testing.T) {
	qty, err := ParseQuantity("15")
	require.NoError(t, err)
	assert.Equal(t, int64(15), qty)

	for _, raw := range []string{"0", "-3", "1.5", "ten", ""} {
		_, err := ParseQuantity(raw)
		assert.True(t, errors.Is(err, ErrInvalidQuantity), "input %q", raw)
	}
}
