package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAbsoluteAlert_Triggered(t *testing.T) {
	a := AbsoluteAlert{ID: 1, Ticker: "AAPL", Target: decimal.NewFromInt(50)}

	assert.False(t, a.Triggered(decimal.RequireFromString("49.99")))
	assert.True(t, a.Triggered(decimal.NewFromInt(50)))
	assert.True(t, a.Triggered(decimal.NewFromInt(80)))
	assert.Equal(t, AlertKindAbsolute, a.Kind())
}

func TestPercentAlert_Triggered(t *testing.T) {
	a := PercentAlert{ID: 2, Ticker: "AAPL", Base: decimal.NewFromInt(100), ThresholdPercent: decimal.NewFromInt(5)}

	tests := []struct {
		price    string
		expected bool
	}{
		{price: "105", expected: true},
		{price: "95", expected: true},
		{price: "104.9", expected: false},
		{price: "95.1", expected: false},
		{price: "130", expected: true},
		{price: "100", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			assert.Equal(t, tt.expected, a.Triggered(decimal.RequireFromString(tt.price)))
		})
	}
}

func TestNewFiredAlert(t *testing.T) {
	a := PercentAlert{ID: 7, Ticker: "TSLA", Base: decimal.NewFromInt(200), ThresholdPercent: decimal.NewFromInt(10)}
	fired := NewFiredAlert(a, decimal.NewFromInt(180))

	assert.Equal(t, uint64(7), fired.ID)
	assert.Equal(t, Ticker("TSLA"), fired.Ticker)
	assert.Equal(t, AlertKindPercent, fired.Kind)
	assert.True(t, decimal.NewFromInt(10).Equal(fired.TriggerValue))
	assert.Contains(t, fired.String(), "TSLA")
}
