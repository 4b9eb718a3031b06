// Package domain defines core data structures used throughout the simulator.
package domain

import (
	"strings"

	"github.com/pkg/errors"
)

// Ticker normalized (upper-cased) instrument symbol.
type Ticker string

// NewTicker normalizes raw user input into a Ticker.
func NewTicker(raw string) (Ticker, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t == "" {
		return "", errors.Wrap(ErrInvalidTicker, "ticker is empty")
	}
	if strings.ContainsAny(t, " \t\n") {
		return "", errors.Wrapf(ErrInvalidTicker, "ticker %q contains whitespace", raw)
	}

	return Ticker(t), nil
}

// String returns the string representation.
func (t Ticker) String() string {
	return string(t)
}

// Symbol returns the exchange symbol for the ticker quoted in the given currency.
// Pair-style tickers such as BTC/USD or BTC_USDT are split on the separator and
// the explicit quote wins over the default.
func (t Ticker) Symbol(quote string) string {
	s := string(t)
	for _, sep := range []string{"/", "_", "-"} {
		if i := strings.Index(s, sep); i > 0 {
			return s[:i] + s[i+1:]
		}
	}

	return s + strings.ToUpper(quote)
}

// Base returns the base asset of the ticker (BTC for BTC/USD).
func (t Ticker) Base() string {
	s := string(t)
	for _, sep := range []string{"/", "_", "-"} {
		if i := strings.Index(s, sep); i > 0 {
			return s[:i]
		}
	}

	return s
}
