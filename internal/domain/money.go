package domain

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Round2 rounds a currency amount to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// IsUnavailable reports whether a price is the unavailable sentinel.
// Negative prices are treated the same way, no source produces them.
func IsUnavailable(price decimal.Decimal) bool {
	return !price.IsPositive()
}

// ParseQuantity parses a user supplied share count.
func ParseQuantity(raw string) (int64, error) {
	qty, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidQuantity, "parse %q", raw)
	}
	if qty <= 0 {
		return 0, errors.Wrapf(ErrInvalidQuantity, "got %d", qty)
	}

	return qty, nil
}
