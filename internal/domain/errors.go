package domain

import "github.com/pkg/errors"

var (
	// ErrInvalidQuantity non-positive or non-integer quantity supplied to buy/sell.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrInsufficientShares sell exceeds the held quantity or the ticker is not held.
	ErrInsufficientShares = errors.New("insufficient shares to sell")
	// ErrPriceUnavailable price source returned the unavailable sentinel.
	ErrPriceUnavailable = errors.New("price unavailable")
	// ErrInvalidTicker empty or malformed ticker.
	ErrInvalidTicker = errors.New("invalid ticker")
	// ErrInvalidAlert alert parameters are not usable (non-positive target, base or threshold).
	ErrInvalidAlert = errors.New("invalid alert")
)

// ErrUnknownSide fill side could not be decoded.
var ErrUnknownSide = errors.New("unknown fill side")
