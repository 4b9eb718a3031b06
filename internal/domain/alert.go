package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// AlertKind discriminates the alert variants.
type AlertKind int

const (
	// AlertKindAbsolute fires when the price reaches a target from below.
	AlertKindAbsolute AlertKind = iota
	// AlertKindPercent fires when the price moves a percentage away from a base.
	AlertKindPercent
)

// String returns the string representation.
func (k AlertKind) String() string {
	switch k {
	case AlertKindAbsolute:
		return "absolute"
	case AlertKindPercent:
		return "percent"
	default:
		return "unknown"
	}
}

// Alert armed price alert. Implemented by AbsoluteAlert and PercentAlert only.
type Alert interface {
	AlertID() uint64
	AlertTicker() Ticker
	Kind() AlertKind
	// TriggerValue target price or threshold percent.
	TriggerValue() decimal.Decimal
	// Triggered reports whether the alert fires at the given price.
	Triggered(current decimal.Decimal) bool
	String() string
}

// AbsoluteAlert fires when current price >= Target.
type AbsoluteAlert struct {
	ID     uint64
	Ticker Ticker
	Target decimal.Decimal
}

func (a AbsoluteAlert) AlertID() uint64               { return a.ID }
func (a AbsoluteAlert) AlertTicker() Ticker           { return a.Ticker }
func (a AbsoluteAlert) Kind() AlertKind               { return AlertKindAbsolute }
func (a AbsoluteAlert) TriggerValue() decimal.Decimal { return a.Target }

// Triggered is one-directional: a price already above target fires immediately.
func (a AbsoluteAlert) Triggered(current decimal.Decimal) bool {
	return current.GreaterThanOrEqual(a.Target)
}

func (a AbsoluteAlert) String() string {
	return fmt.Sprintf("#%d %s >= %s", a.ID, a.Ticker, a.Target.StringFixed(2))
}

// PercentAlert fires when |current-Base|/Base*100 >= ThresholdPercent.
type PercentAlert struct {
	ID               uint64
	Ticker           Ticker
	Base             decimal.Decimal
	ThresholdPercent decimal.Decimal
}

func (a PercentAlert) AlertID() uint64               { return a.ID }
func (a PercentAlert) AlertTicker() Ticker           { return a.Ticker }
func (a PercentAlert) Kind() AlertKind               { return AlertKindPercent }
func (a PercentAlert) TriggerValue() decimal.Decimal { return a.ThresholdPercent }

// Move percentage distance of current from Base.
func (a PercentAlert) Move(current decimal.Decimal) decimal.Decimal {
	if a.Base.IsZero() {
		return decimal.Zero
	}
	return current.Sub(a.Base).Abs().Div(a.Base).Mul(hundred)
}

// Triggered is bidirectional.
func (a PercentAlert) Triggered(current decimal.Decimal) bool {
	return a.Move(current).GreaterThanOrEqual(a.ThresholdPercent)
}

func (a PercentAlert) String() string {
	return fmt.Sprintf("#%d %s moves %s%% from %s", a.ID, a.Ticker, a.ThresholdPercent.String(), a.Base.StringFixed(2))
}

// FiredAlert notification emitted once when an alert triggers.
type FiredAlert struct {
	ID             uint64
	Ticker         Ticker
	Kind           AlertKind
	TriggerValue   decimal.Decimal
	PriceAtTrigger decimal.Decimal
}

// NewFiredAlert builds the notification for a triggered alert.
func NewFiredAlert(a Alert, price decimal.Decimal) FiredAlert {
	return FiredAlert{
		ID:             a.AlertID(),
		Ticker:         a.AlertTicker(),
		Kind:           a.Kind(),
		TriggerValue:   a.TriggerValue(),
		PriceAtTrigger: price,
	}
}

// String returns a human-readable string representation.
func (f FiredAlert) String() string {
	switch f.Kind {
	case AlertKindPercent:
		return fmt.Sprintf("ALERT #%d: %s moved %s%% or more, now %s", f.ID, f.Ticker, f.TriggerValue.String(), f.PriceAtTrigger.StringFixed(2))
	default:
		return fmt.Sprintf("ALERT #%d: %s reached %s, now %s", f.ID, f.Ticker, f.TriggerValue.StringFixed(2), f.PriceAtTrigger.StringFixed(2))
	}
}
