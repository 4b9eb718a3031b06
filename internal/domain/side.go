package domain

// Side direction of a fill.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

// side string constants to avoid magic strings
const (
	sideStringBuy  = "buy"
	sideStringSell = "sell"
)

// String returns the string representation of the side
func (s Side) String() string {
	switch s {
	case SideBuy:
		return sideStringBuy
	case SideSell:
		return sideStringSell
	default:
		return "unknown"
	}
}

// MarshalText encodes the side as its string form.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a side written by MarshalText.
func (s *Side) UnmarshalText(text []byte) error {
	switch string(text) {
	case sideStringBuy:
		*s = SideBuy
	case sideStringSell:
		*s = SideSell
	default:
		return ErrUnknownSide
	}
	return nil
}
