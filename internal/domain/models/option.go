package models

import "time"

// OptionType identifies the exercise side of an option quote.
type OptionType string

const (
	Call OptionType = "C"
	Put  OptionType = "P"
)

// Valid reports whether the type is one of the two known sides.
func (t OptionType) Valid() bool { return t == Call || t == Put }

// MaxMarkIV is the upper bound of a plausible decimal implied volatility.
// Values above it arriving from collectors are percentage-quoted and get
// divided by 100 at ingest; values still above it afterwards are discarded.
const MaxMarkIV = 5.0

// OptionQuote is one immutable market observation of an option instrument
// at a snapshot hour. Quotes are never mutated downstream, only filtered
// and grouped.
type OptionQuote struct {
	Strike          float64
	Expiry          time.Time // normalized to the exchange daily cutoff hour
	Type            OptionType
	MarkIV          float64 // annualized implied vol, decimal (0.55 = 55%)
	MarkPrice       float64 // informational only
	UnderlyingPrice float64 // spot/index observation accompanying the quote
}

// HasValidIV reports whether the quote's mark IV lies in (0, MaxMarkIV].
func (q OptionQuote) HasValidIV() bool {
	return q.MarkIV > 0 && q.MarkIV <= MaxMarkIV
}

// NormalizeIV maps a raw collector IV to decimal form. Deribit quotes IV
// as a percentage (55.0); historical rows sometimes carry decimals (0.55).
// The 5.0 cutoff matches the downstream validity bound.
func NormalizeIV(raw float64) float64 {
	if raw > MaxMarkIV {
		return raw / 100.0
	}
	return raw
}

// IndexTick is one live observation of an underlying index level.
type IndexTick struct {
	Asset     string
	Timestamp time.Time
	Price     float64
}

// ExpirySlice groups every quote sharing one expiry at one snapshot hour.
// TimeToExpiry is the year fraction from the snapshot hour (not quote
// arrival time) to the expiry; Forward comes from the futures curve when
// tracked, else the spot price stands in as a zero-carry proxy.
type ExpirySlice struct {
	Expiry       time.Time
	TimeToExpiry float64
	Forward      float64
	Quotes       []OptionQuote
}
