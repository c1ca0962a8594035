package models

import "time"

// DailyDvol is one row per UTC calendar day per asset: the DVOL value from
// the chronologically last hourly snapshot of that day (last observation
// carried, not averaged).
type DailyDvol struct {
	Date      string // YYYY-MM-DD, UTC
	Timestamp time.Time
	Dvol      float64
}

// VovRecord is one day of the volatility-of-volatility series. LogReturn
// and Vov are nil where the series has no meaningful value: the first day,
// non-positive inputs, or a rolling window with too few valid returns.
// FVov defaults to 1.0 until the second pass fills it in from the
// full-sample mean.
type VovRecord struct {
	Date      string
	Timestamp time.Time
	DvolDaily float64
	LogReturn *float64
	Vov       *float64
	FVov      float64
}
