package models

import "time"

// Quality grades how well-populated the strike grids behind a DVOL value
// were. High needs at least five strikes on each side of both bracketing
// expiries, medium at least three.
type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// VarianceResult is the per-expiry estimator output. StrikeCount is the
// minimum of the OTM put and OTM call counts actually used, the limiting
// factor for quality, and is populated even when the estimate failed so
// callers can report why.
type VarianceResult struct {
	Variance    float64
	StrikeCount int
}

// DvolResult is the 30-day constant-maturity volatility for one snapshot
// hour, with the bracketing expiries and their strike counts kept for
// auditability.
type DvolResult struct {
	Dvol         float64 // annualized vol, decimal
	Quality      Quality
	NearExpiry   time.Time
	FarExpiry    time.Time
	NNearStrikes int
	NFarStrikes  int
}

// HourlyDvol keys a DvolResult by asset and snapshot hour for persistence
// and transport.
type HourlyDvol struct {
	Asset        string    `json:"asset"`
	SnapshotHour time.Time `json:"snapshot_hour"`
	Dvol         float64   `json:"dvol"`
	Quality      Quality   `json:"quality"`
	NearExpiry   time.Time `json:"near_expiry"`
	FarExpiry    time.Time `json:"far_expiry"`
	NNearStrikes int       `json:"n_near_strikes"`
	NFarStrikes  int       `json:"n_far_strikes"`
}

// DvolPoint is one (timestamp, dvol) observation of an hourly series.
type DvolPoint struct {
	Timestamp time.Time
	Dvol      float64
}
