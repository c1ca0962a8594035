package models

// IndexPoint is one daily close of an externally published volatility
// index used as ground truth for validation.
type IndexPoint struct {
	Date  string // YYYY-MM-DD, UTC
	Close float64
}

// ValidationReport compares the reconstructed daily DVOL series against
// the official index over their common days. Pass is advisory: a failed
// validation is a data-quality signal for review, not an abort condition.
type ValidationReport struct {
	Asset       string  `json:"asset"`
	Days        int     `json:"days"`
	Correlation float64 `json:"correlation"`
	MAE         float64 `json:"mae"`
	RMSE        float64 `json:"rmse"`
	Pass        bool    `json:"pass"`
}
