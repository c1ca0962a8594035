package vol

import (
	"math"
	"sort"

	"VolPull/internal/domain/models"
	"VolPull/pkg/util"
)

const (
	// DefaultVovWindow is the rolling window for the VoV std, in days.
	DefaultVovWindow = 30
	// minValidReturns is how many non-nil log returns a window must hold
	// before its std means anything.
	minValidReturns = 20
	// DefaultFVovAlpha is the f_VoV scaling exponent.
	DefaultFVovAlpha = 0.75
	// fVovCap bounds the scaling factor from above.
	fVovCap = 2.0
)

// ResampleDaily collapses an hourly DVOL series to one value per UTC
// calendar day, keeping the chronologically last positive observation.
// Output is sorted ascending by date.
func ResampleDaily(hourly []models.DvolPoint) []models.DailyDvol {
	byDay := make(map[string]models.DailyDvol)
	for _, p := range hourly {
		if p.Dvol <= 0 {
			continue
		}
		key := util.DayKey(p.Timestamp)
		if prev, ok := byDay[key]; !ok || p.Timestamp.After(prev.Timestamp) {
			byDay[key] = models.DailyDvol{Date: key, Timestamp: p.Timestamp, Dvol: p.Dvol}
		}
	}

	out := make([]models.DailyDvol, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// VovSeries computes the volatility-of-volatility series from a sorted
// daily DVOL series: the annualized rolling standard deviation of daily
// log-returns of DVOL over a trailing window.
//
// Days before the window fills never receive a VoV value. A window with
// fewer than 20 valid returns leaves VoV nil and f_VoV at its 1.0
// default. The f_VoV field is only meaningful after AddFVov runs over the
// complete series.
func VovSeries(daily []models.DailyDvol, window int) []models.VovRecord {
	if len(daily) < 2 {
		return nil
	}
	if window <= 0 {
		window = DefaultVovWindow
	}

	records := make([]models.VovRecord, len(daily))
	for i, d := range daily {
		records[i] = models.VovRecord{
			Date:      d.Date,
			Timestamp: d.Timestamp,
			DvolDaily: d.Dvol,
			FVov:      1.0,
		}
		if i > 0 {
			prev := daily[i-1].Dvol
			if prev > 0 && d.Dvol > 0 {
				lr := math.Log(d.Dvol / prev)
				records[i].LogReturn = &lr
			}
		}
	}

	for i := range records {
		if i < window {
			continue
		}

		returns := make([]float64, 0, window)
		for j := i - window + 1; j <= i; j++ {
			if records[j].LogReturn != nil {
				returns = append(returns, *records[j].LogReturn)
			}
		}
		if len(returns) < minValidReturns {
			continue
		}

		// Bessel-corrected sample std, annualized by sqrt(365).
		mean := 0.0
		for _, r := range returns {
			mean += r
		}
		mean /= float64(len(returns))
		variance := 0.0
		for _, r := range returns {
			d := r - mean
			variance += d * d
		}
		variance /= float64(len(returns) - 1)

		std := 0.0
		if variance > 0 {
			std = math.Sqrt(variance)
		}
		v := std * math.Sqrt(365.0)
		records[i].Vov = &v
	}

	return records
}

// VovBar is the full-sample arithmetic mean of the non-nil VoV values,
// or 1.0 when none exist.
func VovBar(records []models.VovRecord) float64 {
	sum, n := 0.0, 0
	for _, r := range records {
		if r.Vov != nil && !math.IsNaN(*r.Vov) {
			sum += *r.Vov
			n++
		}
	}
	if n == 0 {
		return 1.0
	}
	return sum / float64(n)
}

// FVov maps a VoV value to its bounded scaling factor relative to the
// long-run mean: min((vov/vovBar)^alpha, 2.0), defaulting to 1.0 when
// the value is missing or the mean is degenerate.
func FVov(vovT *float64, vovBar, alpha float64) float64 {
	if vovT == nil || vovBar <= 0 {
		return 1.0
	}
	return math.Min(math.Pow(*vovT/vovBar, alpha), fVovCap)
}

// AddFVov fills in f_VoV across a complete VoV series. The mean it scales
// against needs the whole series, so this is necessarily a second pass
// over materialized records.
func AddFVov(records []models.VovRecord, alpha float64) []models.VovRecord {
	bar := VovBar(records)
	for i := range records {
		records[i].FVov = FVov(records[i].Vov, bar, alpha)
	}
	return records
}
