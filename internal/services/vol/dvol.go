package vol

import (
	"math"
	"sort"
	"time"

	"VolPull/internal/domain/models"
)

const (
	// TTarget is the 30-day constant maturity the index interpolates to.
	TTarget = 30.0 / 365.25
	// TMin and TMax bound usable expiries: anything shorter than 2 days
	// or longer than 90 is no input to a 30-day index.
	TMin = 2.0 / 365.25
	TMax = 90.0 / 365.25

	yearSeconds = 365.25 * 24 * 3600
)

// YearFraction returns the time from snapshot to expiry as a fraction of
// a Julian year, or (0, false) when the expiry is not after the snapshot.
func YearFraction(snapshot, expiry time.Time) (float64, bool) {
	delta := expiry.Sub(snapshot).Seconds()
	if delta <= 0 {
		return 0, false
	}
	return delta / yearSeconds, true
}

// DvolAtHour computes the 30-day constant-maturity volatility for one
// snapshot hour. Quotes span all expiries; forwards optionally maps an
// expiry to its futures-implied forward price, with spot as the proxy for
// expiries it does not cover.
//
// ok is false when no estimate is possible: empty input, non-positive
// spot, fewer than two expiries inside the [2d, 90d] window, a failed
// variance estimate on either bracketing expiry, or a non-positive
// interpolated variance.
func DvolAtHour(quotes []models.OptionQuote, snapshotHour time.Time, spot float64, forwards map[time.Time]float64) (models.DvolResult, bool) {
	if len(quotes) == 0 || spot <= 0 {
		return models.DvolResult{}, false
	}

	byExpiry := make(map[time.Time][]models.OptionQuote)
	for _, q := range quotes {
		if q.Expiry.IsZero() {
			continue
		}
		byExpiry[q.Expiry] = append(byExpiry[q.Expiry], q)
	}

	slices := make([]models.ExpirySlice, 0, len(byExpiry))
	for expiry, opts := range byExpiry {
		t, ok := YearFraction(snapshotHour, expiry)
		if !ok || t < TMin || t > TMax {
			continue
		}
		fwd := spot
		if f, ok := forwards[expiry]; ok {
			fwd = f
		}
		slices = append(slices, models.ExpirySlice{
			Expiry:       expiry,
			TimeToExpiry: t,
			Forward:      fwd,
			Quotes:       opts,
		})
	}

	if len(slices) < 2 {
		return models.DvolResult{}, false
	}

	sort.Slice(slices, func(i, j int) bool { return slices[i].TimeToExpiry < slices[j].TimeToExpiry })

	// Adjacent pair bracketing the target maturity; when the target falls
	// outside the grid, the two expiries on the nearest edge stand in.
	var near, far *models.ExpirySlice
	for i := 0; i < len(slices)-1; i++ {
		if slices[i].TimeToExpiry <= TTarget && TTarget <= slices[i+1].TimeToExpiry {
			near = &slices[i]
			far = &slices[i+1]
			break
		}
	}
	if near == nil || far == nil {
		switch {
		case TTarget <= slices[0].TimeToExpiry:
			near = &slices[0]
			far = &slices[1]
		case TTarget >= slices[len(slices)-1].TimeToExpiry:
			near = &slices[len(slices)-2]
			far = &slices[len(slices)-1]
		default:
			return models.DvolResult{}, false
		}
	}

	varNear, okNear := ExpiryVariance(near.Quotes, near.TimeToExpiry, near.Forward, 0)
	varFar, okFar := ExpiryVariance(far.Quotes, far.TimeToExpiry, far.Forward, 0)
	if !okNear || !okFar {
		return models.DvolResult{}, false
	}

	// De-annualize, interpolate total variance at the target, re-annualize.
	// The weight is clamped so a bracket fallback degrades to an endpoint
	// instead of extrapolating.
	t1 := near.TimeToExpiry
	t2 := far.TimeToExpiry
	var var30 float64
	if math.Abs(t2-t1) < 1e-10 {
		var30 = varNear.Variance
	} else {
		total1 := varNear.Variance * t1
		total2 := varFar.Variance * t2
		w := (TTarget - t1) / (t2 - t1)
		w = math.Max(0.0, math.Min(1.0, w))
		var30 = (total1 + w*(total2-total1)) / TTarget
	}

	if var30 <= 0 {
		return models.DvolResult{}, false
	}

	return models.DvolResult{
		Dvol:         math.Sqrt(var30),
		Quality:      gradeQuality(varNear.StrikeCount, varFar.StrikeCount),
		NearExpiry:   near.Expiry,
		FarExpiry:    far.Expiry,
		NNearStrikes: varNear.StrikeCount,
		NFarStrikes:  varFar.StrikeCount,
	}, true
}

func gradeQuality(nNear, nFar int) models.Quality {
	switch {
	case nNear >= 5 && nFar >= 5:
		return models.QualityHigh
	case nNear >= 3 && nFar >= 3:
		return models.QualityMedium
	default:
		return models.QualityLow
	}
}
