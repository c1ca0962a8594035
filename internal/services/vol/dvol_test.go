package vol

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"VolPull/internal/domain/models"
)

var snapHour = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func expiryAfterYears(t float64) time.Time {
	return snapHour.Add(time.Duration(t * yearSeconds * float64(time.Second)))
}

// expiryChain stamps a flat-IV quote grid with the given expiry.
func expiryChain(expiry time.Time, putStrikes, callStrikes []float64, iv float64) []models.OptionQuote {
	quotes := chainQuotes(putStrikes, callStrikes, iv)
	for i := range quotes {
		quotes[i].Expiry = expiry
	}
	return quotes
}

func flatSnapshot(ivNear, ivFar float64) []models.OptionQuote {
	near := expiryChain(expiryAfterYears(0.05), seqStrikes(55, 100, 5), seqStrikes(105, 150, 5), ivNear)
	far := expiryChain(expiryAfterYears(0.10), seqStrikes(55, 100, 5), seqStrikes(105, 150, 5), ivFar)
	return append(near, far...)
}

func TestDvolAtHourFlatSurface(t *testing.T) {
	res, ok := DvolAtHour(flatSnapshot(0.6, 0.6), snapHour, 100, nil)
	require.True(t, ok)
	require.InDelta(t, 0.6, res.Dvol, 0.6*0.02, "flat 60%% surface should give DVOL near 60%%")
	require.Equal(t, models.QualityHigh, res.Quality)
	require.Equal(t, 9, res.NNearStrikes)
	require.Equal(t, 9, res.NFarStrikes)
	require.True(t, res.NearExpiry.Before(res.FarExpiry))
}

func TestDvolAtHourRejectsEmptyAndBadSpot(t *testing.T) {
	if _, ok := DvolAtHour(nil, snapHour, 100, nil); ok {
		t.Fatal("empty quotes should fail")
	}
	if _, ok := DvolAtHour(flatSnapshot(0.6, 0.6), snapHour, 0, nil); ok {
		t.Fatal("zero spot should fail")
	}
}

func TestDvolAtHourExpiryWindowFilter(t *testing.T) {
	// One expiry at 1 day (below the floor), one at 120 days (above the
	// cap), one valid: only one survivor, so no bracket.
	quotes := expiryChain(expiryAfterYears(1.0/365.25), seqStrikes(55, 100, 5), seqStrikes(105, 150, 5), 0.6)
	quotes = append(quotes, expiryChain(expiryAfterYears(120.0/365.25), seqStrikes(55, 100, 5), seqStrikes(105, 150, 5), 0.6)...)
	quotes = append(quotes, expiryChain(expiryAfterYears(0.08), seqStrikes(55, 100, 5), seqStrikes(105, 150, 5), 0.6)...)

	if _, ok := DvolAtHour(quotes, snapHour, 100, nil); ok {
		t.Fatal("fewer than 2 in-window expiries should fail")
	}
}

func TestDvolAtHourQuotesWithoutExpiryDropped(t *testing.T) {
	quotes := flatSnapshot(0.6, 0.6)
	quotes = append(quotes, models.OptionQuote{Strike: 100, Type: models.Call, MarkIV: 0.6})
	res, ok := DvolAtHour(quotes, snapHour, 100, nil)
	require.True(t, ok)
	require.InDelta(t, 0.6, res.Dvol, 0.6*0.02)
}

func TestDvolAtHourDegenerateBracket(t *testing.T) {
	// Two expiries a millisecond apart: interpolation must short-circuit
	// to the near variance rather than divide by ~zero.
	e1 := expiryAfterYears(0.05)
	e2 := e1.Add(time.Millisecond)
	quotes := expiryChain(e1, seqStrikes(55, 100, 5), seqStrikes(105, 150, 5), 0.6)
	quotes = append(quotes, expiryChain(e2, seqStrikes(55, 100, 5), seqStrikes(105, 150, 5), 0.6)...)

	res, ok := DvolAtHour(quotes, snapHour, 100, nil)
	require.True(t, ok)

	tNear, _ := YearFraction(snapHour, e1)
	nearVar, okVar := ExpiryVariance(quotes[:20], tNear, 100, 0)
	require.True(t, okVar)
	require.Equal(t, math.Sqrt(nearVar.Variance), res.Dvol)
}

func TestDvolAtHourBracketFallbackBelow(t *testing.T) {
	// Both expiries beyond the 30-day target: nearest pair is used and
	// the clamped weight pins interpolation to the near endpoint.
	quotes := expiryChain(expiryAfterYears(0.12), seqStrikes(55, 100, 5), seqStrikes(105, 150, 5), 0.5)
	quotes = append(quotes, expiryChain(expiryAfterYears(0.2), seqStrikes(55, 100, 5), seqStrikes(105, 150, 5), 0.9)...)

	res, ok := DvolAtHour(quotes, snapHour, 100, nil)
	require.True(t, ok)
	// Weight clamps to 0: total variance pins to the near endpoint and is
	// re-annualized at the target maturity; the far (90%) surface must
	// not leak in.
	expected := 0.5 * math.Sqrt(0.12/TTarget)
	require.InDelta(t, expected, res.Dvol, expected*0.02)
}

func TestDvolAtHourForwardLookup(t *testing.T) {
	eNear := expiryAfterYears(0.05)
	eFar := expiryAfterYears(0.10)
	quotes := expiryChain(eNear, seqStrikes(55, 100, 5), seqStrikes(105, 150, 5), 0.6)
	quotes = append(quotes, expiryChain(eFar, seqStrikes(55, 100, 5), seqStrikes(105, 150, 5), 0.6)...)

	// Forward above 105 moves K0 up one strike on both expiries, so the
	// estimate must respond to the futures curve, not just spot.
	forwards := map[time.Time]float64{eNear: 107, eFar: 107}
	withFwd, ok1 := DvolAtHour(quotes, snapHour, 100, forwards)
	spotOnly, ok2 := DvolAtHour(quotes, snapHour, 100, nil)
	require.True(t, ok1)
	require.True(t, ok2)
	require.NotEqual(t, spotOnly.Dvol, withFwd.Dvol)
	require.InDelta(t, 0.6, withFwd.Dvol, 0.6*0.02)
}

func TestDvolAtHourQualityBoundaries(t *testing.T) {
	cases := []struct {
		name       string
		nearBelow  int // put-side strikes on the near expiry
		farBelow   int
		quality    models.Quality
		expectFail bool
	}{
		{"five each side both expiries", 5, 5, models.QualityHigh, false},
		{"near four far five", 4, 5, models.QualityMedium, false},
		{"three each", 3, 3, models.QualityMedium, false},
		{"near three far four", 3, 4, models.QualityMedium, false},
		{"below minimum fails outright", 2, 5, "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Build put side with tc.nBelow strikes strictly below K0=100,
			// plus K0 itself and a generous call side.
			nearPuts := seqStrikes(100-float64(tc.nearBelow)*5, 100, 5)
			farPuts := seqStrikes(100-float64(tc.farBelow)*5, 100, 5)
			calls := seqStrikes(105, 160, 5)

			quotes := expiryChain(expiryAfterYears(0.05), nearPuts, calls, 0.6)
			quotes = append(quotes, expiryChain(expiryAfterYears(0.10), farPuts, calls, 0.6)...)

			res, ok := DvolAtHour(quotes, snapHour, 100, nil)
			if tc.expectFail {
				require.False(t, ok, "expected failure, got %+v", res)
				return
			}
			require.True(t, ok)
			require.Equal(t, tc.quality, res.Quality)
		})
	}
}

func TestDvolAtHourDeterministic(t *testing.T) {
	quotes := flatSnapshot(0.55, 0.65)
	a, okA := DvolAtHour(quotes, snapHour, 100, nil)
	b, okB := DvolAtHour(quotes, snapHour, 100, nil)
	require.Equal(t, okA, okB)
	require.Equal(t, a, b)
}

func TestYearFraction(t *testing.T) {
	tt, ok := YearFraction(snapHour, snapHour.AddDate(0, 0, 30))
	require.True(t, ok)
	require.InDelta(t, 30.0/365.25, tt, 1e-12)

	if _, ok := YearFraction(snapHour, snapHour); ok {
		t.Fatal("zero delta should not be usable")
	}
	if _, ok := YearFraction(snapHour, snapHour.Add(-time.Hour)); ok {
		t.Fatal("past expiry should not be usable")
	}
}
