package vol

import (
	"math"
	"testing"

	"VolPull/internal/domain/models"
)

// chainQuotes builds a symmetric quote grid: puts at the given strikes
// below-or-at the forward, calls above, all at one flat IV.
func chainQuotes(putStrikes, callStrikes []float64, iv float64) []models.OptionQuote {
	out := make([]models.OptionQuote, 0, len(putStrikes)+len(callStrikes))
	for _, k := range putStrikes {
		out = append(out, models.OptionQuote{Strike: k, Type: models.Put, MarkIV: iv})
	}
	for _, k := range callStrikes {
		out = append(out, models.OptionQuote{Strike: k, Type: models.Call, MarkIV: iv})
	}
	return out
}

func seqStrikes(from, to, step float64) []float64 {
	var out []float64
	for k := from; k <= to+1e-9; k += step {
		out = append(out, k)
	}
	return out
}

func TestExpiryVarianceFlatSurface(t *testing.T) {
	// A flat IV surface should reproduce the input variance.
	quotes := chainQuotes(seqStrikes(55, 100, 5), seqStrikes(105, 150, 5), 0.6)
	res, ok := ExpiryVariance(quotes, 0.05, 100, 0)
	if !ok {
		t.Fatalf("expected variance, got insufficient (count=%d)", res.StrikeCount)
	}
	if sigma := math.Sqrt(res.Variance); math.Abs(sigma-0.6) > 0.012 {
		t.Fatalf("flat 60%% surface gave sigma=%v", sigma)
	}
	if res.StrikeCount != 9 { // 9 strikes strictly below K0=100
		t.Fatalf("strike count = %d, want 9", res.StrikeCount)
	}
}

func TestExpiryVarianceRejectsBadPreconditions(t *testing.T) {
	quotes := chainQuotes(seqStrikes(55, 100, 5), seqStrikes(105, 150, 5), 0.6)

	if _, ok := ExpiryVariance(nil, 0.05, 100, 0); ok {
		t.Fatal("empty quotes should fail")
	}
	if _, ok := ExpiryVariance(quotes, 0, 100, 0); ok {
		t.Fatal("T=0 should fail")
	}
	if _, ok := ExpiryVariance(quotes, 0.05, 0, 0); ok {
		t.Fatal("F=0 should fail")
	}
}

func TestExpiryVarianceFewStrikes(t *testing.T) {
	quotes := chainQuotes([]float64{95, 100}, nil, 0.6)
	if res, ok := ExpiryVariance(quotes, 0.05, 100, 0); ok {
		t.Fatalf("2 distinct strikes should fail, got %+v", res)
	}
}

func TestExpiryVarianceOneSidedGrid(t *testing.T) {
	// Plenty of puts, only two calls: call side below minimum.
	quotes := chainQuotes(seqStrikes(60, 100, 5), []float64{105, 110}, 0.6)
	res, ok := ExpiryVariance(quotes, 0.05, 100, 0)
	if ok {
		t.Fatal("expected insufficient call side")
	}
	if res.StrikeCount != 2 {
		t.Fatalf("achieved strike count = %d, want 2", res.StrikeCount)
	}
}

func TestExpiryVarianceInvalidIVsExcluded(t *testing.T) {
	quotes := chainQuotes(seqStrikes(55, 100, 5), seqStrikes(105, 150, 5), 0.6)
	// Garbage quotes must not perturb the estimate.
	garbage := []models.OptionQuote{
		{Strike: 70, Type: models.Put, MarkIV: 0},
		{Strike: 75, Type: models.Put, MarkIV: -1},
		{Strike: 120, Type: models.Call, MarkIV: 7.5},
		{Strike: 125, Type: "X", MarkIV: 0.6},
	}
	base, okBase := ExpiryVariance(quotes, 0.05, 100, 0)
	withGarbage, okGarbage := ExpiryVariance(append(garbage, quotes...), 0.05, 100, 0)
	if !okBase || !okGarbage {
		t.Fatal("expected both estimates to succeed")
	}
	if base.Variance != withGarbage.Variance {
		t.Fatalf("invalid quotes changed variance: %v vs %v", base.Variance, withGarbage.Variance)
	}
}

func TestExpiryVarianceDuplicateLastWins(t *testing.T) {
	quotes := chainQuotes(seqStrikes(55, 100, 5), seqStrikes(105, 150, 5), 0.6)
	// A later duplicate at the same strike/type replaces the earlier one.
	dup := append(append([]models.OptionQuote{}, quotes...),
		models.OptionQuote{Strike: 70, Type: models.Put, MarkIV: 0.9})

	base, _ := ExpiryVariance(quotes, 0.05, 100, 0)
	res, ok := ExpiryVariance(dup, 0.05, 100, 0)
	if !ok {
		t.Fatal("expected variance")
	}
	if res.Variance <= base.Variance {
		t.Fatalf("higher duplicate IV should raise variance: %v vs base %v", res.Variance, base.Variance)
	}
}

func TestExpiryVarianceK0AboveAllStrikes(t *testing.T) {
	// Forward far above the whole grid: K0 collapses to the largest
	// strike <= F, leaving no call side.
	quotes := chainQuotes(seqStrikes(55, 100, 5), seqStrikes(105, 150, 5), 0.6)
	res, ok := ExpiryVariance(quotes, 0.05, 1000, 0)
	if ok {
		t.Fatalf("no strikes above forward should fail, got %+v", res)
	}
	if res.StrikeCount != 0 {
		t.Fatalf("achieved strike count = %d, want 0", res.StrikeCount)
	}
}

func TestExpiryVarianceDeterministic(t *testing.T) {
	quotes := chainQuotes(seqStrikes(55, 100, 5), seqStrikes(105, 150, 5), 0.6)
	a, okA := ExpiryVariance(quotes, 0.05, 100, 0)
	b, okB := ExpiryVariance(quotes, 0.05, 100, 0)
	if okA != okB || a != b {
		t.Fatalf("repeated calls differ: %+v vs %+v", a, b)
	}
}

func TestExpiryVarianceAlwaysPositiveWhenOK(t *testing.T) {
	for _, iv := range []float64{0.1, 0.3, 0.6, 1.0, 2.5} {
		quotes := chainQuotes(seqStrikes(55, 100, 5), seqStrikes(105, 150, 5), iv)
		res, ok := ExpiryVariance(quotes, 0.08, 100, 0)
		if ok && res.Variance <= 0 {
			t.Fatalf("iv=%v: ok with non-positive variance %v", iv, res.Variance)
		}
	}
}
