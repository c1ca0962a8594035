package vol

import (
	"math"
	"testing"
	"time"

	"VolPull/internal/domain/models"
)

func day(d int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func TestResampleDailyLastWins(t *testing.T) {
	hourly := []models.DvolPoint{
		{Timestamp: day(0).Add(3 * time.Hour), Dvol: 0.50},
		{Timestamp: day(0).Add(23 * time.Hour), Dvol: 0.58},
		{Timestamp: day(0).Add(12 * time.Hour), Dvol: 0.54},
		{Timestamp: day(1).Add(1 * time.Hour), Dvol: 0.61},
	}
	daily := ResampleDaily(hourly)
	if len(daily) != 2 {
		t.Fatalf("expected 2 days, got %d", len(daily))
	}
	if daily[0].Date != "2025-01-01" || daily[0].Dvol != 0.58 {
		t.Fatalf("day 0 should carry the 23:00 value, got %+v", daily[0])
	}
	if daily[1].Dvol != 0.61 {
		t.Fatalf("day 1 = %+v", daily[1])
	}
}

func TestResampleDailySkipsNonPositive(t *testing.T) {
	hourly := []models.DvolPoint{
		{Timestamp: day(0).Add(5 * time.Hour), Dvol: 0.52},
		{Timestamp: day(0).Add(22 * time.Hour), Dvol: 0}, // must not clobber
	}
	daily := ResampleDaily(hourly)
	if len(daily) != 1 || daily[0].Dvol != 0.52 {
		t.Fatalf("unexpected resample: %+v", daily)
	}
}

func syntheticDaily(n int, vals func(i int) float64) []models.DailyDvol {
	out := make([]models.DailyDvol, n)
	for i := 0; i < n; i++ {
		ts := day(i).Add(23 * time.Hour)
		out[i] = models.DailyDvol{Date: ts.Format("2006-01-02"), Timestamp: ts, Dvol: vals(i)}
	}
	return out
}

func TestVovSeriesShortInput(t *testing.T) {
	if recs := VovSeries(syntheticDaily(1, func(int) float64 { return 0.5 }), 30); recs != nil {
		t.Fatalf("single day should yield nothing, got %d records", len(recs))
	}
}

func TestVovSeriesLogReturns(t *testing.T) {
	daily := syntheticDaily(3, func(i int) float64 { return 0.5 * math.Pow(1.1, float64(i)) })
	recs := VovSeries(daily, 30)
	if recs[0].LogReturn != nil {
		t.Fatal("first day has no prior, log return must be nil")
	}
	for i := 1; i < 3; i++ {
		if recs[i].LogReturn == nil || math.Abs(*recs[i].LogReturn-math.Log(1.1)) > 1e-12 {
			t.Fatalf("day %d log return = %v", i, recs[i].LogReturn)
		}
	}
}

func TestVovSeriesWindowFill(t *testing.T) {
	// Alternating series: plenty of valid returns once the window fills.
	daily := syntheticDaily(45, func(i int) float64 {
		if i%2 == 0 {
			return 0.50
		}
		return 0.55
	})
	recs := VovSeries(daily, 30)

	for i := 0; i < 30; i++ {
		if recs[i].Vov != nil {
			t.Fatalf("day %d inside warmup has vov %v", i, *recs[i].Vov)
		}
	}
	if recs[30].Vov == nil {
		t.Fatal("day 30 should have vov")
	}
	if *recs[30].Vov <= 0 {
		t.Fatalf("vov should be positive, got %v", *recs[30].Vov)
	}
}

func TestVovSeriesAnnualization(t *testing.T) {
	// DVOL flips between a and b, so every log return is ±log(b/a) and
	// the sample std is analytic.
	a, b := 0.50, 0.55
	daily := syntheticDaily(60, func(i int) float64 {
		if i%2 == 0 {
			return a
		}
		return b
	})
	recs := VovSeries(daily, 30)

	lr := math.Log(b / a)
	// 30 returns of ±lr with a near-zero mean: std ≈ |lr|.
	want := lr * math.Sqrt(365.0)
	got := *recs[59].Vov
	if math.Abs(got-want)/want > 0.05 {
		t.Fatalf("annualized vov = %v, want ≈ %v", got, want)
	}
}

func TestVovSeriesSparseWindowStaysNil(t *testing.T) {
	// Most days share the same timestamp-adjacent value but hold gaps:
	// mark many days non-positive so their returns go nil.
	daily := syntheticDaily(45, func(i int) float64 {
		if i%3 == 0 {
			return 0.5
		}
		return -1 // resample would normally drop these; simulate gaps
	})
	recs := VovSeries(daily, 30)
	for i := 30; i < len(recs); i++ {
		if recs[i].Vov != nil {
			t.Fatalf("day %d: fewer than 20 valid returns must leave vov nil", i)
		}
		if recs[i].FVov != 1.0 {
			t.Fatalf("day %d: f_vov should default to 1.0, got %v", i, recs[i].FVov)
		}
	}
}

func TestAddFVovBounds(t *testing.T) {
	daily := syntheticDaily(120, func(i int) float64 {
		// Regime switch: quiet first half, violent second half.
		if i < 60 {
			return 0.5 + 0.005*math.Sin(float64(i))
		}
		return 0.5 + 0.2*math.Sin(float64(i)*1.7)
	})
	recs := AddFVov(VovSeries(daily, 30), DefaultFVovAlpha)

	seenCapped := false
	for _, r := range recs {
		if r.FVov <= 0 || r.FVov > 2.0 {
			t.Fatalf("f_vov out of (0, 2]: %v on %s", r.FVov, r.Date)
		}
		if r.FVov == 2.0 {
			seenCapped = true
		}
		if r.Vov == nil && r.FVov != 1.0 {
			t.Fatalf("nil vov must map to f_vov 1.0, got %v", r.FVov)
		}
	}
	_ = seenCapped // cap attainment depends on the synthetic path; bounds are the contract
}

func TestVovBarEmpty(t *testing.T) {
	if bar := VovBar(nil); bar != 1.0 {
		t.Fatalf("empty series vov_bar = %v, want 1.0", bar)
	}
}

func TestFVovFormula(t *testing.T) {
	v := 0.8
	if got := FVov(&v, 0.4, 0.75); math.Abs(got-math.Pow(2.0, 0.75)) > 1e-12 {
		t.Fatalf("f_vov = %v", got)
	}
	huge := 40.0
	if got := FVov(&huge, 0.4, 0.75); got != 2.0 {
		t.Fatalf("cap not applied: %v", got)
	}
	if got := FVov(nil, 0.4, 0.75); got != 1.0 {
		t.Fatalf("nil vov should give 1.0, got %v", got)
	}
}
