package vol

import (
	"math"
	"testing"
	"time"

	"VolPull/internal/domain/models"
)

func seriesPair(n int, f func(i int) float64) ([]models.IndexPoint, []models.DailyDvol) {
	official := make([]models.IndexPoint, n)
	computed := make([]models.DailyDvol, n)
	for i := 0; i < n; i++ {
		ts := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		date := ts.Format("2006-01-02")
		official[i] = models.IndexPoint{Date: date, Close: f(i)}
		computed[i] = models.DailyDvol{Date: date, Timestamp: ts, Dvol: f(i)}
	}
	return official, computed
}

func TestCompareToOfficialIdenticalSeries(t *testing.T) {
	official, computed := seriesPair(10, func(i int) float64 { return 0.5 + 0.01*float64(i) })
	report, ok := CompareToOfficial(official, computed, 0.90)
	if !ok {
		t.Fatal("expected a report")
	}
	if report.Days != 10 {
		t.Fatalf("days = %d", report.Days)
	}
	if math.Abs(report.Correlation-1.0) > 1e-12 {
		t.Fatalf("correlation = %v, want 1.0", report.Correlation)
	}
	if report.MAE != 0 || report.RMSE != 0 {
		t.Fatalf("MAE=%v RMSE=%v, want 0", report.MAE, report.RMSE)
	}
	if !report.Pass {
		t.Fatal("identical series must pass")
	}
}

func TestCompareToOfficialTooFewDays(t *testing.T) {
	official, computed := seriesPair(4, func(i int) float64 { return 0.5 })
	if report, ok := CompareToOfficial(official, computed, 0.90); ok {
		t.Fatalf("4 common days should not produce a report, got %+v", report)
	}
}

func TestCompareToOfficialDisjointDates(t *testing.T) {
	official, _ := seriesPair(10, func(i int) float64 { return 0.5 })
	_, computed := seriesPair(10, func(i int) float64 { return 0.5 })
	for i := range computed {
		computed[i].Date = "1999-" + computed[i].Date[5:]
	}
	if _, ok := CompareToOfficial(official, computed, 0.90); ok {
		t.Fatal("no overlapping days should fail")
	}
}

func TestCompareToOfficialBiasedSeries(t *testing.T) {
	official, computed := seriesPair(20, func(i int) float64 { return 0.4 + 0.02*float64(i) })
	for i := range computed {
		computed[i].Dvol += 0.05 // constant bias: perfect correlation, nonzero error
	}
	report, ok := CompareToOfficial(official, computed, 0.90)
	if !ok {
		t.Fatal("expected a report")
	}
	if math.Abs(report.Correlation-1.0) > 1e-9 {
		t.Fatalf("correlation = %v", report.Correlation)
	}
	if math.Abs(report.MAE-0.05) > 1e-12 || math.Abs(report.RMSE-0.05) > 1e-12 {
		t.Fatalf("MAE=%v RMSE=%v, want 0.05", report.MAE, report.RMSE)
	}
}

func TestCompareToOfficialAnticorrelatedFails(t *testing.T) {
	official, computed := seriesPair(15, func(i int) float64 { return 0.4 + 0.02*float64(i) })
	for i := range computed {
		computed[i].Dvol = 1.0 - computed[i].Dvol
	}
	report, ok := CompareToOfficial(official, computed, 0.90)
	if !ok {
		t.Fatal("expected a report")
	}
	if report.Pass {
		t.Fatalf("anticorrelated series must not pass: %+v", report)
	}
}
