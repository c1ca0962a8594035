package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"VolPull/internal/domain/models"
	"VolPull/pkg/logger"
)

type fakeSource struct {
	official  []models.IndexPoint
	chain     []models.OptionQuote
	spotCalls int
}

func (f *fakeSource) OptionChain(context.Context, string, time.Time) ([]models.OptionQuote, error) {
	return f.chain, nil
}
func (f *fakeSource) Spot(context.Context, string) (float64, error) {
	f.spotCalls++
	return 100, nil
}
func (f *fakeSource) Forwards(context.Context, string) (map[time.Time]float64, error) {
	return nil, nil
}
func (f *fakeSource) OfficialIndex(context.Context, string, time.Time, time.Time) ([]models.IndexPoint, error) {
	return f.official, nil
}

func TestValidationAgainstMatchingIndex(t *testing.T) {
	store := &fakeResultStore{}
	source := &fakeSource{}
	base := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)
	for day := 0; day < 10; day++ {
		dvol := 0.5 + 0.02*float64(day)
		ts := base.AddDate(0, 0, day)
		store.hourly = append(store.hourly, &models.HourlyDvol{
			Asset: "BTC", SnapshotHour: ts, Dvol: dvol, Quality: models.QualityHigh,
		})
		source.official = append(source.official, models.IndexPoint{
			Date:  ts.Format("2006-01-02"),
			Close: dvol,
		})
	}

	uc := NewValidationUseCase(store, source, logger.Nop(), 0.90)
	report, err := uc.Validate(context.Background(), "BTC", base, base.AddDate(0, 0, 10))
	require.NoError(t, err)
	require.Equal(t, "BTC", report.Asset)
	require.Equal(t, 10, report.Days)
	require.InDelta(t, 1.0, report.Correlation, 1e-9)
	require.InDelta(t, 0.0, report.MAE, 1e-12)
	require.True(t, report.Pass)
}

func TestValidationTooFewCommonDays(t *testing.T) {
	store := &fakeResultStore{}
	source := &fakeSource{official: []models.IndexPoint{{Date: "2025-03-01", Close: 0.5}}}
	store.hourly = append(store.hourly, &models.HourlyDvol{
		Asset: "BTC", SnapshotHour: time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC), Dvol: 0.5,
		Quality: models.QualityHigh,
	})

	uc := NewValidationUseCase(store, source, logger.Nop(), 0.90)
	_, err := uc.Validate(context.Background(), "BTC", time.Time{}, time.Now())
	require.Error(t, err)
}
