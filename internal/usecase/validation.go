package usecase

import (
	"context"
	"fmt"
	"time"

	"VolPull/internal/domain/models"
	drepo "VolPull/internal/domain/repository"
	"VolPull/internal/services/vol"
	"VolPull/pkg/logger"
)

// ValidationUseCase compares the reconstructed daily series against the
// exchange's published index. Failures are advisory: the report always
// comes back so operators can inspect the numbers.
type ValidationUseCase struct {
	results   drepo.ResultStore
	source    drepo.MarketSource
	log       *logger.Logger
	threshold float64
}

// NewValidationUseCase creates a new ValidationUseCase instance.
func NewValidationUseCase(results drepo.ResultStore, source drepo.MarketSource, log *logger.Logger, threshold float64) *ValidationUseCase {
	if threshold <= 0 {
		threshold = vol.DefaultCorrelationThreshold
	}
	return &ValidationUseCase{
		results:   results,
		source:    source,
		log:       log,
		threshold: threshold,
	}
}

// Validate builds both daily series over [from, to] and reports their
// agreement.
func (v *ValidationUseCase) Validate(ctx context.Context, asset string, from, to time.Time) (models.ValidationReport, error) {
	official, err := v.source.OfficialIndex(ctx, asset, from, to)
	if err != nil {
		return models.ValidationReport{}, fmt.Errorf("fetch official index: %w", err)
	}

	hourly, err := v.results.QueryHourly(ctx, asset, from, to, 1<<20)
	if err != nil {
		return models.ValidationReport{}, fmt.Errorf("read hourly: %w", err)
	}
	daily := vol.ResampleDaily(qualifiedPoints(hourly))

	report, ok := vol.CompareToOfficial(official, daily, v.threshold)
	report.Asset = asset
	if !ok {
		return report, fmt.Errorf("not enough overlapping days for %s", asset)
	}

	if report.Pass {
		v.log.Info("validation passed",
			logger.String("asset", asset),
			logger.Int("days", report.Days),
			logger.Float64("correlation", report.Correlation))
	} else {
		v.log.Warn("validation below threshold",
			logger.String("asset", asset),
			logger.Int("days", report.Days),
			logger.Float64("correlation", report.Correlation),
			logger.Float64("mae", report.MAE),
			logger.Float64("rmse", report.RMSE))
	}
	return report, nil
}
