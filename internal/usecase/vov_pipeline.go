package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"VolPull/internal/domain/models"
	drepo "VolPull/internal/domain/repository"
	"VolPull/internal/services/vol"
	"VolPull/pkg/logger"
)

// VovPipeline derives the daily volatility-of-volatility series from the
// stored hourly index. Each asset's series is strictly sequential; assets
// run in parallel.
type VovPipeline struct {
	results drepo.ResultStore
	metrics drepo.Metrics
	log     *logger.Logger
	window  int
	alpha   float64
}

// NewVovPipeline creates a new VovPipeline instance.
func NewVovPipeline(results drepo.ResultStore, metrics drepo.Metrics, log *logger.Logger, window int, alpha float64) *VovPipeline {
	if window <= 0 {
		window = vol.DefaultVovWindow
	}
	if alpha <= 0 {
		alpha = vol.DefaultFVovAlpha
	}
	return &VovPipeline{
		results: results,
		metrics: metrics,
		log:     log,
		window:  window,
		alpha:   alpha,
	}
}

// Run recomputes the VoV series for every asset over [from, to] and
// persists it. The two-pass shape matters: the scaling factor uses the
// full-sample mean, so it is only assigned once the whole series exists.
func (p *VovPipeline) Run(ctx context.Context, assets []string, from, to time.Time) error {
	var wg sync.WaitGroup
	errs := make(chan error, len(assets))

	for _, asset := range assets {
		wg.Add(1)
		go func(asset string) {
			defer wg.Done()
			if err := p.runAsset(ctx, asset, from, to); err != nil {
				errs <- fmt.Errorf("%s: %w", asset, err)
			}
		}(asset)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		return err
	}
	return nil
}

// qualifiedPoints keeps the hourly values whose strike grids graded high
// or medium. Anything else in stored history is excluded from the daily
// series.
func qualifiedPoints(hourly []*models.HourlyDvol) []models.DvolPoint {
	points := make([]models.DvolPoint, 0, len(hourly))
	for _, h := range hourly {
		if h.Quality != models.QualityHigh && h.Quality != models.QualityMedium {
			continue
		}
		points = append(points, models.DvolPoint{Timestamp: h.SnapshotHour, Dvol: h.Dvol})
	}
	return points
}

func (p *VovPipeline) runAsset(ctx context.Context, asset string, from, to time.Time) error {
	start := time.Now()

	hourly, err := p.results.QueryHourly(ctx, asset, from, to, 1<<20)
	if err != nil {
		p.metrics.RecordError("vov_read")
		return fmt.Errorf("read hourly: %w", err)
	}

	daily := vol.ResampleDaily(qualifiedPoints(hourly))
	records := vol.VovSeries(daily, p.window)
	records = vol.AddFVov(records, p.alpha)

	if len(records) == 0 {
		p.log.Info("no daily observations", logger.String("asset", asset))
		return nil
	}
	if err := p.results.StoreVov(ctx, asset, records); err != nil {
		p.metrics.RecordError("vov_store")
		return fmt.Errorf("store vov: %w", err)
	}

	last := records[len(records)-1]
	p.metrics.RecordFVov(asset, last.FVov)
	p.metrics.RecordLatency("vov_run", time.Since(start).Seconds())
	p.log.Info("vov series updated",
		logger.String("asset", asset),
		logger.Int("days", len(records)),
		logger.Float64("f_vov", last.FVov))
	return nil
}
