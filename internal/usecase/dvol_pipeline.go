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
	"VolPull/pkg/util"
)

// SpotLookup reports the most recent live index tick for an asset, if
// one arrived on the stream.
type SpotLookup func(asset string) (*models.IndexTick, bool)

// DvolPipeline computes hourly index values. Batch runs fan snapshot
// hours out over a worker pool; live runs pull the current chain from the
// market source, persist the snapshot and compute in one step.
type DvolPipeline struct {
	snapshots drepo.SnapshotStore
	source    drepo.MarketSource
	liveSpot  SpotLookup
	proc      *DvolProcessor
	metrics   drepo.Metrics
	log       *logger.Logger
	workers   int
}

// NewDvolPipeline creates a new DvolPipeline instance. liveSpot may be
// nil; live runs then always resolve spot through the market source.
func NewDvolPipeline(
	snapshots drepo.SnapshotStore,
	source drepo.MarketSource,
	liveSpot SpotLookup,
	proc *DvolProcessor,
	metrics drepo.Metrics,
	log *logger.Logger,
	workers int,
) *DvolPipeline {
	if workers <= 0 {
		workers = 4
	}
	return &DvolPipeline{
		snapshots: snapshots,
		source:    source,
		liveSpot:  liveSpot,
		proc:      proc,
		metrics:   metrics,
		log:       log,
		workers:   workers,
	}
}

type hourJob struct {
	asset string
	hour  time.Time
}

// RunBatch recomputes every stored snapshot hour for the given assets in
// [from, to]. Hours that fail quality thresholds are counted and skipped,
// never fatal. Returns the number of hours that produced a value.
func (p *DvolPipeline) RunBatch(ctx context.Context, assets []string, from, to time.Time) (int, error) {
	jobs := make(chan hourJob)
	var wg sync.WaitGroup
	var mu sync.Mutex
	computed := 0

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				rec, ok := p.computeHour(ctx, job.asset, job.hour)
				if !ok {
					continue
				}
				if err := p.proc.Process(ctx, rec); err != nil {
					p.log.Error("process hourly dvol failed",
						logger.String("asset", job.asset),
						logger.Time("hour", job.hour),
						logger.Error(err))
					continue
				}
				mu.Lock()
				computed++
				mu.Unlock()
			}
		}()
	}

	var feedErr error
	for _, asset := range assets {
		hours, err := p.snapshots.Hours(ctx, asset, from, to)
		if err != nil {
			feedErr = fmt.Errorf("list hours for %s: %w", asset, err)
			break
		}
		for _, h := range hours {
			select {
			case <-ctx.Done():
				feedErr = ctx.Err()
			case jobs <- hourJob{asset: asset, hour: h}:
			}
			if feedErr != nil {
				break
			}
		}
		if feedErr != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	return computed, feedErr
}

// ComputeLive pulls the current chain for one asset, persists the
// snapshot at the truncated hour and emits the computed value.
func (p *DvolPipeline) ComputeLive(ctx context.Context, asset string) (*models.HourlyDvol, error) {
	hour := util.TruncateHour(time.Now().UTC())

	quotes, err := p.source.OptionChain(ctx, asset, hour)
	if err != nil {
		p.metrics.RecordError("fetch_chain")
		return nil, fmt.Errorf("fetch chain: %w", err)
	}
	spot, ok := p.streamSpot(asset, hour)
	if !ok {
		spot, err = p.source.Spot(ctx, asset)
		if err != nil {
			p.metrics.RecordError("fetch_spot")
			return nil, fmt.Errorf("fetch spot: %w", err)
		}
	}
	forwards, err := p.source.Forwards(ctx, asset)
	if err != nil {
		// The spot proxy covers expiries without a tracked future, so a
		// missing curve degrades rather than fails.
		p.log.Warn("futures curve unavailable, using spot proxy",
			logger.String("asset", asset), logger.Error(err))
		forwards = nil
	}

	if err := p.snapshots.StoreQuotes(ctx, asset, hour, quotes); err != nil {
		p.metrics.RecordError("store_snapshot")
		return nil, fmt.Errorf("store snapshot: %w", err)
	}

	rec, ok := p.compute(asset, hour, quotes, spot, forwards)
	if !ok {
		return nil, fmt.Errorf("no index value for %s at %s", asset, hour.Format(time.RFC3339))
	}
	if err := p.proc.Process(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// streamSpot answers the live spot from the index stream when a tick
// exists inside the current snapshot hour. Older ticks are ignored so a
// stalled stream never feeds a stale level into the compute.
func (p *DvolPipeline) streamSpot(asset string, hour time.Time) (float64, bool) {
	if p.liveSpot == nil {
		return 0, false
	}
	tick, ok := p.liveSpot(asset)
	if !ok || tick == nil || tick.Price <= 0 || tick.Timestamp.Before(hour) {
		return 0, false
	}
	return tick.Price, true
}

func (p *DvolPipeline) computeHour(ctx context.Context, asset string, hour time.Time) (*models.HourlyDvol, bool) {
	quotes, err := p.snapshots.GetQuotes(ctx, asset, hour)
	if err != nil {
		p.metrics.RecordError("read_snapshot")
		p.log.Error("read snapshot failed",
			logger.String("asset", asset), logger.Time("hour", hour), logger.Error(err))
		return nil, false
	}
	spot, err := p.snapshots.GetSpot(ctx, asset, hour)
	if err != nil {
		p.metrics.RecordDvolRejected(asset, "no_spot")
		return nil, false
	}
	forwards, err := p.snapshots.GetForwards(ctx, asset, hour)
	if err != nil {
		forwards = nil
	}
	return p.compute(asset, hour, quotes, spot, forwards)
}

func (p *DvolPipeline) compute(asset string, hour time.Time, quotes []models.OptionQuote, spot float64, forwards map[time.Time]float64) (*models.HourlyDvol, bool) {
	start := time.Now()
	res, ok := vol.DvolAtHour(quotes, hour, spot, forwards)
	p.metrics.RecordLatency("compute_hour", time.Since(start).Seconds())
	if !ok {
		p.metrics.RecordDvolRejected(asset, "quality")
		p.log.Debug("snapshot hour rejected",
			logger.String("asset", asset),
			logger.Time("hour", hour),
			logger.Int("n_near", res.NNearStrikes),
			logger.Int("n_far", res.NFarStrikes))
		return nil, false
	}

	p.metrics.RecordDvolComputed(asset, string(res.Quality))
	return &models.HourlyDvol{
		Asset:        asset,
		SnapshotHour: hour,
		Dvol:         res.Dvol,
		Quality:      res.Quality,
		NearExpiry:   res.NearExpiry,
		FarExpiry:    res.FarExpiry,
		NNearStrikes: res.NNearStrikes,
		NFarStrikes:  res.NFarStrikes,
	}, true
}
