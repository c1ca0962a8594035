package usecase

import (
	"context"
	"fmt"
	"time"

	"VolPull/internal/domain/models"
	drepo "VolPull/internal/domain/repository"
)

// DvolProcessor routes computed hourly values to the configured backend.
type DvolProcessor struct {
	pub     drepo.Publisher
	store   drepo.ResultStore
	metrics drepo.Metrics
	backend string
}

// NewDvolProcessor creates a new DvolProcessor instance.
func NewDvolProcessor(
	pub drepo.Publisher,
	store drepo.ResultStore,
	metrics drepo.Metrics,
	backend string,
) *DvolProcessor {
	return &DvolProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
	}
}

// Process routes a single hourly value to the configured backend.
func (p *DvolProcessor) Process(ctx context.Context, rec *models.HourlyDvol) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, rec)
	case "clickhouse":
		err = p.store.StoreHourly(ctx, rec)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process dvol: %w", err)
	}

	p.metrics.RecordDvol(rec.Asset, rec.Dvol)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())

	return nil
}

// ProcessBatch routes multiple hourly values in a batch.
func (p *DvolProcessor) ProcessBatch(ctx context.Context, recs []*models.HourlyDvol) error {
	if len(recs) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, recs)
	case "clickhouse":
		err = p.store.StoreHourlyBatch(ctx, recs)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	if last := recs[len(recs)-1]; last != nil {
		p.metrics.RecordDvol(last.Asset, last.Dvol)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *DvolProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
