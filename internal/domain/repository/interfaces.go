package repository

import (
	"context"
	"time"

	"VolPull/internal/domain/models"
)

// SnapshotStore provides read access to hourly option snapshots
// and the futures/spot data needed to build forwards.
type SnapshotStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreQuotes(ctx context.Context, asset string, hour time.Time, quotes []models.OptionQuote) error
	GetQuotes(ctx context.Context, asset string, hour time.Time) ([]models.OptionQuote, error)
	GetSpot(ctx context.Context, asset string, hour time.Time) (float64, error)
	GetForwards(ctx context.Context, asset string, hour time.Time) (map[time.Time]float64, error)
	Hours(ctx context.Context, asset string, from, to time.Time) ([]time.Time, error)
	Health(ctx context.Context) error
	Close() error
}

// ResultStore persists computed index values and VoV records.
type ResultStore interface {
	Init(ctx context.Context) error
	StoreHourly(ctx context.Context, rec *models.HourlyDvol) error
	StoreHourlyBatch(ctx context.Context, recs []*models.HourlyDvol) error
	StoreVov(ctx context.Context, asset string, recs []models.VovRecord) error
	QueryHourly(ctx context.Context, asset string, from, to time.Time, limit int) ([]*models.HourlyDvol, error)
	QueryVov(ctx context.Context, asset string, from, to time.Time, limit int) ([]models.VovRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// Publisher pushes computed hourly values to a downstream bus.
type Publisher interface {
	Publish(ctx context.Context, rec *models.HourlyDvol) error
	PublishBatch(ctx context.Context, recs []*models.HourlyDvol) error
	Close() error
}

// MarketSource fetches option chains and index levels from an exchange.
type MarketSource interface {
	OptionChain(ctx context.Context, asset string, at time.Time) ([]models.OptionQuote, error)
	Spot(ctx context.Context, asset string) (float64, error)
	Forwards(ctx context.Context, asset string) (map[time.Time]float64, error)
	OfficialIndex(ctx context.Context, asset string, from, to time.Time) ([]models.IndexPoint, error)
}

// IndexStream is a live feed of underlying index levels.
type IndexStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.IndexTick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Metrics records pipeline counters and gauges.
type Metrics interface {
	RecordDvolComputed(asset, quality string)
	RecordDvolRejected(asset, reason string)
	RecordError(kind string)
	RecordDvol(asset string, dvol float64)
	RecordFVov(asset string, f float64)
	RecordLatency(op string, seconds float64)
}
