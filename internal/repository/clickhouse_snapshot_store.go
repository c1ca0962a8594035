package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"VolPull/internal/domain/models"
	"VolPull/internal/domain/repository"
)

// ClickHouseSnapshotStore implements SnapshotStore for ClickHouse.
type ClickHouseSnapshotStore struct {
	db *sql.DB
}

// NewClickHouseSnapshotStore creates ClickHouse snapshot storage.
func NewClickHouseSnapshotStore(db *sql.DB) repository.SnapshotStore {
	return &ClickHouseSnapshotStore{db: db}
}

var snapshotDDL = []string{
	`CREATE TABLE IF NOT EXISTS option_quotes (
		asset            LowCardinality(String),
		snapshot_hour    DateTime('UTC'),
		strike           Float64,
		expiry           DateTime('UTC'),
		type             FixedString(1),
		mark_iv          Float64,
		mark_price       Float64,
		underlying_price Float64
	) ENGINE = ReplacingMergeTree
	ORDER BY (asset, snapshot_hour, expiry, strike, type)`,
	`CREATE TABLE IF NOT EXISTS futures_forwards (
		asset         LowCardinality(String),
		snapshot_hour DateTime('UTC'),
		expiry        DateTime('UTC'),
		forward       Float64
	) ENGINE = ReplacingMergeTree
	ORDER BY (asset, snapshot_hour, expiry)`,
}

func (s *ClickHouseSnapshotStore) Init(ctx context.Context) error {
	for _, stmt := range snapshotDDL {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("snapshot schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseSnapshotStore) StoreQuotes(ctx context.Context, asset string, hour time.Time, quotes []models.OptionQuote) error {
	if len(quotes) == 0 {
		return nil
	}
	// Multi-row VALUES insert, chunked to limit statement size.
	const chunkSize = 2000
	for start := 0; start < len(quotes); start += chunkSize {
		end := start + chunkSize
		if end > len(quotes) {
			end = len(quotes)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*8)
		for _, q := range quotes[start:end] {
			if !q.Type.Valid() || q.Strike <= 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				asset,
				hour.UTC(),
				q.Strike,
				q.Expiry.UTC(),
				string(q.Type),
				q.MarkIV,
				q.MarkPrice,
				q.UnderlyingPrice,
			)
		}
		if len(values) == 0 {
			continue
		}
		query := "INSERT INTO option_quotes (asset, snapshot_hour, strike, expiry, type, mark_iv, mark_price, underlying_price) VALUES " + strings.Join(values, ",")
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert quotes: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseSnapshotStore) GetQuotes(ctx context.Context, asset string, hour time.Time) ([]models.OptionQuote, error) {
	const query = `SELECT strike, expiry, type, mark_iv, mark_price, underlying_price
		FROM option_quotes
		WHERE asset = ? AND snapshot_hour = ?
		ORDER BY expiry, strike, type`
	rows, err := s.db.QueryContext(ctx, query, asset, hour.UTC())
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	var quotes []models.OptionQuote
	for rows.Next() {
		var q models.OptionQuote
		var typ string
		if err := rows.Scan(&q.Strike, &q.Expiry, &typ, &q.MarkIV, &q.MarkPrice, &q.UnderlyingPrice); err != nil {
			return nil, err
		}
		q.Type = models.OptionType(typ)
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

func (s *ClickHouseSnapshotStore) GetSpot(ctx context.Context, asset string, hour time.Time) (float64, error) {
	const query = `SELECT anyLast(underlying_price)
		FROM option_quotes
		WHERE asset = ? AND snapshot_hour = ? AND underlying_price > 0`
	var spot sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, query, asset, hour.UTC()).Scan(&spot); err != nil {
		return 0, fmt.Errorf("query spot: %w", err)
	}
	if !spot.Valid || spot.Float64 <= 0 {
		return 0, fmt.Errorf("no spot for %s at %s", asset, hour.UTC().Format(time.RFC3339))
	}
	return spot.Float64, nil
}

func (s *ClickHouseSnapshotStore) GetForwards(ctx context.Context, asset string, hour time.Time) (map[time.Time]float64, error) {
	const query = `SELECT expiry, anyLast(forward)
		FROM futures_forwards
		WHERE asset = ? AND snapshot_hour = ?
		GROUP BY expiry`
	rows, err := s.db.QueryContext(ctx, query, asset, hour.UTC())
	if err != nil {
		return nil, fmt.Errorf("query forwards: %w", err)
	}
	defer rows.Close()

	forwards := make(map[time.Time]float64)
	for rows.Next() {
		var expiry time.Time
		var fwd float64
		if err := rows.Scan(&expiry, &fwd); err != nil {
			return nil, err
		}
		if fwd > 0 {
			forwards[expiry.UTC()] = fwd
		}
	}
	return forwards, rows.Err()
}

func (s *ClickHouseSnapshotStore) Hours(ctx context.Context, asset string, from, to time.Time) ([]time.Time, error) {
	const query = `SELECT DISTINCT snapshot_hour
		FROM option_quotes
		WHERE asset = ? AND snapshot_hour >= ? AND snapshot_hour <= ?
		ORDER BY snapshot_hour`
	rows, err := s.db.QueryContext(ctx, query, asset, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("query hours: %w", err)
	}
	defer rows.Close()

	var hours []time.Time
	for rows.Next() {
		var h time.Time
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hours = append(hours, h.UTC())
	}
	return hours, rows.Err()
}

func (s *ClickHouseSnapshotStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseSnapshotStore) Close() error {
	return nil // pool managed by pkg/clickhouse
}
