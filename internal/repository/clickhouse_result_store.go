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

// ClickHouseResultStore implements ResultStore for ClickHouse.
type ClickHouseResultStore struct {
	db *sql.DB
}

// NewClickHouseResultStore creates ClickHouse result storage.
func NewClickHouseResultStore(db *sql.DB) repository.ResultStore {
	return &ClickHouseResultStore{db: db}
}

var resultDDL = []string{
	`CREATE TABLE IF NOT EXISTS dvol_hourly (
		asset          LowCardinality(String),
		snapshot_hour  DateTime('UTC'),
		dvol           Float64,
		quality        LowCardinality(String),
		near_expiry    DateTime('UTC'),
		far_expiry     DateTime('UTC'),
		n_near_strikes UInt16,
		n_far_strikes  UInt16
	) ENGINE = ReplacingMergeTree
	ORDER BY (asset, snapshot_hour)`,
	`CREATE TABLE IF NOT EXISTS vov_daily (
		asset      LowCardinality(String),
		date       Date,
		ts         DateTime('UTC'),
		dvol_daily Float64,
		log_return Nullable(Float64),
		vov        Nullable(Float64),
		f_vov      Float64
	) ENGINE = ReplacingMergeTree
	ORDER BY (asset, date)`,
}

func (s *ClickHouseResultStore) Init(ctx context.Context) error {
	for _, stmt := range resultDDL {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("result schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseResultStore) StoreHourly(ctx context.Context, rec *models.HourlyDvol) error {
	const query = `INSERT INTO dvol_hourly
		(asset, snapshot_hour, dvol, quality, near_expiry, far_expiry, n_near_strikes, n_far_strikes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		rec.Asset,
		rec.SnapshotHour.UTC(),
		rec.Dvol,
		string(rec.Quality),
		rec.NearExpiry.UTC(),
		rec.FarExpiry.UTC(),
		uint16(rec.NNearStrikes),
		uint16(rec.NFarStrikes),
	)
	if err != nil {
		return fmt.Errorf("insert dvol_hourly: %w", err)
	}
	return nil
}

func (s *ClickHouseResultStore) StoreHourlyBatch(ctx context.Context, recs []*models.HourlyDvol) error {
	if len(recs) == 0 {
		return nil
	}
	values := make([]string, 0, len(recs))
	args := make([]interface{}, 0, len(recs)*8)
	for _, rec := range recs {
		if rec == nil || rec.Asset == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			rec.Asset,
			rec.SnapshotHour.UTC(),
			rec.Dvol,
			string(rec.Quality),
			rec.NearExpiry.UTC(),
			rec.FarExpiry.UTC(),
			uint16(rec.NNearStrikes),
			uint16(rec.NFarStrikes),
		)
	}
	if len(values) == 0 {
		return nil
	}
	query := "INSERT INTO dvol_hourly (asset, snapshot_hour, dvol, quality, near_expiry, far_expiry, n_near_strikes, n_far_strikes) VALUES " + strings.Join(values, ",")
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert dvol_hourly batch: %w", err)
	}
	return nil
}

func (s *ClickHouseResultStore) StoreVov(ctx context.Context, asset string, recs []models.VovRecord) error {
	if len(recs) == 0 {
		return nil
	}
	values := make([]string, 0, len(recs))
	args := make([]interface{}, 0, len(recs)*7)
	for _, rec := range recs {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			asset,
			rec.Date,
			rec.Timestamp.UTC(),
			rec.DvolDaily,
			nullableFloat(rec.LogReturn),
			nullableFloat(rec.Vov),
			rec.FVov,
		)
	}
	query := "INSERT INTO vov_daily (asset, date, ts, dvol_daily, log_return, vov, f_vov) VALUES " + strings.Join(values, ",")
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert vov_daily: %w", err)
	}
	return nil
}

func (s *ClickHouseResultStore) QueryHourly(ctx context.Context, asset string, from, to time.Time, limit int) ([]*models.HourlyDvol, error) {
	const query = `SELECT asset, snapshot_hour, dvol, quality, near_expiry, far_expiry, n_near_strikes, n_far_strikes
		FROM dvol_hourly
		WHERE asset = ? AND snapshot_hour >= ? AND snapshot_hour <= ?
		ORDER BY snapshot_hour DESC
		LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, asset, from.UTC(), to.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("query dvol_hourly: %w", err)
	}
	defer rows.Close()

	var recs []*models.HourlyDvol
	for rows.Next() {
		var rec models.HourlyDvol
		var quality string
		var nNear, nFar uint16
		if err := rows.Scan(&rec.Asset, &rec.SnapshotHour, &rec.Dvol, &quality,
			&rec.NearExpiry, &rec.FarExpiry, &nNear, &nFar); err != nil {
			return nil, err
		}
		rec.Quality = models.Quality(quality)
		rec.NNearStrikes = int(nNear)
		rec.NFarStrikes = int(nFar)
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

func (s *ClickHouseResultStore) QueryVov(ctx context.Context, asset string, from, to time.Time, limit int) ([]models.VovRecord, error) {
	const query = `SELECT toString(date), ts, dvol_daily, log_return, vov, f_vov
		FROM vov_daily
		WHERE asset = ? AND date >= toDate(?) AND date <= toDate(?)
		ORDER BY date DESC
		LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, asset, from.UTC(), to.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("query vov_daily: %w", err)
	}
	defer rows.Close()

	var recs []models.VovRecord
	for rows.Next() {
		var rec models.VovRecord
		var logRet, vov sql.NullFloat64
		if err := rows.Scan(&rec.Date, &rec.Timestamp, &rec.DvolDaily, &logRet, &vov, &rec.FVov); err != nil {
			return nil, err
		}
		if logRet.Valid {
			v := logRet.Float64
			rec.LogReturn = &v
		}
		if vov.Valid {
			v := vov.Float64
			rec.Vov = &v
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *ClickHouseResultStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseResultStore) Close() error {
	return nil // pool managed by pkg/clickhouse
}

func nullableFloat(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
