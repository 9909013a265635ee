package tsstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/stationsync/schema"
)

// LatestPoint returns the time of the most recent point tagged with the key's
// station and module in the key's measurement.
func (ps *PointStoreImpl) LatestPoint(ctx context.Context, key schema.SeriesKey) (schema.Cursor, error) {
	if ps.disabled() {
		return schema.Cursor{}, nil
	}

	query := ps.rebind(fmt.Sprintf(
		`SELECT ts FROM %s WHERE measurement = ? AND station = ? AND module = ? ORDER BY ts DESC LIMIT 1`,
		quoteTableName(ps.tableName, ps.backend)))

	var ts int64
	err := ps.db.QueryRowContext(ctx, query, string(key.Type), key.Station, key.Module).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Cursor{}, nil
	}
	if err != nil {
		return schema.Cursor{}, fmt.Errorf("failed to query latest point for %s: %w", key, err)
	}
	return schema.Cursor{Time: ts, Valid: true}, nil
}

// WritePoints upserts all points in a single transaction. Either every point
// is written or none is.
func (ps *PointStoreImpl) WritePoints(ctx context.Context, points []schema.Point) error {
	if ps.disabled() || len(points) == 0 {
		return nil
	}

	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin write: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, ps.getUpsertQuery())
	if err != nil {
		return fmt.Errorf("failed to prepare write: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	writtenAt := time.Now().Unix()
	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, string(p.Key.Type), p.Key.Station, p.Key.Module, p.Time, p.Value, writtenAt); err != nil {
			return fmt.Errorf("failed to write point %s@%d: %w", p.Key, p.Time, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit write: %w", err)
	}
	return nil
}

// QueryPoints returns the points of a series with from <= ts <= to, oldest first.
func (ps *PointStoreImpl) QueryPoints(ctx context.Context, key schema.SeriesKey, from, to int64) ([]schema.Point, error) {
	if ps.disabled() {
		return nil, nil
	}

	query := ps.rebind(fmt.Sprintf(
		`SELECT ts, value FROM %s WHERE measurement = ? AND station = ? AND module = ? AND ts >= ? AND ts <= ? ORDER BY ts`,
		quoteTableName(ps.tableName, ps.backend)))

	rows, err := ps.db.QueryContext(ctx, query, string(key.Type), key.Station, key.Module, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query points for %s: %w", key, err)
	}
	defer func() { _ = rows.Close() }()

	var points []schema.Point
	for rows.Next() {
		p := schema.Point{Key: key}
		if err := rows.Scan(&p.Time, &p.Value); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// ListSeries summarizes every series present in the store, ordered by station, module and type.
func (ps *PointStoreImpl) ListSeries(ctx context.Context) ([]schema.SeriesSummary, error) {
	if ps.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(
		`SELECT measurement, station, module, COUNT(*), MIN(ts), MAX(ts) FROM %s GROUP BY measurement, station, module ORDER BY station, module, measurement`,
		quoteTableName(ps.tableName, ps.backend))

	rows, err := ps.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var series []schema.SeriesSummary
	for rows.Next() {
		var s schema.SeriesSummary
		var measurement string
		var first, last int64
		if err := rows.Scan(&measurement, &s.Key.Station, &s.Key.Module, &s.Points, &first, &last); err != nil {
			return nil, err
		}
		s.Key.Type = schema.MeasurementType(measurement)
		s.FirstTime = time.Unix(first, 0)
		s.LastTime = time.Unix(last, 0)
		series = append(series, s)
	}
	return series, rows.Err()
}

// rebind rewrites ? placeholders into the backend's parameter syntax.
func (ps *PointStoreImpl) rebind(query string) string {
	if ps.backend != schema.PostgreSQLBackend {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// getUpsertQuery returns the UPSERT query for the backend.
func (ps *PointStoreImpl) getUpsertQuery() string {
	quotedTableName := quoteTableName(ps.tableName, ps.backend)
	switch ps.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (measurement, station, module, ts, value, written_at) VALUES (?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE value = new.value, written_at = new.written_at`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (measurement, station, module, ts, value, written_at) VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (measurement, station, module, ts) DO UPDATE SET value = EXCLUDED.value, written_at = EXCLUDED.written_at`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT INTO %s (measurement, station, module, ts, value, written_at) VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (measurement, station, module, ts) DO UPDATE SET value = excluded.value, written_at = excluded.written_at`, quotedTableName)
	}
}
