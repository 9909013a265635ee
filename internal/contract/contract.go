// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/stationsync/schema"
)

// PointStore defines the time-series store the backfill loop reads cursors from
// and writes pages to. This allows the core loop to be tested without a database.
type PointStore interface {
	// LatestPoint returns the most recent persisted point time for the series.
	// The returned cursor is not Valid when the series has no points.
	LatestPoint(ctx context.Context, key schema.SeriesKey) (schema.Cursor, error)

	// WritePoints upserts all points in one batch at second precision.
	// Re-writing an existing key+time overwrites the value.
	WritePoints(ctx context.Context, points []schema.Point) error

	// QueryPoints returns the points of a series with from <= time <= to, oldest first.
	QueryPoints(ctx context.Context, key schema.SeriesKey, from, to int64) ([]schema.Point, error)

	// ListSeries summarizes every series present in the store.
	ListSeries(ctx context.Context) ([]schema.SeriesSummary, error)

	// GetStatus returns status information about the store.
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// MeasureRequest is one call to the upstream measure endpoint.
type MeasureRequest struct {
	AccessToken string
	DeviceID    string
	ModuleID    string // Empty for station-level series
	Type        schema.MeasurementType
	DateBegin   int64
}

// MeasurementSource returns pages of timestamp/value pairs for a series.
type MeasurementSource interface {
	GetMeasure(ctx context.Context, req MeasureRequest) (schema.Page, error)
}

// StationSource returns the station/module tree visible to the credential.
type StationSource interface {
	GetStationsData(ctx context.Context, accessToken string) ([]schema.Station, error)
}

// Reporter receives human-readable progress as a run advances.
// Implementations must be safe for concurrent use when workers > 1.
type Reporter interface {
	StationSeen(station schema.Station)
	ModuleSeen(module schema.Module)
	PageWritten(key schema.SeriesKey, count int, minTime, maxTime int64)
	WriteFailed(key schema.SeriesKey, err error)
	SeriesSkipped(key schema.SeriesKey, err error)
}
