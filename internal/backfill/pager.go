package backfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/internal/logging"
	"github.com/huangsam/stationsync/schema"
)

// Errors that end a series' fetch cycle.
var (
	ErrWriteFailed   = errors.New("write failed")
	ErrPageLimit     = errors.New("page limit reached")
	ErrCursorStalled = errors.New("cursor did not advance")
)

// Pager walks one series forward page by page until the upstream returns
// a page smaller than the page size.
type Pager struct {
	source   contract.MeasurementSource
	store    contract.PointStore
	reporter contract.Reporter
	pageSize int
	maxPages int
	logger   *slog.Logger
}

// NewPager creates a pager. A non-positive maxPages disables the page guard.
func NewPager(source contract.MeasurementSource, store contract.PointStore, reporter contract.Reporter, pageSize, maxPages int, logger *slog.Logger) *Pager {
	if reporter == nil {
		reporter = contract.NopReporter{}
	}
	if pageSize <= 0 {
		pageSize = schema.DefaultMaxPageSize
	}
	return &Pager{
		source:   source,
		store:    store,
		reporter: reporter,
		pageSize: pageSize,
		maxPages: maxPages,
		logger:   logging.Component(logger, "pager"),
	}
}

// Fetch requests pages for series starting at start and writes each one
// before asking for the next. The returned result is complete even on error.
func (p *Pager) Fetch(ctx context.Context, series schema.Series, token string, start int64) (schema.SeriesResult, error) {
	key := series.Key
	result := schema.SeriesResult{Key: key, Start: start}

	fail := func(err error) (schema.SeriesResult, error) {
		result.Status = schema.FailedStatus
		result.Error = err.Error()
		return result, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		if p.maxPages > 0 && result.Pages >= p.maxPages {
			return fail(fmt.Errorf("%w for %s after %d pages", ErrPageLimit, key, result.Pages))
		}

		page, err := p.source.GetMeasure(ctx, contract.MeasureRequest{
			AccessToken: token,
			DeviceID:    series.DeviceID,
			ModuleID:    series.ModuleID,
			Type:        key.Type,
			DateBegin:   start,
		})
		if err != nil {
			return fail(fmt.Errorf("fetch %s from %d: %w", key, start, err))
		}
		result.Pages++

		points, minTime, maxTime := p.toPoints(key, page, start)
		p.logger.Debug("page fetched", "series", key.String(), "start", start, "raw", page.RawCount, "points", len(points))

		if len(points) > 0 {
			if err := p.store.WritePoints(ctx, points); err != nil {
				p.reporter.WriteFailed(key, err)
				return fail(fmt.Errorf("%w for %s: %w", ErrWriteFailed, key, err))
			}
			p.reporter.PageWritten(key, len(points), minTime, maxTime)
			result.Track(minTime, maxTime, len(points))
		}

		if !page.Full(p.pageSize) {
			result.Status = schema.DoneStatus
			return result, nil
		}

		// Null-only timestamps still move the cursor forward
		last := page.LastTime
		if len(points) > 0 && maxTime > last {
			last = maxTime
		}
		if last+1 <= start {
			return fail(fmt.Errorf("%w for %s at %d", ErrCursorStalled, key, start))
		}
		start = last + 1
	}
}

// toPoints tags the page entries with key, dropping any older than start.
// The bounds are only meaningful when at least one point is returned.
func (p *Pager) toPoints(key schema.SeriesKey, page schema.Page, start int64) ([]schema.Point, int64, int64) {
	points := make([]schema.Point, 0, len(page.Entries))
	var minTime, maxTime int64
	dropped := 0

	for _, e := range page.Entries {
		if e.Time < start {
			dropped++
			continue
		}
		if len(points) == 0 || e.Time < minTime {
			minTime = e.Time
		}
		if len(points) == 0 || e.Time > maxTime {
			maxTime = e.Time
		}
		points = append(points, schema.Point{Key: key, Time: e.Time, Value: e.Value})
	}

	if dropped > 0 {
		p.logger.Warn("dropped entries older than requested start", "series", key.String(), "start", start, "dropped", dropped)
	}
	return points, minTime, maxTime
}
