package backfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/internal/logging"
	"github.com/huangsam/stationsync/internal/netatmo"
	"github.com/huangsam/stationsync/schema"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

// ErrTokenUnavailable is returned when no access token can be obtained.
var ErrTokenUnavailable = errors.New("access token unavailable")

// Options tunes a Runner.
type Options struct {
	PageSize  int
	MaxPages  int
	Workers   int  // 1 processes series sequentially in discovery order
	KeepGoing bool // Mark protocol and store-query failures per series instead of aborting
	Filter    Filter
	Logger    *slog.Logger
}

// Runner performs one complete backfill cycle.
type Runner struct {
	tokens   oauth2.TokenSource
	stations contract.StationSource
	store    contract.PointStore
	reporter contract.Reporter
	pager    *Pager
	locks    *seriesLocks
	opts     Options
	logger   *slog.Logger
}

// NewRunner wires a runner. The store is owned by the caller, who closes it.
func NewRunner(
	tokens oauth2.TokenSource,
	stations contract.StationSource,
	source contract.MeasurementSource,
	store contract.PointStore,
	reporter contract.Reporter,
	opts Options,
) *Runner {
	if reporter == nil {
		reporter = contract.NopReporter{}
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{
		tokens:   tokens,
		stations: stations,
		store:    store,
		reporter: reporter,
		pager:    NewPager(source, store, reporter, opts.PageSize, opts.MaxPages, opts.Logger),
		locks:    newSeriesLocks(),
		opts:     opts,
		logger:   logging.Component(opts.Logger, "runner"),
	}
}

// Run discovers stations, enumerates their series and brings each one up to date.
// The summary holds every series processed so far, also when an error is returned.
func (r *Runner) Run(ctx context.Context) (schema.RunSummary, error) {
	summary := schema.RunSummary{StartTime: time.Now()}

	token, err := r.accessToken()
	if err != nil {
		summary.EndTime = time.Now()
		return summary, err
	}

	stations, err := r.stations.GetStationsData(ctx, token)
	if err != nil {
		summary.EndTime = time.Now()
		return summary, fmt.Errorf("station discovery: %w", err)
	}

	r.logger.Info("stations discovered", "stations", len(stations), "workers", r.opts.Workers)

	if r.opts.Workers == 1 {
		summary.Results, err = r.runSequential(ctx, stations)
	} else {
		summary.Results, err = r.runConcurrent(ctx, stations)
	}
	summary.EndTime = time.Now()

	done, failed, skipped := summary.Counts()
	r.logger.Info("run finished", "done", done, "failed", failed, "skipped", skipped,
		"points", summary.TotalPoints(), "elapsed", summary.EndTime.Sub(summary.StartTime))
	return summary, err
}

// stationSeries reports a station and its modules, then returns its series after filtering.
func (r *Runner) stationSeries(st schema.Station) []schema.Series {
	r.reporter.StationSeen(st)
	for _, m := range st.Modules {
		r.reporter.ModuleSeen(m)
	}
	series := r.opts.Filter.Apply(EnumerateSeries([]schema.Station{st}))
	r.logger.Debug("series enumerated", "station", st.StationName, "series", len(series))
	return series
}

func (r *Runner) runSequential(ctx context.Context, stations []schema.Station) ([]schema.SeriesResult, error) {
	results := make([]schema.SeriesResult, 0)
	for _, st := range stations {
		for _, s := range r.stationSeries(st) {
			res, err := r.processSeries(ctx, s)
			results = append(results, res)
			if r.isFatal(ctx, err) {
				return results, err
			}
		}
	}
	return results, nil
}

// runConcurrent reports each station as its series are handed to the workers,
// so its status lines may interleave with progress from earlier stations.
func (r *Runner) runConcurrent(ctx context.Context, stations []schema.Station) ([]schema.SeriesResult, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	var slots []*schema.SeriesResult
dispatch:
	for _, st := range stations {
		for _, s := range r.stationSeries(st) {
			if gctx.Err() != nil {
				break dispatch
			}
			slot := &schema.SeriesResult{}
			slots = append(slots, slot)
			g.Go(func() error {
				res, err := r.processSeries(gctx, s)
				*slot = res
				if r.isFatal(gctx, err) {
					return err
				}
				return nil
			})
		}
	}
	err := g.Wait()

	results := make([]schema.SeriesResult, 0, len(slots))
	for _, res := range slots {
		results = append(results, *res)
	}
	return results, err
}

// processSeries validates, resolves and fetches one series.
func (r *Runner) processSeries(ctx context.Context, s schema.Series) (schema.SeriesResult, error) {
	key := s.Key
	if _, err := schema.ParseMeasurementType(string(key.Type)); err != nil {
		r.reporter.SeriesSkipped(key, err)
		return schema.SeriesResult{Key: key, Status: schema.SkippedStatus, Error: err.Error()}, nil
	}

	unlock := r.locks.Lock(key)
	defer unlock()

	start, cursor, err := ResolveStart(ctx, r.store, key)
	if err != nil {
		return schema.SeriesResult{Key: key, Status: schema.FailedStatus, Error: err.Error()}, err
	}
	r.logger.Debug("cursor resolved", "series", key.String(), "present", cursor.Valid, "start", start)

	token, err := r.accessToken()
	if err != nil {
		return schema.SeriesResult{Key: key, Status: schema.FailedStatus, Start: start, Error: err.Error()}, err
	}

	res, err := r.pager.Fetch(ctx, s, token, start)
	if err != nil {
		r.logger.Error("series failed", "series", key.String(), "error", err)
	}
	return res, err
}

// isFatal reports whether err ends the run. Write failures and loop guards
// only fail their own series; other errors abort unless KeepGoing is set.
func (r *Runner) isFatal(ctx context.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case ctx.Err() != nil, errors.Is(err, ErrTokenUnavailable):
		return true
	case errors.Is(err, ErrWriteFailed),
		errors.Is(err, ErrPageLimit),
		errors.Is(err, ErrCursorStalled):
		return false
	default:
		return !r.opts.KeepGoing
	}
}

// accessToken returns a valid token, refreshing through the source when expired.
func (r *Runner) accessToken() (string, error) {
	token, err := netatmo.AccessToken(r.tokens)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenUnavailable, err)
	}
	return token, nil
}
