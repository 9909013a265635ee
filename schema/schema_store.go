package schema

import (
	"fmt"
	"time"
)

// SeriesKey identifies one time-ordered sequence of values in the store.
type SeriesKey struct {
	Station string          `json:"station"`
	Module  string          `json:"module"`
	Type    MeasurementType `json:"type"`
}

// String renders the key as station/module/type.
func (k SeriesKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Station, k.Module, k.Type)
}

// Point is one persisted value. Time is a Unix timestamp in seconds.
type Point struct {
	Key   SeriesKey
	Time  int64
	Value float64
}

// Sample is one timestamp/value pair returned by the upstream source.
type Sample struct {
	Time  int64
	Value float64
}

// Page is the result of one upstream measure call.
type Page struct {
	Entries  []Sample // Ordered by Time ascending; null values are omitted
	RawCount int      // Number of timestamps the upstream returned, nulls included
	LastTime int64    // Largest timestamp the upstream returned, nulls included
}

// Full reports whether the page hit the size cap, meaning more data may follow.
// A page larger than the cap is treated as full too.
func (p Page) Full(maxSize int) bool {
	return maxSize > 0 && p.RawCount >= maxSize
}

// Cursor is the timestamp of the most recently persisted point for a series.
// Valid is false when the series has no points yet.
type Cursor struct {
	Time  int64
	Valid bool
}

// NextStart returns the first second not yet persisted: 0 when absent, Time+1 otherwise.
func (c Cursor) NextStart() int64 {
	if !c.Valid {
		return 0
	}
	return c.Time + 1
}

// Series is one unit of work for the pagination loop.
type Series struct {
	Key      SeriesKey
	DeviceID string // Station identifier
	ModuleID string // Empty for station-level series
}

// SeriesSummary describes one series already present in the store.
type SeriesSummary struct {
	Key       SeriesKey `json:"key"`
	Points    int64     `json:"points"`
	FirstTime time.Time `json:"first_time"`
	LastTime  time.Time `json:"last_time"`
}

// SeriesResult is the outcome of one series' fetch cycle.
type SeriesResult struct {
	Key     SeriesKey    `json:"key"`
	Status  SeriesStatus `json:"status"`
	Start   int64        `json:"start"`
	Pages   int          `json:"pages"`
	Points  int          `json:"points"`
	MinTime int64        `json:"min_time,omitempty"`
	MaxTime int64        `json:"max_time,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Track folds a written page's bounds into the result.
func (r *SeriesResult) Track(minTime, maxTime int64, count int) {
	if r.Points == 0 || minTime < r.MinTime {
		r.MinTime = minTime
	}
	if r.Points == 0 || maxTime > r.MaxTime {
		r.MaxTime = maxTime
	}
	r.Points += count
}

// RunSummary aggregates every series result of one run.
type RunSummary struct {
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
	Results   []SeriesResult `json:"results"`
}

// Counts returns the number of done, failed and skipped series.
func (s RunSummary) Counts() (done, failed, skipped int) {
	for _, r := range s.Results {
		switch r.Status {
		case DoneStatus:
			done++
		case FailedStatus:
			failed++
		case SkippedStatus:
			skipped++
		}
	}
	return done, failed, skipped
}

// TotalPoints returns the number of points written during the run.
func (s RunSummary) TotalPoints() int {
	total := 0
	for _, r := range s.Results {
		total += r.Points
	}
	return total
}
