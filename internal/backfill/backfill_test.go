package backfill

import (
	"fmt"
	"sync"

	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/schema"
)

// recordingReporter captures progress callbacks for assertions.
type recordingReporter struct {
	mu      sync.Mutex
	events  []string
	written map[schema.SeriesKey]int
}

var _ contract.Reporter = &recordingReporter{} // Compile-time check

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{written: make(map[schema.SeriesKey]int)}
}

func (r *recordingReporter) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recordingReporter) StationSeen(s schema.Station) { r.record("station %s", s.StationName) }
func (r *recordingReporter) ModuleSeen(m schema.Module)   { r.record("module %s", m.ModuleName) }

func (r *recordingReporter) PageWritten(key schema.SeriesKey, count int, minTime, maxTime int64) {
	r.mu.Lock()
	r.written[key] += count
	r.mu.Unlock()
	r.record("wrote %s %d [%d,%d]", key, count, minTime, maxTime)
}

func (r *recordingReporter) WriteFailed(key schema.SeriesKey, _ error) {
	r.record("write failed %s", key)
}

func (r *recordingReporter) SeriesSkipped(key schema.SeriesKey, _ error) {
	r.record("skipped %s", key)
}

func (r *recordingReporter) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// samples builds n entries starting at first, step seconds apart.
func samples(first int64, n int, step int64) []schema.Sample {
	out := make([]schema.Sample, n)
	for i := range out {
		out[i] = schema.Sample{Time: first + int64(i)*step, Value: float64(i)}
	}
	return out
}

// pageOf wraps entries into a page where every upstream entry had a value.
func pageOf(entries []schema.Sample) schema.Page {
	page := schema.Page{Entries: entries, RawCount: len(entries)}
	for _, e := range entries {
		page.LastTime = max(page.LastTime, e.Time)
	}
	return page
}

func homeStation() schema.Station {
	return schema.Station{
		ID:          "70:ee:50:00:00:01",
		StationName: "Home",
		ModuleName:  "Indoor",
		DataType:    []string{"Temperature", "CO2"},
		Modules: []schema.Module{
			{ID: "02:00:00:00:00:01", ModuleName: "Outdoor", DataType: []string{"Humidity"}},
		},
	}
}
