package backfill

import (
	"slices"
	"strings"

	"github.com/huangsam/stationsync/schema"
)

// EnumerateSeries expands the discovery tree into series, in discovery order:
// each station's own declared types first, tagged with the station's module
// name, then every module's types.
func EnumerateSeries(stations []schema.Station) []schema.Series {
	var series []schema.Series
	for _, st := range stations {
		for _, t := range st.DataType {
			series = append(series, schema.Series{
				Key:      schema.SeriesKey{Station: st.StationName, Module: st.ModuleName, Type: schema.MeasurementType(t)},
				DeviceID: st.ID,
			})
		}
		for _, m := range st.Modules {
			for _, t := range m.DataType {
				series = append(series, schema.Series{
					Key:      schema.SeriesKey{Station: st.StationName, Module: m.ModuleName, Type: schema.MeasurementType(t)},
					DeviceID: st.ID,
					ModuleID: m.ID,
				})
			}
		}
	}
	return series
}

// Filter narrows the enumerated series. Zero values keep everything.
type Filter struct {
	Station string                   // Station name prefix
	Types   []schema.MeasurementType // Allowed types
}

// Apply returns the series that pass the filter, preserving order.
func (f Filter) Apply(series []schema.Series) []schema.Series {
	if f.Station == "" && len(f.Types) == 0 {
		return series
	}
	out := make([]schema.Series, 0, len(series))
	for _, s := range series {
		if f.Station != "" && !strings.HasPrefix(s.Key.Station, f.Station) {
			continue
		}
		if len(f.Types) > 0 && !slices.Contains(f.Types, s.Key.Type) {
			continue
		}
		out = append(out, s)
	}
	return out
}
