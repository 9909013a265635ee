// Package outwriter has output and writer logic.
package outwriter

import (
	"io"

	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/schema"
)

// OutWriter provides a unified interface for all output operations.
// Results go to the configured output file, or stdout when none is set.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteSummary prints the run summary using the configured output format.
func (ow *OutWriter) WriteSummary(summary schema.RunSummary, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteRunSummary(w, summary, cfg)
	}, "Wrote run summary")
}

// WriteStations prints the discovery tree using the configured output format.
func (ow *OutWriter) WriteStations(stations []schema.Station, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteStations(w, stations, cfg)
	}, "Wrote stations")
}

// WriteSeries prints stored series summaries using the configured output format.
func (ow *OutWriter) WriteSeries(series []schema.SeriesSummary, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteSeriesList(w, series, cfg)
	}, "Wrote series list")
}

// WriteCursor prints a series cursor using the configured output format.
func (ow *OutWriter) WriteCursor(key schema.SeriesKey, cursor schema.Cursor, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteCursor(w, key, cursor, cfg)
	}, "Wrote cursor")
}

// WriteStatus prints the store status; JSON output is machine readable.
func (ow *OutWriter) WriteStatus(status schema.StoreStatus, cfg *contract.Config, printText func(io.Writer, schema.StoreStatus)) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		if cfg.Output == schema.JSONOut {
			return writeJSON(w, status)
		}
		printText(w, status)
		return nil
	}, "Wrote store status")
}
