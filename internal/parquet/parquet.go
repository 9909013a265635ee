// Package parquet provides data structures and functions for exporting stored
// station points to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/stationsync/schema"
	"github.com/parquet-go/parquet-go"
)

// PointRecord is one stored measurement value.
// This struct maps to the station_points database table.
type PointRecord struct {
	// Measurement is the measurement type, e.g. Temperature
	Measurement string `parquet:"measurement,dict,snappy"`

	// Station is the station name tag
	Station string `parquet:"station,dict,snappy"`

	// Module is the module name tag
	Module string `parquet:"module,dict,snappy"`

	// Time is the point timestamp (stored as TIMESTAMP with nanosecond precision)
	Time time.Time `parquet:"time,snappy"`

	// Value is the measured value
	Value float64 `parquet:"value,snappy"`
}

// SeriesRecord summarizes one series present in the store.
type SeriesRecord struct {
	Measurement string    `parquet:"measurement,dict,snappy"`
	Station     string    `parquet:"station,dict,snappy"`
	Module      string    `parquet:"module,dict,snappy"`
	Points      int64     `parquet:"points,snappy"`
	FirstTime   time.Time `parquet:"first_time,snappy"`
	LastTime    time.Time `parquet:"last_time,snappy"`
}

// ConvertPoints maps stored points to Parquet records.
func ConvertPoints(points []schema.Point) []PointRecord {
	records := make([]PointRecord, len(points))
	for i, p := range points {
		records[i] = PointRecord{
			Measurement: string(p.Key.Type),
			Station:     p.Key.Station,
			Module:      p.Key.Module,
			Time:        time.Unix(p.Time, 0).UTC(),
			Value:       p.Value,
		}
	}
	return records
}

// ConvertSeries maps series summaries to Parquet records.
func ConvertSeries(series []schema.SeriesSummary) []SeriesRecord {
	records := make([]SeriesRecord, len(series))
	for i, s := range series {
		records[i] = SeriesRecord{
			Measurement: string(s.Key.Type),
			Station:     s.Key.Station,
			Module:      s.Key.Module,
			Points:      s.Points,
			FirstTime:   s.FirstTime.UTC(),
			LastTime:    s.LastTime.UTC(),
		}
	}
	return records
}

// WritePointsParquet writes a slice of PointRecord structs to a Parquet file.
func WritePointsParquet(data []PointRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteSeriesParquet writes a slice of SeriesRecord structs to a Parquet file.
func WriteSeriesParquet(data []SeriesRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet creates outputPath and writes data with a schema inferred from T's struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	// Close flushes the footer; the file is unreadable without it
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}
