package tsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/internal/parquet"
	"github.com/huangsam/stationsync/schema"
)

// ExecuteStoreExport writes every stored point, and a per-series summary, to Parquet files
// named after outputFile.
func ExecuteStoreExport(ctx context.Context, w io.Writer, store contract.PointStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalPoints == 0 {
		return errors.New("no points found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total points: %d\n", status.TotalPoints)

	series, err := store.ListSeries(ctx)
	if err != nil {
		return err
	}

	var points []schema.Point
	for _, s := range series {
		sp, err := store.QueryPoints(ctx, s.Key, math.MinInt64, math.MaxInt64)
		if err != nil {
			return err
		}
		points = append(points, sp...)
	}

	pointsFile := outputFile + ".points.parquet"
	if err := parquet.WritePointsParquet(parquet.ConvertPoints(points), pointsFile); err != nil {
		return fmt.Errorf("failed to write points: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d points to: %s\n", len(points), pointsFile)

	seriesFile := outputFile + ".series.parquet"
	if err := parquet.WriteSeriesParquet(parquet.ConvertSeries(series), seriesFile); err != nil {
		return fmt.Errorf("failed to write series: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d series to: %s\n", len(series), seriesFile)
	return nil
}
