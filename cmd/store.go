package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/internal/outwriter"
	"github.com/huangsam/stationsync/internal/tsstore"
	"github.com/huangsam/stationsync/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeCmd is the parent command for point store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the point store.",
	Long:  `The store command provides subcommands to inspect, export and manage the time-series point store.`,
}

// storeStatusCmd shows point store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show point store status and statistics.",
	Long: `Display information about the point store including backend type, connection status,
schema version, number of points and series, and the stored time range.

Examples:
  # Show status of the default SQLite store
  stationsync store status

  # Show status as JSON
  stationsync store status --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store, err := tsstore.NewPointStore(cfg.StoreBackend, cfg.StoreDBConnect)
		if err != nil {
			contract.LogFatal("Cannot open store", err)
		}
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Cannot get store status", err)
		}
		if err := outwriter.NewOutWriter().WriteStatus(status, cfg, tsstore.PrintStoreStatus); err != nil {
			contract.LogFatal("Cannot write store status", err)
		}
	},
}

// storeClearCmd removes every stored point.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every stored point.",
	Long: `Delete the point store. For SQLite the database file is removed. For MySQL and
PostgreSQL the points and migrations tables are dropped.

The next sync starts every series from the beginning.`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := tsstore.ClearStore(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Cannot clear store", err)
		}
		fmt.Printf("Point store cleared (%s backend)\n", cfg.StoreBackend)
	},
}

// storeMigrateCmd manages schema migrations.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run point store schema migrations.",
	Long: `Migrate the point store schema to the latest version or to a specific version.
Opening the store already applies pending migrations, so this is mostly useful for
rolling back or inspecting a database before a sync.

Examples:
  # Migrate to the latest version
  stationsync store migrate

  # Roll back all migrations
  stationsync store migrate --target-version 0`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := tsstore.MigrateStore(os.Stdout, cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Cannot migrate store", err)
		}
	},
}

// storeSeriesCmd lists the series present in the store.
var storeSeriesCmd = &cobra.Command{
	Use:   "series",
	Short: "List every series present in the store.",
	Long: `Show each stored series with its point count and the time range it covers.

Examples:
  stationsync store series
  stationsync store series --output csv --output-file series.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store, err := tsstore.NewPointStore(cfg.StoreBackend, cfg.StoreDBConnect)
		if err != nil {
			contract.LogFatal("Cannot open store", err)
		}
		defer func() { _ = store.Close() }()

		series, err := store.ListSeries(rootCtx)
		if err != nil {
			contract.LogFatal("Cannot list series", err)
		}
		if err := outwriter.NewOutWriter().WriteSeries(series, cfg); err != nil {
			contract.LogFatal("Cannot write series", err)
		}
	},
}

// storeLatestCmd prints the resume cursor of one series.
var storeLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the newest stored point of one series.",
	Long: `Show the newest stored time of a series and the start time the next sync
will request for it. The series is named by station, module and type.

Examples:
  stationsync store latest --station Home --module Indoor --type Temperature`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		key, err := latestSeriesKey()
		if err != nil {
			contract.LogFatal("Invalid series", err)
		}

		store, err := tsstore.NewPointStore(cfg.StoreBackend, cfg.StoreDBConnect)
		if err != nil {
			contract.LogFatal("Cannot open store", err)
		}
		defer func() { _ = store.Close() }()

		cursor, err := store.LatestPoint(rootCtx, key)
		if err != nil {
			contract.LogFatal("Cannot query latest point", err)
		}
		if err := outwriter.NewOutWriter().WriteCursor(key, cursor, cfg); err != nil {
			contract.LogFatal("Cannot write latest point", err)
		}
	},
}

// latestSeriesKey builds the series key from the station, module and type flags.
func latestSeriesKey() (schema.SeriesKey, error) {
	module := viper.GetString("module")
	if cfg.StationFilter == "" || module == "" {
		return schema.SeriesKey{}, errors.New("--station and --module are required")
	}
	mt, err := schema.ParseMeasurementType(viper.GetString("type"))
	if err != nil {
		return schema.SeriesKey{}, err
	}
	return schema.SeriesKey{Station: cfg.StationFilter, Module: module, Type: mt}, nil
}

// storeExportCmd exports stored points to Parquet.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored points and series to Parquet files.",
	Long: `Export every stored point and the per-series summary to Parquet files for
analysis in tools like DuckDB, Spark or pandas.

Two files are written: <output-file>.points.parquet and <output-file>.series.parquet.

Examples:
  stationsync store export --output-file weather`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.OutputFile == "" {
			contract.LogFatal("Cannot export store", errors.New("--output-file is required"))
		}

		store, err := tsstore.NewPointStore(cfg.StoreBackend, cfg.StoreDBConnect)
		if err != nil {
			contract.LogFatal("Cannot open store", err)
		}
		defer func() { _ = store.Close() }()

		if err := tsstore.ExecuteStoreExport(rootCtx, os.Stdout, store, cfg.OutputFile); err != nil {
			contract.LogFatal("Cannot export store", err)
		}
	},
}
