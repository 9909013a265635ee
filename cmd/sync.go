package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/huangsam/stationsync/internal/backfill"
	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/internal/netatmo"
	"github.com/huangsam/stationsync/internal/outwriter"
	"github.com/huangsam/stationsync/internal/tsstore"
	"github.com/huangsam/stationsync/schema"
	"github.com/spf13/cobra"
)

// syncCmd runs one backfill cycle over every visible station.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Bring every station series up to date in the store.",
	Long: `The sync command discovers every station and module visible to the account,
resumes each measurement series one second after its newest stored point, and
writes page after page of samples until the upstream API returns a short page.

Examples:
  # Sync everything into the default SQLite store
  stationsync sync

  # Sync only the Home station's temperature and humidity into PostgreSQL
  stationsync sync --station Home --types Temperature,Humidity \
    --store-backend postgresql --store-db-connect "host=localhost user=netatmo dbname=weather"

  # Dry run with four workers, printing the summary as JSON
  stationsync sync --store-backend none --workers 4 --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runSync(); err != nil {
			contract.LogFatal("Cannot complete sync", err)
		}
	},
}

// runSync wires the API client, the store and the runner for one cycle.
func runSync() error {
	if err := contract.ValidateCredentials(cfg.Credentials); err != nil {
		return err
	}

	store, err := tsstore.NewPointStore(cfg.StoreBackend, cfg.StoreDBConnect)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	tokens, err := netatmo.NewTokenSource(rootCtx, cfg.APIURL, cfg.Credentials, httpClient)
	if err != nil {
		return fmt.Errorf("%w: %w", backfill.ErrTokenUnavailable, err)
	}
	client := netatmo.NewClient(cfg.APIURL, httpClient)

	runner := backfill.NewRunner(tokens, client, client, store, outwriter.NewConsoleReporter(progressWriter(), cfg.UseColors), backfill.Options{
		PageSize:  cfg.PageSize,
		MaxPages:  cfg.MaxPages,
		Workers:   cfg.Workers,
		KeepGoing: cfg.KeepGoing,
		Filter:    backfill.Filter{Station: cfg.StationFilter, Types: cfg.Types},
		Logger:    logger,
	})

	summary, runErr := runner.Run(rootCtx)
	if err := outwriter.NewOutWriter().WriteSummary(summary, cfg); err != nil {
		contract.LogWarn("Cannot write run summary", err)
	}
	if runErr != nil {
		return runErr
	}
	if _, failed, _ := summary.Counts(); failed > 0 {
		return fmt.Errorf("%d of %d series failed", failed, len(summary.Results))
	}
	return nil
}

// progressWriter keeps progress lines out of machine-readable output on stdout.
func progressWriter() io.Writer {
	if cfg.Output == schema.TextOut || cfg.OutputFile != "" {
		return os.Stdout
	}
	return os.Stderr
}
