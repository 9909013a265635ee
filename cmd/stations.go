package cmd

import (
	"net/http"

	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/internal/netatmo"
	"github.com/huangsam/stationsync/internal/outwriter"
	"github.com/spf13/cobra"
)

// stationsCmd prints the station and module tree without touching the store.
var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "List the stations and modules visible to the account.",
	Long: `The stations command shows every station and module the credentials can see,
along with the measurement types each one declares. Nothing is written to the store.

Examples:
  # Show all stations as a table
  stationsync stations

  # Export the discovery tree as JSON
  stationsync stations --output json --output-file stations.json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := contract.ValidateCredentials(cfg.Credentials); err != nil {
			contract.LogFatal("Invalid credentials", err)
		}
		httpClient := &http.Client{Timeout: cfg.RequestTimeout}
		tokens, err := netatmo.NewTokenSource(rootCtx, cfg.APIURL, cfg.Credentials, httpClient)
		if err != nil {
			contract.LogFatal("Cannot authenticate", err)
		}
		token, err := netatmo.AccessToken(tokens)
		if err != nil {
			contract.LogFatal("Cannot authenticate", err)
		}
		stations, err := netatmo.NewClient(cfg.APIURL, httpClient).GetStationsData(rootCtx, token)
		if err != nil {
			contract.LogFatal("Cannot discover stations", err)
		}
		if err := outwriter.NewOutWriter().WriteStations(stations, cfg); err != nil {
			contract.LogFatal("Cannot write stations", err)
		}
	},
}
