// Package cmd defines the command-line interface for stationsync.
package cmd

import (
	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(stationsCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeSeriesCmd)
	storeCmd.AddCommand(storeLatestCmd)
	storeCmd.AddCommand(storeExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("client-id", "", "Netatmo application client id")
	rootCmd.PersistentFlags().String("client-secret", "", "Netatmo application client secret (prefer STATIONSYNC_CLIENT_SECRET)")
	rootCmd.PersistentFlags().String("username", "", "Netatmo account username for the password grant")
	rootCmd.PersistentFlags().String("password", "", "Netatmo account password (prefer STATIONSYNC_PASSWORD)")
	rootCmd.PersistentFlags().String("refresh-token", "", "OAuth2 refresh token, used instead of username and password")
	rootCmd.PersistentFlags().String("api-url", contract.DefaultAPIURL, "Base URL of the Netatmo API")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string (SQLite path, or e.g. user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("station", "", "Only process stations whose name starts with this prefix")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", string(schema.TextLog), "Log format: text or json")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of syncCmd to Viper
	syncCmd.Flags().Int("page-size", schema.DefaultMaxPageSize, "Entries in a full upstream page; a full page triggers the next request")
	syncCmd.Flags().Int("max-pages", contract.DefaultMaxPages, "Maximum pages fetched per series in one run")
	syncCmd.Flags().Int("workers", contract.DefaultWorkers, "Number of series processed concurrently (1 keeps discovery order)")
	syncCmd.Flags().String("request-timeout", contract.DefaultRequestTimeout.String(), "Timeout for each upstream HTTP request")
	syncCmd.Flags().String("types", "", "Comma-separated measurement types to sync (default: all declared)")
	syncCmd.Flags().Bool("keep-going", false, "Mark series failed on protocol or store errors instead of aborting")
	if err := viper.BindPFlags(syncCmd.Flags()); err != nil {
		contract.LogFatal("Error binding sync flags", err)
	}

	// Bind all flags of storeLatestCmd to Viper
	storeLatestCmd.Flags().String("module", "", "Module name of the series")
	storeLatestCmd.Flags().String("type", "", "Measurement type of the series")
	if err := viper.BindPFlags(storeLatestCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store latest flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
