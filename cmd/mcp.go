package cmd

import (
	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/internal/mcp"
	"github.com/huangsam/stationsync/internal/tsstore"
	"github.com/spf13/cobra"
)

// mcpCmd starts the MCP server over the point store.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server that answers questions about stored measurements.",
	Long: `Start a Model Context Protocol server on stdio. Tools can list the stored series,
read the newest point of a series, fetch a range of points and report store status.

The server only reads from the store. Logs go to stderr so stdout stays reserved
for the protocol.`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store, err := tsstore.NewPointStore(cfg.StoreBackend, cfg.StoreDBConnect)
		if err != nil {
			contract.LogFatal("Cannot open store", err)
		}
		defer func() { _ = store.Close() }()

		logger.Info("starting MCP server", "backend", cfg.StoreBackend)
		if err := mcp.StartMCPServer(rootCtx, version, store); err != nil {
			contract.LogFatal("MCP server error", err)
		}
	},
}
