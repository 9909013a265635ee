// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/stationsync/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the read-only store server without starting it.
// This is exposed for unit testing.
func NewMCPServer(version string, store contract.PointStore) *server.MCPServer {
	s := server.NewMCPServer(
		"Station Sync Store Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{store: store}

	// --- 1. Tool: get_store_status ---
	s.AddTool(mcp.NewTool("get_store_status",
		mcp.WithDescription("Report the point store backend, schema version, point and series counts."),
	), h.handleGetStoreStatus)

	// --- 2. Tool: list_series ---
	s.AddTool(mcp.NewTool("list_series",
		mcp.WithDescription("List every stored series with its point count and time span."),
		mcp.WithString("station", mcp.Description("Only include series whose station name starts with this prefix.")),
	), h.handleListSeries)

	// --- 3. Tool: get_latest_point ---
	s.AddTool(mcp.NewTool("get_latest_point",
		mcp.WithDescription("Return the latest stored timestamp of a series and the next start a sync would request."),
		mcp.WithString("station", mcp.Description("Station name."), mcp.Required()),
		mcp.WithString("module", mcp.Description("Module name."), mcp.Required()),
		mcp.WithString("type", mcp.Description("Measurement type, e.g. Temperature."), mcp.Required()),
	), h.handleGetLatestPoint)

	// --- 4. Tool: get_points ---
	s.AddTool(mcp.NewTool("get_points",
		mcp.WithDescription("Return stored points of a series within a Unix time range."),
		mcp.WithString("station", mcp.Description("Station name."), mcp.Required()),
		mcp.WithString("module", mcp.Description("Module name."), mcp.Required()),
		mcp.WithString("type", mcp.Description("Measurement type, e.g. Temperature."), mcp.Required()),
		mcp.WithNumber("from", mcp.Description("Inclusive lower bound as Unix seconds. Defaults to 0.")),
		mcp.WithNumber("to", mcp.Description("Inclusive upper bound as Unix seconds. Defaults to now.")),
		mcp.WithNumber("limit", mcp.Description("Return at most this many of the latest points.")),
	), h.handleGetPoints)

	return s
}

// StartMCPServer starts the store MCP server on stdio.
func StartMCPServer(_ context.Context, version string, store contract.PointStore) error {
	s := NewMCPServer(version, store)
	return server.ServeStdio(s)
}
