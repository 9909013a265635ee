package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	store contract.PointStore
}

// pointView is the JSON shape of a point returned to clients.
type pointView struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}

// seriesKeyFromRequest reads and validates the station/module/type arguments.
func seriesKeyFromRequest(request mcp.CallToolRequest) (schema.SeriesKey, error) {
	key := schema.SeriesKey{
		Station: request.GetString("station", ""),
		Module:  request.GetString("module", ""),
	}
	if key.Station == "" || key.Module == "" {
		return key, fmt.Errorf("station and module are required")
	}
	mt, err := schema.ParseMeasurementType(request.GetString("type", ""))
	if err != nil {
		return key, err
	}
	key.Type = mt
	return key, nil
}

func (h *toolHandler) handleGetStoreStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := h.store.GetStatus()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}
	return jsonResult(status), nil
}

func (h *toolHandler) handleListSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	series, err := h.store.ListSeries(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing series failed: %v", err)), nil
	}

	if prefix := request.GetString("station", ""); prefix != "" {
		filtered := make([]schema.SeriesSummary, 0, len(series))
		for _, s := range series {
			if strings.HasPrefix(s.Key.Station, prefix) {
				filtered = append(filtered, s)
			}
		}
		series = filtered
	}
	return jsonResult(series), nil
}

func (h *toolHandler) handleGetLatestPoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := seriesKeyFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid series: %v", err)), nil
	}

	cursor, err := h.store.LatestPoint(ctx, key)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cursor lookup failed: %v", err)), nil
	}

	result := map[string]any{
		"key":        key,
		"present":    cursor.Valid,
		"next_start": cursor.NextStart(),
	}
	if cursor.Valid {
		result["latest"] = cursor.Time
	}
	return jsonResult(result), nil
}

func (h *toolHandler) handleGetPoints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := seriesKeyFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid series: %v", err)), nil
	}

	from := int64(request.GetFloat("from", 0))
	to := int64(request.GetFloat("to", float64(time.Now().Unix())))
	if to < from {
		return mcp.NewToolResultError("to must not be before from"), nil
	}

	points, err := h.store.QueryPoints(ctx, key, from, to)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	if limit := request.GetInt("limit", 0); limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}

	views := make([]pointView, len(points))
	for i, p := range points {
		views[i] = pointView{Time: p.Time, Value: p.Value}
	}
	return jsonResult(map[string]any{"key": key, "points": views}), nil
}
