// Package backfill drives the incremental fetch: for every series it resolves
// the stored cursor, pages through newer upstream data and writes it back.
package backfill

import (
	"context"
	"fmt"

	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/schema"
)

// ResolveStart returns the first timestamp to request for key: 0 when the
// store has no points for it, otherwise one second past the latest point.
func ResolveStart(ctx context.Context, store contract.PointStore, key schema.SeriesKey) (int64, schema.Cursor, error) {
	cursor, err := store.LatestPoint(ctx, key)
	if err != nil {
		return 0, schema.Cursor{}, fmt.Errorf("resolve cursor for %s: %w", key, err)
	}
	return cursor.NextStart(), cursor, nil
}
