package tsstore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExecuteStoreExport(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.WritePoints(ctx, points(indoorTemp,
		schema.Sample{Time: 100, Value: 20},
		schema.Sample{Time: 200, Value: 21},
	)))
	require.NoError(t, store.WritePoints(ctx, points(outdoorHum, schema.Sample{Time: 150, Value: 55})))

	base := filepath.Join(t.TempDir(), "export")
	var buf bytes.Buffer
	require.NoError(t, ExecuteStoreExport(ctx, &buf, store, base))

	assert.Contains(t, buf.String(), "Exported 3 points")
	assert.Contains(t, buf.String(), "Exported 2 series")
	for _, suffix := range []string{".points.parquet", ".series.parquet"} {
		info, err := os.Stat(base + suffix)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestExecuteStoreExportErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("output file required", func(t *testing.T) {
		err := ExecuteStoreExport(ctx, &bytes.Buffer{}, &contract.MockPointStore{}, "")
		assert.Error(t, err)
	})

	t.Run("empty store", func(t *testing.T) {
		store := &contract.MockPointStore{}
		store.On("GetStatus").Return(schema.StoreStatus{Backend: "sqlite", Connected: true}, nil)
		err := ExecuteStoreExport(ctx, &bytes.Buffer{}, store, "out")
		assert.EqualError(t, err, "no points found to export")
	})

	t.Run("query failure", func(t *testing.T) {
		boom := errors.New("gone")
		store := &contract.MockPointStore{}
		store.On("GetStatus").Return(schema.StoreStatus{TotalPoints: 1}, nil)
		store.On("ListSeries", mock.Anything).Return([]schema.SeriesSummary{{Key: indoorTemp}}, nil)
		store.On("QueryPoints", mock.Anything, indoorTemp, mock.Anything, mock.Anything).Return(nil, boom)
		err := ExecuteStoreExport(ctx, &bytes.Buffer{}, store, filepath.Join(t.TempDir(), "x"))
		assert.ErrorIs(t, err, boom)
	})
}
