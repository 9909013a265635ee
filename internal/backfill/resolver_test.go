package backfill

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestResolveStart(t *testing.T) {
	key := schema.SeriesKey{Station: "Home", Module: "Indoor", Type: schema.TemperatureType}

	tests := []struct {
		name     string
		cursor   schema.Cursor
		expected int64
	}{
		{"absent series starts at zero", schema.Cursor{}, 0},
		{"present series starts one second later", schema.Cursor{Time: 1700000000, Valid: true}, 1700000001},
		{"point at epoch is not absent", schema.Cursor{Time: 0, Valid: true}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &contract.MockPointStore{}
			store.On("LatestPoint", mock.Anything, key).Return(tt.cursor, nil).Once()

			start, cursor, err := ResolveStart(context.Background(), store, key)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, start)
			assert.Equal(t, tt.cursor, cursor)
			store.AssertExpectations(t)
		})
	}

	t.Run("store error propagates", func(t *testing.T) {
		boom := errors.New("connection refused")
		store := &contract.MockPointStore{}
		store.On("LatestPoint", mock.Anything, key).Return(schema.Cursor{}, boom).Once()

		_, _, err := ResolveStart(context.Background(), store, key)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), key.String())
	})
}
