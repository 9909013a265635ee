package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMeasurementType(t *testing.T) {
	for _, mt := range AllMeasurementTypes {
		got, err := ParseMeasurementType(string(mt))
		require.NoError(t, err)
		assert.Equal(t, mt, got)
		assert.True(t, got.IsValid())
	}

	tests := []string{"", "temperature", "GustStrength", "Wind", "co2"}
	for _, in := range tests {
		t.Run("rejects "+in, func(t *testing.T) {
			_, err := ParseMeasurementType(in)
			assert.ErrorIs(t, err, ErrUnknownMeasurementType)
		})
	}
}

func TestAllMeasurementTypesMatchAllowList(t *testing.T) {
	assert.Len(t, AllMeasurementTypes, len(ValidMeasurementTypes))
}

func TestCursorNextStart(t *testing.T) {
	assert.Equal(t, int64(0), Cursor{}.NextStart())
	assert.Equal(t, int64(1), Cursor{Time: 0, Valid: true}.NextStart(), "a point at epoch 0 is still a point")
	assert.Equal(t, int64(1700000001), Cursor{Time: 1700000000, Valid: true}.NextStart())
}

func TestPageFull(t *testing.T) {
	assert.True(t, Page{RawCount: DefaultMaxPageSize}.Full(DefaultMaxPageSize))
	assert.False(t, Page{RawCount: DefaultMaxPageSize - 1}.Full(DefaultMaxPageSize))
	assert.True(t, Page{RawCount: DefaultMaxPageSize + 1}.Full(DefaultMaxPageSize))
	assert.False(t, Page{}.Full(0))
}

func TestSeriesResultTrack(t *testing.T) {
	var r SeriesResult
	r.Track(100, 200, 3)
	r.Track(201, 300, 2)
	assert.Equal(t, int64(100), r.MinTime)
	assert.Equal(t, int64(300), r.MaxTime)
	assert.Equal(t, 5, r.Points)
}

func TestRunSummaryCounts(t *testing.T) {
	s := RunSummary{Results: []SeriesResult{
		{Status: DoneStatus, Points: 4},
		{Status: DoneStatus, Points: 1},
		{Status: FailedStatus},
		{Status: SkippedStatus},
	}}
	done, failed, skipped := s.Counts()
	assert.Equal(t, 2, done)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 5, s.TotalPoints())
}

func TestSeriesKeyString(t *testing.T) {
	k := SeriesKey{Station: "Home", Module: "Garden", Type: TemperatureType}
	assert.Equal(t, "Home/Garden/Temperature", k.String())
}
