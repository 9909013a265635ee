package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/stationsync/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointRecordStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(PointRecord))
	require.NotNil(t, s)

	for _, colName := range []string{"measurement", "station", "module", "time", "value"} {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col)
	}
}

func TestConvertPoints(t *testing.T) {
	key := schema.SeriesKey{Station: "Home", Module: "Outdoor", Type: schema.TemperatureType}
	records := ConvertPoints([]schema.Point{{Key: key, Time: 1700000000, Value: 4.5}})

	require.Len(t, records, 1)
	assert.Equal(t, "Temperature", records[0].Measurement)
	assert.Equal(t, "Home", records[0].Station)
	assert.Equal(t, "Outdoor", records[0].Module)
	assert.Equal(t, int64(1700000000), records[0].Time.Unix())
	assert.Equal(t, 4.5, records[0].Value)
}

func TestWritePointsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "points.parquet")
	key := schema.SeriesKey{Station: "Home", Module: "Indoor", Type: schema.CO2Type}
	data := ConvertPoints([]schema.Point{
		{Key: key, Time: 1000, Value: 410},
		{Key: key, Time: 1300, Value: 415},
		{Key: key, Time: 1600, Value: 430},
	})

	require.NoError(t, WritePointsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[PointRecord](file)
	defer func() { _ = reader.Close() }()

	readData := make([]PointRecord, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)
	for i := range data {
		assert.Equal(t, data[i].Measurement, readData[i].Measurement)
		assert.Equal(t, data[i].Time.Unix(), readData[i].Time.Unix())
		assert.Equal(t, data[i].Value, readData[i].Value)
	}
}

func TestWriteSeriesParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "series.parquet")
	data := ConvertSeries([]schema.SeriesSummary{{
		Key:       schema.SeriesKey{Station: "Home", Module: "Indoor", Type: schema.NoiseType},
		Points:    12,
		FirstTime: time.Unix(100, 0),
		LastTime:  time.Unix(900, 0),
	}})

	require.NoError(t, WriteSeriesParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[SeriesRecord](file)
	defer func() { _ = reader.Close() }()
	assert.Equal(t, int64(1), reader.NumRows())
}

func TestWriteParquetBadPath(t *testing.T) {
	err := WritePointsParquet(nil, filepath.Join(t.TempDir(), "missing", "points.parquet"))
	assert.Error(t, err)
}
