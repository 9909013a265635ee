package backfill

import (
	"testing"

	"github.com/huangsam/stationsync/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerateSeries(t *testing.T) {
	series := EnumerateSeries([]schema.Station{homeStation()})
	require.Len(t, series, 3)

	assert.Equal(t, schema.Series{
		Key:      schema.SeriesKey{Station: "Home", Module: "Indoor", Type: schema.TemperatureType},
		DeviceID: "70:ee:50:00:00:01",
	}, series[0])
	assert.Equal(t, schema.SeriesKey{Station: "Home", Module: "Indoor", Type: schema.CO2Type}, series[1].Key)
	assert.Empty(t, series[1].ModuleID)
	assert.Equal(t, schema.Series{
		Key:      schema.SeriesKey{Station: "Home", Module: "Outdoor", Type: schema.HumidityType},
		DeviceID: "70:ee:50:00:00:01",
		ModuleID: "02:00:00:00:00:01",
	}, series[2])
}

func TestEnumerateSeriesEmpty(t *testing.T) {
	assert.Empty(t, EnumerateSeries(nil))
	assert.Empty(t, EnumerateSeries([]schema.Station{{StationName: "Bare"}}))
}

func TestFilterApply(t *testing.T) {
	cabin := schema.Station{ID: "c", StationName: "Cabin", ModuleName: "Main", DataType: []string{"Temperature"}}
	series := EnumerateSeries([]schema.Station{homeStation(), cabin})

	t.Run("zero filter keeps all", func(t *testing.T) {
		assert.Len(t, Filter{}.Apply(series), 4)
	})

	t.Run("station prefix", func(t *testing.T) {
		got := Filter{Station: "Cab"}.Apply(series)
		require.Len(t, got, 1)
		assert.Equal(t, "Cabin", got[0].Key.Station)
	})

	t.Run("types keep order", func(t *testing.T) {
		got := Filter{Types: []schema.MeasurementType{schema.TemperatureType, schema.HumidityType}}.Apply(series)
		require.Len(t, got, 3)
		assert.Equal(t, schema.TemperatureType, got[0].Key.Type)
		assert.Equal(t, schema.HumidityType, got[1].Key.Type)
		assert.Equal(t, "Cabin", got[2].Key.Station)
	})
}
