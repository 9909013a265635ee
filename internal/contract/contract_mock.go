package contract

import (
	"context"

	"github.com/huangsam/stationsync/schema"
	"github.com/stretchr/testify/mock"
)

// MockPointStore is a mock implementation of PointStore for testing.
type MockPointStore struct {
	mock.Mock
}

var _ PointStore = &MockPointStore{} // Compile-time check

// LatestPoint implements the PointStore interface.
func (m *MockPointStore) LatestPoint(ctx context.Context, key schema.SeriesKey) (schema.Cursor, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(schema.Cursor), args.Error(1)
}

// WritePoints implements the PointStore interface.
func (m *MockPointStore) WritePoints(ctx context.Context, points []schema.Point) error {
	args := m.Called(ctx, points)
	return args.Error(0)
}

// QueryPoints implements the PointStore interface.
func (m *MockPointStore) QueryPoints(ctx context.Context, key schema.SeriesKey, from, to int64) ([]schema.Point, error) {
	args := m.Called(ctx, key, from, to)
	points, _ := args.Get(0).([]schema.Point)
	return points, args.Error(1)
}

// ListSeries implements the PointStore interface.
func (m *MockPointStore) ListSeries(ctx context.Context) ([]schema.SeriesSummary, error) {
	args := m.Called(ctx)
	series, _ := args.Get(0).([]schema.SeriesSummary)
	return series, args.Error(1)
}

// GetStatus implements the PointStore interface.
func (m *MockPointStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the PointStore interface.
func (m *MockPointStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockMeasurementSource is a mock implementation of MeasurementSource for testing.
type MockMeasurementSource struct {
	mock.Mock
}

var _ MeasurementSource = &MockMeasurementSource{} // Compile-time check

// GetMeasure implements the MeasurementSource interface.
func (m *MockMeasurementSource) GetMeasure(ctx context.Context, req MeasureRequest) (schema.Page, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(schema.Page), args.Error(1)
}

// MockStationSource is a mock implementation of StationSource for testing.
type MockStationSource struct {
	mock.Mock
}

var _ StationSource = &MockStationSource{} // Compile-time check

// GetStationsData implements the StationSource interface.
func (m *MockStationSource) GetStationsData(ctx context.Context, accessToken string) ([]schema.Station, error) {
	args := m.Called(ctx, accessToken)
	stations, _ := args.Get(0).([]schema.Station)
	return stations, args.Error(1)
}

// NopReporter discards all progress.
type NopReporter struct{}

var _ Reporter = NopReporter{} // Compile-time check

func (NopReporter) StationSeen(schema.Station) {}
func (NopReporter) ModuleSeen(schema.Module) {}
func (NopReporter) PageWritten(schema.SeriesKey, int, int64, int64) {}
func (NopReporter) WriteFailed(schema.SeriesKey, error) {}
func (NopReporter) SeriesSkipped(schema.SeriesKey, error) {}
