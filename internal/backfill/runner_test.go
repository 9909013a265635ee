package backfill

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type failingTokenSource struct{}

func (failingTokenSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("invalid_grant")
}

func staticTokens() oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"})
}

type runnerFixture struct {
	stations *contract.MockStationSource
	source   *contract.MockMeasurementSource
	store    *contract.MockPointStore
	reporter *recordingReporter
}

func newRunnerFixture(stations ...schema.Station) *runnerFixture {
	f := &runnerFixture{
		stations: &contract.MockStationSource{},
		source:   &contract.MockMeasurementSource{},
		store:    &contract.MockPointStore{},
		reporter: newRecordingReporter(),
	}
	f.stations.On("GetStationsData", mock.Anything, "tok").Return(stations, nil)
	return f
}

func (f *runnerFixture) runner(opts Options) *Runner {
	return NewRunner(staticTokens(), f.stations, f.source, f.store, f.reporter, opts)
}

func requestFor(key schema.SeriesKey) any {
	return mock.MatchedBy(func(req contract.MeasureRequest) bool {
		return req.Type == key.Type && req.AccessToken == "tok"
	})
}

func TestRunnerProcessesSeriesInOrder(t *testing.T) {
	f := newRunnerFixture(homeStation())
	keys := EnumerateSeries([]schema.Station{homeStation()})

	for _, s := range keys {
		f.store.On("LatestPoint", mock.Anything, s.Key).Return(schema.Cursor{}, nil).Once()
		f.source.On("GetMeasure", mock.Anything, requestFor(s.Key)).Return(pageOf(samples(100, 2, 60)), nil).Once()
	}
	f.store.On("WritePoints", mock.Anything, mock.Anything).Return(nil).Times(3)

	summary, err := f.runner(Options{PageSize: 10}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 3)
	for i, res := range summary.Results {
		assert.Equal(t, keys[i].Key, res.Key)
		assert.Equal(t, schema.DoneStatus, res.Status)
		assert.Equal(t, 2, res.Points)
	}
	assert.Equal(t, 6, summary.TotalPoints())
	assert.False(t, summary.EndTime.Before(summary.StartTime))

	events := f.reporter.Events()
	assert.Equal(t, "station Home", events[0])
	assert.Equal(t, "module Outdoor", events[1])
	f.store.AssertExpectations(t)
	f.source.AssertExpectations(t)
}

func TestRunnerReportsEachStationBeforeItsSeries(t *testing.T) {
	home := schema.Station{ID: "a", StationName: "Home", ModuleName: "Indoor", DataType: []string{"Temperature"},
		Modules: []schema.Module{{ID: "m", ModuleName: "Outdoor", DataType: []string{"Humidity"}}}}
	cabin := schema.Station{ID: "b", StationName: "Cabin", ModuleName: "Lounge", DataType: []string{"CO2"}}
	f := newRunnerFixture(home, cabin)

	f.store.On("LatestPoint", mock.Anything, mock.Anything).Return(schema.Cursor{}, nil)
	f.source.On("GetMeasure", mock.Anything, mock.Anything).Return(pageOf(samples(100, 1, 60)), nil)
	f.store.On("WritePoints", mock.Anything, mock.Anything).Return(nil)

	summary, err := f.runner(Options{PageSize: 10}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 3)

	assert.Equal(t, []string{
		"station Home",
		"module Outdoor",
		"wrote Home/Indoor/Temperature 1 [100,100]",
		"wrote Home/Outdoor/Humidity 1 [100,100]",
		"station Cabin",
		"wrote Cabin/Lounge/CO2 1 [100,100]",
	}, f.reporter.Events())
}

func TestRunnerResumesFromCursor(t *testing.T) {
	st := schema.Station{ID: "d", StationName: "Home", ModuleName: "Indoor", DataType: []string{"Pressure"}}
	key := schema.SeriesKey{Station: "Home", Module: "Indoor", Type: schema.PressureType}
	f := newRunnerFixture(st)

	f.store.On("LatestPoint", mock.Anything, key).Return(schema.Cursor{Time: 1000, Valid: true}, nil).Once()
	f.source.On("GetMeasure", mock.Anything, contract.MeasureRequest{
		AccessToken: "tok", DeviceID: "d", Type: schema.PressureType, DateBegin: 1001,
	}).Return(pageOf([]schema.Sample{{Time: 1000, Value: 1}, {Time: 1060, Value: 2}}), nil).Once()
	f.store.On("WritePoints", mock.Anything, []schema.Point{{Key: key, Time: 1060, Value: 2}}).Return(nil).Once()

	summary, err := f.runner(Options{PageSize: 10}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, int64(1001), summary.Results[0].Start)
	assert.Equal(t, 1, summary.Results[0].Points)
	f.store.AssertExpectations(t)
}

func TestRunnerSkipsUnknownType(t *testing.T) {
	st := schema.Station{ID: "d", StationName: "Home", ModuleName: "Indoor", DataType: []string{"Sunshine", "Noise"}}
	noise := schema.SeriesKey{Station: "Home", Module: "Indoor", Type: schema.NoiseType}
	f := newRunnerFixture(st)

	f.store.On("LatestPoint", mock.Anything, noise).Return(schema.Cursor{}, nil).Once()
	f.source.On("GetMeasure", mock.Anything, requestFor(noise)).Return(schema.Page{}, nil).Once()

	summary, err := f.runner(Options{PageSize: 10}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, schema.SkippedStatus, summary.Results[0].Status)
	assert.Contains(t, summary.Results[0].Error, "Sunshine")
	assert.Equal(t, schema.DoneStatus, summary.Results[1].Status)
	assert.Contains(t, f.reporter.Events(), "skipped Home/Indoor/Sunshine")

	// The unknown type never reached the store or the network
	f.source.AssertNumberOfCalls(t, "GetMeasure", 1)
	f.store.AssertNumberOfCalls(t, "LatestPoint", 1)
}

func TestRunnerWriteFailureContinues(t *testing.T) {
	st := schema.Station{ID: "d", StationName: "Home", ModuleName: "Indoor", DataType: []string{"Temperature", "Humidity"}}
	temp := schema.SeriesKey{Station: "Home", Module: "Indoor", Type: schema.TemperatureType}
	hum := schema.SeriesKey{Station: "Home", Module: "Indoor", Type: schema.HumidityType}
	f := newRunnerFixture(st)

	f.store.On("LatestPoint", mock.Anything, mock.Anything).Return(schema.Cursor{}, nil)
	f.source.On("GetMeasure", mock.Anything, mock.Anything).Return(pageOf(samples(1, 3, 1)), nil)
	f.store.On("WritePoints", mock.Anything, mock.MatchedBy(func(p []schema.Point) bool { return p[0].Key == temp })).
		Return(errors.New("timeout")).Once()
	f.store.On("WritePoints", mock.Anything, mock.MatchedBy(func(p []schema.Point) bool { return p[0].Key == hum })).
		Return(nil).Once()

	summary, err := f.runner(Options{PageSize: 10}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, schema.FailedStatus, summary.Results[0].Status)
	assert.Equal(t, schema.DoneStatus, summary.Results[1].Status)
	assert.Equal(t, 3, summary.Results[1].Points)

	done, failed, skipped := summary.Counts()
	assert.Equal(t, []int{1, 1, 0}, []int{done, failed, skipped})
}

func TestRunnerProtocolErrorPolicy(t *testing.T) {
	st := schema.Station{ID: "d", StationName: "Home", ModuleName: "Indoor", DataType: []string{"Temperature", "Humidity"}}
	temp := schema.SeriesKey{Station: "Home", Module: "Indoor", Type: schema.TemperatureType}
	hum := schema.SeriesKey{Station: "Home", Module: "Indoor", Type: schema.HumidityType}
	protocolErr := errors.New("response has no body")

	setup := func() *runnerFixture {
		f := newRunnerFixture(st)
		f.store.On("LatestPoint", mock.Anything, mock.Anything).Return(schema.Cursor{}, nil)
		f.source.On("GetMeasure", mock.Anything, requestFor(temp)).Return(schema.Page{}, protocolErr).Once()
		f.source.On("GetMeasure", mock.Anything, requestFor(hum)).Return(schema.Page{}, nil).Maybe()
		return f
	}

	t.Run("aborts by default", func(t *testing.T) {
		f := setup()
		summary, err := f.runner(Options{PageSize: 10}).Run(context.Background())
		assert.ErrorIs(t, err, protocolErr)
		require.Len(t, summary.Results, 1)
		assert.Equal(t, schema.FailedStatus, summary.Results[0].Status)
		f.source.AssertNumberOfCalls(t, "GetMeasure", 1)
	})

	t.Run("keep going marks the series failed", func(t *testing.T) {
		f := setup()
		summary, err := f.runner(Options{PageSize: 10, KeepGoing: true}).Run(context.Background())
		require.NoError(t, err)
		require.Len(t, summary.Results, 2)
		assert.Equal(t, schema.FailedStatus, summary.Results[0].Status)
		assert.Equal(t, schema.DoneStatus, summary.Results[1].Status)
	})
}

func TestRunnerStoreQueryError(t *testing.T) {
	st := schema.Station{ID: "d", StationName: "Home", ModuleName: "Indoor", DataType: []string{"Rain"}}
	f := newRunnerFixture(st)
	boom := errors.New("no such table")
	f.store.On("LatestPoint", mock.Anything, mock.Anything).Return(schema.Cursor{}, boom)

	summary, err := f.runner(Options{}).Run(context.Background())
	assert.ErrorIs(t, err, boom)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, schema.FailedStatus, summary.Results[0].Status)
	f.source.AssertNotCalled(t, "GetMeasure", mock.Anything, mock.Anything)
}

func TestRunnerTokenFailure(t *testing.T) {
	f := newRunnerFixture(homeStation())
	runner := NewRunner(failingTokenSource{}, f.stations, f.source, f.store, f.reporter, Options{KeepGoing: true})

	_, err := runner.Run(context.Background())
	assert.ErrorIs(t, err, ErrTokenUnavailable)
	f.stations.AssertNotCalled(t, "GetStationsData", mock.Anything, mock.Anything)
}

func TestRunnerDiscoveryFailure(t *testing.T) {
	f := &runnerFixture{
		stations: &contract.MockStationSource{},
		source:   &contract.MockMeasurementSource{},
		store:    &contract.MockPointStore{},
		reporter: newRecordingReporter(),
	}
	f.stations.On("GetStationsData", mock.Anything, "tok").Return(nil, errors.New("response has no body"))

	summary, err := f.runner(Options{}).Run(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "station discovery")
	assert.Empty(t, summary.Results)
}

func TestRunnerFilters(t *testing.T) {
	f := newRunnerFixture(homeStation())
	hum := schema.SeriesKey{Station: "Home", Module: "Outdoor", Type: schema.HumidityType}
	f.store.On("LatestPoint", mock.Anything, hum).Return(schema.Cursor{}, nil).Once()
	f.source.On("GetMeasure", mock.Anything, requestFor(hum)).Return(schema.Page{}, nil).Once()

	summary, err := f.runner(Options{Filter: Filter{Types: []schema.MeasurementType{schema.HumidityType}}}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, hum, summary.Results[0].Key)
}

func TestRunnerConcurrentWorkers(t *testing.T) {
	st := schema.Station{ID: "d", StationName: "Home", ModuleName: "Indoor"}
	for _, mt := range schema.AllMeasurementTypes {
		st.DataType = append(st.DataType, string(mt))
	}
	// A second module with the same name yields duplicate keys
	for i := range 3 {
		st.Modules = append(st.Modules, schema.Module{ID: fmt.Sprintf("m%d", i), ModuleName: "Outdoor", DataType: []string{"Temperature"}})
	}
	f := newRunnerFixture(st)

	f.store.On("LatestPoint", mock.Anything, mock.Anything).Return(schema.Cursor{}, nil)
	f.source.On("GetMeasure", mock.Anything, mock.Anything).Return(pageOf(samples(1, 4, 1)), nil)
	f.store.On("WritePoints", mock.Anything, mock.Anything).Return(nil)

	summary, err := f.runner(Options{PageSize: 10, Workers: 4}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Results, len(schema.AllMeasurementTypes)+3)
	for _, res := range summary.Results {
		assert.Equal(t, schema.DoneStatus, res.Status)
	}
	assert.Equal(t, 4*(len(schema.AllMeasurementTypes)+3), summary.TotalPoints())
}

func TestRunnerConcurrentAbort(t *testing.T) {
	st := schema.Station{ID: "d", StationName: "Home", ModuleName: "Indoor", DataType: []string{"Temperature", "CO2", "Noise"}}
	f := newRunnerFixture(st)
	boom := errors.New("response has no body")

	f.store.On("LatestPoint", mock.Anything, mock.Anything).Return(schema.Cursor{}, nil)
	f.source.On("GetMeasure", mock.Anything, mock.Anything).Return(schema.Page{}, boom)

	summary, err := f.runner(Options{Workers: 2}).Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.NotEmpty(t, summary.Results)
	for _, res := range summary.Results {
		assert.Equal(t, schema.FailedStatus, res.Status)
	}
}

func TestIsFatal(t *testing.T) {
	r := &Runner{}
	ctx := context.Background()
	assert.False(t, r.isFatal(ctx, nil))
	assert.False(t, r.isFatal(ctx, fmt.Errorf("%w: disk", ErrWriteFailed)))
	assert.False(t, r.isFatal(ctx, ErrPageLimit))
	assert.False(t, r.isFatal(ctx, ErrCursorStalled))
	assert.True(t, r.isFatal(ctx, errors.New("protocol")))
	assert.True(t, r.isFatal(ctx, ErrTokenUnavailable))

	r.opts.KeepGoing = true
	assert.False(t, r.isFatal(ctx, errors.New("protocol")))
	assert.True(t, r.isFatal(ctx, ErrTokenUnavailable))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.True(t, r.isFatal(canceled, ErrWriteFailed))
}
