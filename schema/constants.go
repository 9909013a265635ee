// Package schema has configs, models and constants shared by every part of stationsync.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Custom string types for type safety.
type (
	// MeasurementType names one kind of reading a station or module produces.
	MeasurementType string

	// OutputMode represents the format of the output.
	OutputMode string

	// SeriesStatus is the terminal state of one series' fetch cycle.
	SeriesStatus string

	// DatabaseBackend represents the database backend for the point store.
	DatabaseBackend string

	// LogFormat selects the log handler.
	LogFormat string
)

// All measurement types accepted by the upstream measure endpoint.
// GustStrenght is spelled the way the upstream API spells it.
const (
	TemperatureType  MeasurementType = "Temperature"
	CO2Type          MeasurementType = "CO2"
	HumidityType     MeasurementType = "Humidity"
	PressureType     MeasurementType = "Pressure"
	NoiseType        MeasurementType = "Noise"
	RainType         MeasurementType = "Rain"
	WindStrengthType MeasurementType = "WindStrength"
	WindAngleType    MeasurementType = "WindAngle"
	GustStrengthType MeasurementType = "GustStrenght"
	GustAngleType    MeasurementType = "GustAngle"
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
)

// All series statuses.
const (
	DoneStatus    SeriesStatus = "done"
	FailedStatus  SeriesStatus = "failed"
	SkippedStatus SeriesStatus = "skipped"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All log formats supported.
const (
	TextLog LogFormat = "text" // default
	JSONLog LogFormat = "json"
)

// DefaultMaxPageSize is the largest page the measure endpoint returns (1024 * 99 + 1068).
// A page of exactly this many entries means more data may follow.
const DefaultMaxPageSize = 102244

// ErrUnknownMeasurementType is returned for a type outside AllMeasurementTypes.
var ErrUnknownMeasurementType = errors.New("unknown measurement type")

// AllMeasurementTypes lists every accepted measurement type in a stable order.
var AllMeasurementTypes = []MeasurementType{
	TemperatureType, CO2Type, HumidityType, PressureType, NoiseType,
	RainType, WindStrengthType, WindAngleType, GustStrengthType, GustAngleType,
}

// ValidMeasurementTypes is the allow-list gating every fetch.
var ValidMeasurementTypes = map[MeasurementType]struct{}{
	TemperatureType:  {},
	CO2Type:          {},
	HumidityType:     {},
	PressureType:     {},
	NoiseType:        {},
	RainType:         {},
	WindStrengthType: {},
	WindAngleType:    {},
	GustStrengthType: {},
	GustAngleType:    {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidLogFormats lists all valid log formats.
var ValidLogFormats = map[LogFormat]struct{}{
	TextLog: {},
	JSONLog: {},
}

// ParseMeasurementType checks s against the allow-list. Matching is exact,
// since the upstream API is case-sensitive.
func ParseMeasurementType(s string) (MeasurementType, error) {
	t := MeasurementType(strings.TrimSpace(s))
	if _, ok := ValidMeasurementTypes[t]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownMeasurementType, s)
	}
	return t, nil
}

// IsValid reports whether t is on the allow-list.
func (t MeasurementType) IsValid() bool {
	_, ok := ValidMeasurementTypes[t]
	return ok
}
