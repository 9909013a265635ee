package schema

import "time"

// StoreStatus represents the status of the point store.
type StoreStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	SchemaVersion   uint      `json:"schema_version"`
	TotalPoints     int64     `json:"total_points"`
	TotalSeries     int       `json:"total_series"`
	LastPointTime   time.Time `json:"last_point_time"`
	OldestPointTime time.Time `json:"oldest_point_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}
