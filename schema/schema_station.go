package schema

import "time"

// Station is a physical device as returned by station discovery.
// ModuleName is the station's own module (its indoor unit).
type Station struct {
	ID              string   `json:"_id"`
	StationName     string   `json:"station_name"`
	ModuleName      string   `json:"module_name"`
	LastStatusStore int64    `json:"last_status_store"`
	DataType        []string `json:"data_type"`
	Modules         []Module `json:"modules"`
}

// Module is a sensor attached to a station.
type Module struct {
	ID         string   `json:"_id"`
	ModuleName string   `json:"module_name"`
	LastSeen   int64    `json:"last_seen"`
	DataType   []string `json:"data_type"`
}

// LastSeenTime returns the station's last status time.
func (s Station) LastSeenTime() time.Time {
	return time.Unix(s.LastStatusStore, 0)
}

// LastSeenTime returns the module's last contact time.
func (m Module) LastSeenTime() time.Time {
	return time.Unix(m.LastSeen, 0)
}
