package outwriter

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/schema"
	"github.com/olekukonko/tablewriter"
)

// stationRow flattens a station or module for tabular output.
type stationRow struct {
	Station  string
	Module   string
	ID       string
	LastSeen string
	Types    string
}

func flattenStations(stations []schema.Station) []stationRow {
	var rows []stationRow
	for _, st := range stations {
		rows = append(rows, stationRow{
			Station:  st.StationName,
			Module:   st.ModuleName,
			ID:       st.ID,
			LastSeen: st.LastSeenTime().Format(contract.DateTimeFormat),
			Types:    strings.Join(st.DataType, ","),
		})
		for _, m := range st.Modules {
			rows = append(rows, stationRow{
				Station:  st.StationName,
				Module:   m.ModuleName,
				ID:       m.ID,
				LastSeen: m.LastSeenTime().Format(contract.DateTimeFormat),
				Types:    strings.Join(m.DataType, ","),
			})
		}
	}
	return rows
}

// WriteStations writes the discovery tree to w in the configured format.
func WriteStations(w io.Writer, stations []schema.Station, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, stations)
	case schema.CSVOut:
		return writeCSVWithHeader(w, []string{"station", "module", "id", "last_seen", "types"}, func(cw *csv.Writer) error {
			for _, r := range flattenStations(stations) {
				if err := cw.Write([]string{r.Station, r.Module, r.ID, r.LastSeen, r.Types}); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Station", "Module", "ID", "Last Seen", "Types"})
		var data [][]string
		for _, r := range flattenStations(stations) {
			station := r.Station
			if cfg.UseColors {
				station = contract.HeaderColor.Sprint(station)
			}
			data = append(data, []string{station, r.Module, r.ID, r.LastSeen, r.Types})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		return table.Render()
	}
}
