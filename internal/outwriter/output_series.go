package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteSeriesList writes the stored series summaries to w in the configured format.
func WriteSeriesList(w io.Writer, series []schema.SeriesSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, series)
	case schema.CSVOut:
		return writeCSVWithHeader(w, []string{"station", "module", "type", "points", "first_time", "last_time"}, func(cw *csv.Writer) error {
			for _, s := range series {
				row := []string{
					s.Key.Station,
					s.Key.Module,
					string(s.Key.Type),
					strconv.FormatInt(s.Points, 10),
					s.FirstTime.Format(contract.DateTimeFormat),
					s.LastTime.Format(contract.DateTimeFormat),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Series", "Points", "First", "Last"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
		keyWidth := GetMaxTableKeyWidth()
		var data [][]string
		for _, s := range series {
			data = append(data, []string{
				truncate(s.Key.String(), keyWidth),
				strconv.FormatInt(s.Points, 10),
				s.FirstTime.Format(contract.DateTimeFormat),
				s.LastTime.Format(contract.DateTimeFormat),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		return table.Render()
	}
}

// cursorView is the JSON shape of a resolved cursor.
type cursorView struct {
	Key       schema.SeriesKey `json:"key"`
	Present   bool             `json:"present"`
	Latest    int64            `json:"latest,omitempty"`
	NextStart int64            `json:"next_start"`
}

// WriteCursor writes the latest stored point of a series and the next start it implies.
func WriteCursor(w io.Writer, key schema.SeriesKey, cursor schema.Cursor, cfg *contract.Config) error {
	view := cursorView{Key: key, Present: cursor.Valid, NextStart: cursor.NextStart()}
	if cursor.Valid {
		view.Latest = cursor.Time
	}

	if cfg.Output == schema.JSONOut {
		return writeJSON(w, view)
	}
	if !cursor.Valid {
		_, err := fmt.Fprintf(w, "%s: no points stored, next start 0\n", key)
		return err
	}
	_, err := fmt.Fprintf(w, "%s: latest %s (%d), next start %d\n", key, formatUnix(cursor.Time), cursor.Time, view.NextStart)
	return err
}
