package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteRunSummary writes the run summary to w in the configured format.
func WriteRunSummary(w io.Writer, summary schema.RunSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, summary)
	case schema.CSVOut:
		return writeCSVRunSummary(w, summary)
	default:
		return writeRunSummaryTable(w, summary, cfg)
	}
}

func writeCSVRunSummary(w io.Writer, summary schema.RunSummary) error {
	header := []string{"station", "module", "type", "status", "start", "pages", "points", "min_time", "max_time", "error"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range summary.Results {
			row := []string{
				r.Key.Station,
				r.Key.Module,
				string(r.Key.Type),
				string(r.Status),
				strconv.FormatInt(r.Start, 10),
				strconv.Itoa(r.Pages),
				strconv.Itoa(r.Points),
				strconv.FormatInt(r.MinTime, 10),
				strconv.FormatInt(r.MaxTime, 10),
				r.Error,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeRunSummaryTable prints one row per series followed by the totals line.
func writeRunSummaryTable(w io.Writer, summary schema.RunSummary, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Series", "Status", "Start", "Pages", "Points", "First", "Last"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	keyWidth := GetMaxTableKeyWidth()
	var data [][]string
	for _, r := range summary.Results {
		status := string(r.Status)
		if cfg.UseColors {
			status = contract.GetColorStatus(r.Status)
		}
		first, last := "-", "-"
		if r.Points > 0 {
			first, last = formatUnix(r.MinTime), formatUnix(r.MaxTime)
		}
		data = append(data, []string{
			truncate(r.Key.String(), keyWidth),
			status,
			strconv.FormatInt(r.Start, 10),
			strconv.Itoa(r.Pages),
			strconv.Itoa(r.Points),
			first,
			last,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	done, failed, skipped := summary.Counts()
	_, err := fmt.Fprintf(w, "Sync completed in %v: %d done, %d failed, %d skipped, %d points written. Store backend: %s\n",
		summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond), done, failed, skipped, summary.TotalPoints(), cfg.StoreBackend)
	return err
}
