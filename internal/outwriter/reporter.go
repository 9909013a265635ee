package outwriter

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/schema"
)

// ConsoleReporter prints run progress as human-readable lines.
// It is safe for concurrent use.
type ConsoleReporter struct {
	mu        sync.Mutex
	w         io.Writer
	useColors bool
}

var _ contract.Reporter = &ConsoleReporter{} // Compile-time check

// NewConsoleReporter creates a reporter writing to w.
func NewConsoleReporter(w io.Writer, useColors bool) *ConsoleReporter {
	return &ConsoleReporter{w: w, useColors: useColors}
}

func (r *ConsoleReporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.w, format, args...)
}

// StationSeen prints the station's name, id, last status time and declared types.
func (r *ConsoleReporter) StationSeen(st schema.Station) {
	name := st.StationName + " - " + st.ModuleName
	if r.useColors {
		name = contract.HeaderColor.Sprint(name)
	}
	r.printf("Name: %s ID: %s Last seen: %s\nData types: %s\n",
		name, st.ID, st.LastSeenTime().Format(contract.DateTimeFormat), formatTypes(st.DataType))
	if len(st.Modules) > 0 {
		r.printf("Modules:\n")
	}
}

// ModuleSeen prints one module of the station announced last.
func (r *ConsoleReporter) ModuleSeen(m schema.Module) {
	r.printf("\tName: %s ID: %s Last seen: %s\n\tData types: %s\n",
		m.ModuleName, m.ID, m.LastSeenTime().Format(contract.DateTimeFormat), formatTypes(m.DataType))
}

// PageWritten prints the number of points written and their time span.
func (r *ConsoleReporter) PageWritten(key schema.SeriesKey, count int, minTime, maxTime int64) {
	r.printf("%d points written - %s, %s, %s - start %s - end %s\n",
		count, key.Station, key.Module, key.Type, formatUnix(minTime), formatUnix(maxTime))
}

// WriteFailed prints the write failure notice.
func (r *ConsoleReporter) WriteFailed(key schema.SeriesKey, err error) {
	msg := "write failed"
	if r.useColors {
		msg = contract.FailedColor.Sprint(msg)
	}
	r.printf("%s - %s: %v\n", msg, key, err)
}

// SeriesSkipped prints why a series was not fetched.
func (r *ConsoleReporter) SeriesSkipped(key schema.SeriesKey, err error) {
	msg := fmt.Sprintf("not allowed type %q", string(key.Type))
	if r.useColors {
		msg = contract.SkippedColor.Sprint(msg)
	}
	r.printf("%s - %s/%s: %v\n", msg, key.Station, key.Module, err)
}

func formatTypes(types []string) string {
	return "[" + strings.Join(types, ", ") + "]"
}
