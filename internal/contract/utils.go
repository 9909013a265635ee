package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/stationsync/schema"
)

// Color variables for console output.
var (
	DoneColor    = color.New(color.FgGreen)            // DoneColor marks series that completed.
	FailedColor  = color.New(color.FgRed, color.Bold)  // FailedColor marks series that stopped on an error.
	SkippedColor = color.New(color.FgYellow)           // SkippedColor marks series rejected before fetching.
	HeaderColor  = color.New(color.FgCyan, color.Bold) // HeaderColor highlights station names.
)

// GetColorStatus returns a colored status label for console output (table).
func GetColorStatus(status schema.SeriesStatus) string {
	text := string(status)

	switch status {
	case schema.DoneStatus:
		return DoneColor.Sprint(text)
	case schema.FailedStatus:
		return FailedColor.Sprint(text)
	default:
		return SkippedColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when the path is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetStoreDBFilePath returns the path to the SQLite DB file for point storage.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".stationsync.db"
	}
	return filepath.Join(homeDir, ".stationsync.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
