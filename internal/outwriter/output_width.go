package outwriter

import (
	"os"

	"golang.org/x/term"
)

// GetMaxTableKeyWidth calculates the maximum width for series keys in table output
// based on terminal width.
func GetMaxTableKeyWidth() int {
	termWidth := 80 // Conservative default for narrow terminals and CI
	if detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && detectedWidth > 0 {
		termWidth = detectedWidth
	}

	// Status + Start + Pages + Points + First + Last with borders/padding
	available := termWidth - 95
	if available < 20 {
		return 20
	}
	if available > 70 {
		return 70
	}
	return available
}

// ColorsEnabled reports whether colored output should be produced: the user
// asked for it and stdout is a terminal.
func ColorsEnabled(requested bool) bool {
	return requested && term.IsTerminal(int(os.Stdout.Fd()))
}
