// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/costlens/costlens/internal/contract"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the output formats and gives the core logic a clean API.
type OutWriter struct{}

var _ contract.ReportWriter = (*OutWriter)(nil) // Compile-time check

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// getMaxTableKeyWidth calculates the display width for group key columns
// in table output based on the detected terminal width.
func getMaxTableKeyWidth(columns int) int {
	termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || termWidth <= 0 {
		termWidth = 80 // Conservative default for narrow terminals and CI
	}

	// Reserve roughly 12 characters per statistic column with borders and
	// padding, plus fixed space for rank, count and tier.
	available := termWidth - columns*12 - 25
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}

// truncateKey shortens a group key for table display, keeping the tail,
// which carries the most specific part of a composite key.
func truncateKey(key string, maxWidth int) string {
	if len(key) <= maxWidth || maxWidth <= 3 {
		return key
	}
	return "..." + key[len(key)-maxWidth+3:]
}
