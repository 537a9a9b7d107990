package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Cost tier label constants.
const (
	PeakValue     = "Peak"     // At or near the most expensive group
	HighValue     = "High"     // Upper band
	ModerateValue = "Moderate" // Middle band
	LowValue      = "Low"      // Cheapest band
)

// Color variables for console output.
var (
	PeakColor     = color.New(color.FgRed, color.Bold)     // peakColor flags the outliers worth reading first.
	HighColor     = color.New(color.FgMagenta, color.Bold) // highColor is a strong, distinct warning.
	ModerateColor = color.New(color.FgYellow)              // moderateColor is standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // lowColor is informational.
)

// GetPlainTier returns a plain text label placing a group's sort value
// relative to the largest value in the result. This is the core logic used
// for CSV, JSON, and table printing.
func GetPlainTier(value, maxValue float64) string {
	if maxValue <= 0 {
		return LowValue
	}
	pct := value / maxValue * 100
	switch {
	case pct >= 80:
		return PeakValue
	case pct >= 60:
		return HighValue
	case pct >= 40:
		return ModerateValue
	default:
		return LowValue
	}
}

// GetColorTier returns a colored tier label for console tables. It uses
// GetPlainTier to pick the string, then applies the matching color.
func GetColorTier(value, maxValue float64) string {
	text := GetPlainTier(value, maxValue)

	switch text {
	case PeakValue:
		return PeakColor.Sprint(text)
	case HighValue:
		return HighColor.Sprint(text)
	case ModerateValue:
		return ModerateColor.Sprint(text)
	default: // "Low"
		return LowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ParseBoolString parses the yes/no style boolean flags used on the CLI.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yes", "true", "1", "y", "on":
		return true, nil
	case "no", "false", "0", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("expected yes/no/true/false/1/0, got %q", s)
	}
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning %s: %v\n", msg, err)
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "Warning %s\n", msg)
}
