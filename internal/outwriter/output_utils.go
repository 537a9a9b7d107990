package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/costlens/costlens/internal/contract"
	"github.com/costlens/costlens/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it,
// and cleaning up. It accepts a writer function that takes an io.Writer.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "%s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
// Values strict JSON cannot represent (NaN, Inf) surface as a
// SerializationError scoped to the JSON target.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return &contract.SerializationError{Format: schema.JSONOut, Err: err}
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	return writeRows(csvWriter)
}

// createFormatters creates the common formatter closures used across
// multiple output types.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	intFmt = "%d"
	fmtFloat = func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
	return fmtFloat, intFmt
}

// cellText renders one statistic cell for tables, CSV and Markdown.
// Undefined statistics render as empty, never as a fabricated zero.
func cellText(g *schema.GroupStats, column string, fmtFloat func(float64) string) string {
	if column == "count" {
		return fmt.Sprintf("%d", g.Count)
	}
	if c, ok := g.Cell(column); ok && c.Valid {
		return fmtFloat(c.Value)
	}
	return ""
}

// sortValue extracts the ranked column's value for tier labeling.
func sortValue(g *schema.GroupStats, column string) float64 {
	if column == "count" {
		return float64(g.Count)
	}
	if c, ok := g.Cell(column); ok && c.Valid {
		return c.Value
	}
	return 0
}

// maxSortValue finds the largest ranked value across the rendered groups,
// the reference point for tier labels.
func maxSortValue(groups []schema.GroupStats, column string) float64 {
	var maxV float64
	for i := range groups {
		if v := sortValue(&groups[i], column); v > maxV {
			maxV = v
		}
	}
	return maxV
}
