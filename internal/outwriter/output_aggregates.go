package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/costlens/costlens/internal/contract"
	"github.com/costlens/costlens/internal/parquet"
	"github.com/costlens/costlens/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteAggregates outputs an aggregation result, dispatching on the output
// format configured. Groups render in the order the engine ranked them;
// no writer re-sorts.
func (ow *OutWriter) WriteAggregates(result *schema.AggregationResult, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAggregatesCSV(w, result, fmtFloat)
		}, "Wrote CSV")
	case schema.MarkdownOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAggregatesMarkdown(w, result, fmtFloat)
		}, "Wrote Markdown")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return &contract.SerializationError{Format: schema.ParquetOut, Err: fmt.Errorf("--output-file is required for parquet output")}
		}
		rows := parquet.FlattenAggregates(result)
		if err := parquet.WriteAggregateRowsParquet(rows, cfg.OutputFile); err != nil {
			return &contract.SerializationError{Format: schema.ParquetOut, Err: err}
		}
		fmt.Fprintf(os.Stderr, "Wrote %d parquet rows to %s\n", len(rows), cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAggregatesTable(w, result, cfg, fmtFloat)
		}, "Wrote table")
	}
}

// writeAggregatesTable renders the human-readable table.
func writeAggregatesTable(w io.Writer, result *schema.AggregationResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	columns := result.Columns()
	maxV := maxSortValue(result.Groups, cfg.SortColumn)

	headers := append([]string{"Rank"}, result.GroupBy...)
	headers = append(headers, columns...)
	headers = append(headers, "Tier")

	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	keyWidth := getMaxTableKeyWidth(len(columns))
	var data [][]string
	for i := range result.Groups {
		g := &result.Groups[i]
		row := []string{strconv.Itoa(i + 1)}
		for _, part := range g.Key.Parts {
			row = append(row, truncateKey(part, keyWidth))
		}
		for _, col := range columns {
			row = append(row, cellText(g, col, fmtFloat))
		}
		tier := contract.GetPlainTier(sortValue(g, cfg.SortColumn), maxV)
		if cfg.UseColors {
			tier = contract.GetColorTier(sortValue(g, cfg.SortColumn), maxV)
		}
		row = append(row, tier)
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Showing %d groups over %d records, ranked by %s (%s)\n",
		len(result.Groups), result.TotalRecords, cfg.SortColumn, cfg.Direction)
	return err
}

// writeAggregatesCSV flattens the result to one row per GroupKey with the
// grouping field values repeated as leading columns.
func writeAggregatesCSV(w io.Writer, result *schema.AggregationResult, fmtFloat func(float64) string) error {
	columns := result.Columns()
	header := append([]string{}, result.GroupBy...)
	header = append(header, columns...)

	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i := range result.Groups {
			g := &result.Groups[i]
			rec := append([]string{}, g.Key.Parts...)
			for _, col := range columns {
				rec = append(rec, cellText(g, col, fmtFloat))
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeAggregatesMarkdown renders a deterministic Markdown table.
func writeAggregatesMarkdown(w io.Writer, result *schema.AggregationResult, fmtFloat func(float64) string) error {
	columns := result.Columns()

	if _, err := fmt.Fprintf(w, "## Aggregates by %s\n\n", joinWith(result.GroupBy, ", ")); err != nil {
		return err
	}
	header := append([]string{}, result.GroupBy...)
	header = append(header, columns...)
	if err := writeMarkdownRow(w, header); err != nil {
		return err
	}
	if err := writeMarkdownSeparator(w, len(header)); err != nil {
		return err
	}
	for i := range result.Groups {
		g := &result.Groups[i]
		row := append([]string{}, g.Key.Parts...)
		for _, col := range columns {
			row = append(row, cellText(g, col, fmtFloat))
		}
		if err := writeMarkdownRow(w, row); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d groups over %d records.\n", len(result.Groups), result.TotalRecords)
	return err
}
