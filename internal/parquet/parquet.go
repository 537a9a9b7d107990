// Package parquet exports aggregation results to Parquet files using
// github.com/parquet-go/parquet-go, so downstream notebooks and warehouse
// loads can consume costlens output without re-parsing CSV.
package parquet

import (
	"fmt"
	"os"

	"github.com/costlens/costlens/schema"
	"github.com/parquet-go/parquet-go"
)

// AggregateRow is one statistic cell in long format: one row per
// (group, column) pair. Long format keeps the Parquet schema fixed no
// matter which grouping fields or statistics a run requested.
type AggregateRow struct {
	// GroupKey is the joined grouping tuple, e.g. "BigQuery|etl"
	GroupKey string `parquet:"group_key,snappy"`

	// Column is the flattened statistic name, e.g. "usd_per_tb_mean"
	Column string `parquet:"column,snappy"`

	// Value is the computed statistic
	Value float64 `parquet:"value,snappy"`

	// Count is the group's total record count, including null metrics
	Count int64 `parquet:"count,snappy"`
}

// FlattenAggregates converts a result to long-format rows. Undefined cells
// are omitted entirely; Parquet has no honest encoding for "this statistic
// does not exist" other than absence.
func FlattenAggregates(result *schema.AggregationResult) []AggregateRow {
	var rows []AggregateRow
	for i := range result.Groups {
		g := &result.Groups[i]
		key := g.Key.String()
		for _, c := range g.Cells {
			if !c.Valid {
				continue
			}
			rows = append(rows, AggregateRow{
				GroupKey: key,
				Column:   c.Column(),
				Value:    c.Value,
				Count:    int64(g.Count),
			})
		}
	}
	return rows
}

// WriteAggregateRowsParquet writes a slice of AggregateRow structs to a
// Parquet file. The schema is derived from the struct tags.
func WriteAggregateRowsParquet(rows []AggregateRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[AggregateRow](file)

	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			_ = writer.Close()
			return fmt.Errorf("failed to write data to parquet file: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
