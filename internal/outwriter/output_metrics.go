package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/costlens/costlens/internal/contract"
	"github.com/costlens/costlens/schema"
)

// WriteDefinitions displays the formal definitions of all statistics and
// insight rule kinds. This is a static display that loads no sources.
func (ow *OutWriter) WriteDefinitions(cfg *contract.Config) error {
	renderModel := buildDefinitionsRenderModel()

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, renderModel)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			writer := csv.NewWriter(w)
			defer writer.Flush()
			return writeDefinitionsCSV(writer, renderModel)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDefinitionsText(w, renderModel)
		}, "Wrote text")
	}
}

// writeDefinitionsText displays definitions in human-readable text format.
func writeDefinitionsText(w io.Writer, renderModel *schema.DefinitionsRenderModel) error {
	if _, err := fmt.Fprintf(w, "%s\n", renderModel.Title); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", len(renderModel.Title))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n\n", renderModel.Description); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Statistics\n"); err != nil {
		return err
	}
	for _, s := range renderModel.Statistics {
		if _, err := fmt.Fprintf(w, "  %s: %s\n", s.Name, s.Purpose); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "     Formula: %s\n", s.Formula); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "\nInsight rules\n"); err != nil {
		return err
	}
	for _, r := range renderModel.Rules {
		if _, err := fmt.Fprintf(w, "  %s: %s\n", r.Kind, r.Purpose); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "     Comparison: %s; requires %s\n", r.Comparison, r.Requires); err != nil {
			return err
		}
	}
	return nil
}

// writeDefinitionsCSV displays definitions in CSV format with a section
// column so statistics and rules share one flat file.
func writeDefinitionsCSV(writer *csv.Writer, renderModel *schema.DefinitionsRenderModel) error {
	if err := writer.Write([]string{"section", "name", "purpose", "detail"}); err != nil {
		return err
	}
	for _, s := range renderModel.Statistics {
		if err := writer.Write([]string{"statistic", s.Name, s.Purpose, s.Formula}); err != nil {
			return err
		}
	}
	for _, r := range renderModel.Rules {
		if err := writer.Write([]string{"rule", string(r.Kind), r.Purpose, r.Comparison}); err != nil {
			return err
		}
	}
	return nil
}

// buildDefinitionsRenderModel constructs the static definitions model.
func buildDefinitionsRenderModel() *schema.DefinitionsRenderModel {
	return &schema.DefinitionsRenderModel{
		Title:       "Costlens statistics and rules",
		Description: "All statistics ignore null metric values; counts include them",
		Statistics: []schema.StatDefinition{
			{Name: "count", Purpose: "Records in the group, including null metrics", Formula: "len(group)"},
			{Name: "sum", Purpose: "Total of non-null values", Formula: "sum(v)"},
			{Name: "mean", Purpose: "Arithmetic average", Formula: "sum(v) / n"},
			{Name: "median", Purpose: "50th percentile", Formula: "p50 by linear interpolation"},
			{Name: "min", Purpose: "Smallest value", Formula: "min(v)"},
			{Name: "max", Purpose: "Largest value", Formula: "max(v)"},
			{Name: "stdev", Purpose: "Sample standard deviation", Formula: "sqrt(sum((v-mean)^2) / (n-1)), needs n >= 2"},
			{Name: "pN", Purpose: "Nth percentile, e.g. p95", Formula: "linear interpolation at rank N/100 * (n-1)"},
			{Name: "wmean:field", Purpose: "Mean weighted by another field", Formula: "sum(v*w) / sum(w)"},
		},
		Rules: []schema.RuleDefinition{
			{Kind: schema.PremiumRule, Purpose: "Percent delta of a target group over a base group", Comparison: "percentage-delta", Requires: "base > 0"},
			{Kind: schema.TopRule, Purpose: "Top N groups by a column", Comparison: "rank", Requires: "at least one defined group"},
			{Kind: schema.SpreadRule, Purpose: "Max/min multiplier across groups", Comparison: "multiplier", Requires: "2+ defined groups, min > 0"},
			{Kind: schema.ThresholdRule, Purpose: "Groups crossing an absolute bound", Comparison: "absolute", Requires: "defined column values"},
		},
	}
}
