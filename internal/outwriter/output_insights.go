package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/costlens/costlens/internal/contract"
	"github.com/costlens/costlens/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteInsights outputs rule findings, dispatching on the output format.
// Insights keep the order the generator produced; skipped rules are always
// surfaced so "no finding" never masquerades as "insufficient data".
func (ow *OutWriter) WriteInsights(result *schema.AggregationResult, insights []schema.Insight, skipped []schema.SkippedRule, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, struct {
				Insights []schema.Insight     `json:"insights"`
				Skipped  []schema.SkippedRule `json:"skipped_rules"`
			}{insights, skipped})
		}, "Wrote JSON")
	case schema.MarkdownOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeInsightsMarkdown(w, insights, skipped)
		}, "Wrote Markdown")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeInsightsTable(w, result, insights, skipped)
		}, "Wrote table")
	}
}

// writeInsightsTable renders findings as a console table plus skip notes.
func writeInsightsTable(w io.Writer, result *schema.AggregationResult, insights []schema.Insight, skipped []schema.SkippedRule) error {
	if len(insights) == 0 {
		if _, err := fmt.Fprintln(w, "No findings."); err != nil {
			return err
		}
	} else {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Rank", "Rule", "Kind", "Finding", "Value", "Comparison"})
		table.Configure(func(tcfg *tablewriter.Config) {
			tcfg.Row.Alignment.Global = tw.AlignLeft
		})

		var data [][]string
		for i, in := range insights {
			data = append(data, []string{
				strconv.Itoa(i + 1),
				in.Rule,
				string(in.Kind),
				in.Label,
				strconv.FormatFloat(in.Value, 'g', 6, 64),
				in.Comparison,
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	for _, s := range skipped {
		if _, err := fmt.Fprintf(w, "Skipped rule %s: %s\n", s.Rule, s.Reason); err != nil {
			return err
		}
	}
	if result != nil {
		_, err := fmt.Fprintf(w, "%d findings from %d groups (%d rules skipped)\n", len(insights), len(result.Groups), len(skipped))
		return err
	}
	return nil
}

// writeInsightsMarkdown renders findings as a Markdown list.
func writeInsightsMarkdown(w io.Writer, insights []schema.Insight, skipped []schema.SkippedRule) error {
	if _, err := fmt.Fprintf(w, "## Insights\n\n"); err != nil {
		return err
	}
	if len(insights) == 0 {
		if _, err := fmt.Fprintln(w, "No findings."); err != nil {
			return err
		}
	}
	for _, in := range insights {
		if _, err := fmt.Fprintf(w, "- **%s** (%s): %s\n", in.Rule, in.Comparison, in.Label); err != nil {
			return err
		}
	}
	if len(skipped) > 0 {
		if _, err := fmt.Fprintf(w, "\n### Skipped rules\n\n"); err != nil {
			return err
		}
		for _, s := range skipped {
			if _, err := fmt.Fprintf(w, "- %s: %s\n", s.Rule, s.Reason); err != nil {
				return err
			}
		}
	}
	return nil
}
