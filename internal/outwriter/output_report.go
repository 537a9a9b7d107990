package outwriter

import (
	"fmt"
	"io"

	"github.com/costlens/costlens/internal/contract"
	"github.com/costlens/costlens/schema"
)

// WriteReport renders the full {metadata, aggregates, insights} report.
// JSON is the structured form; Markdown is the narrative form. Both walk
// the report in the exact order it was computed.
func (ow *OutWriter) WriteReport(report *schema.Report, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.MarkdownOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportMarkdown(w, report, cfg)
		}, "Wrote Markdown")
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	default:
		return fmt.Errorf("report output must be json or markdown, got '%s'", cfg.Output)
	}
}

// writeReportMarkdown renders the whole report as one Markdown document.
func writeReportMarkdown(w io.Writer, report *schema.Report, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	if _, err := fmt.Fprintf(w, "# Analysis report\n\nGenerated at %s.\n\n", report.Metadata.GeneratedAt); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "## Sources\n\n"); err != nil {
		return err
	}
	for _, src := range report.Metadata.Sources {
		if src.Missing {
			if _, err := fmt.Fprintf(w, "- %s: missing, skipped\n", src.Location); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "- %s: %d records\n", src.Location, src.Records); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "\nTotal records analyzed: %d\n\n", report.Metadata.TotalRecords); err != nil {
		return err
	}

	if len(report.Metadata.Conflicts) > 0 {
		if _, err := fmt.Fprintf(w, "## Schema conflicts\n\n"); err != nil {
			return err
		}
		for _, c := range report.Metadata.Conflicts {
			if _, err := fmt.Fprintf(w, "- field `%s` had mixed types across sources; kept as %s\n", c.Field, c.Resolved); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	if report.Aggregates != nil {
		if err := writeAggregatesMarkdown(w, report.Aggregates, fmtFloat); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	if err := writeInsightsMarkdown(w, report.Insights, report.Metadata.SkippedRules); err != nil {
		return err
	}
	return nil
}
