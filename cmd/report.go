package cmd

import (
	"github.com/costlens/costlens/core"
	"github.com/costlens/costlens/internal/contract"
	"github.com/spf13/cobra"
)

// reportCmd produces the combined metadata + aggregates + insights report.
var reportCmd = &cobra.Command{
	Use:   "report <source>...",
	Short: "Produce a full report with metadata, aggregates, and insights.",
	Long: `Run the entire pipeline and emit one self-describing document: which
sources were read (and which were missing), how many records survived,
any schema conflicts, the grouped statistics, and all rule findings.

The report is reproducible from its inputs; the only run-dependent field
is the generation timestamp.

Supports json (structured, for machines) and markdown (narrative, for
humans). Other formats are rejected.

Examples:
  costlens report pricing.csv -g provider -m usd_per_tb --output json --output-file report.json
  costlens report q1.csv q2.csv -g engine -m usd_per_tb --output markdown`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot build report", err)
		}
	},
}
