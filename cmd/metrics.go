package cmd

import (
	"github.com/costlens/costlens/core"
	"github.com/costlens/costlens/internal/contract"
	"github.com/spf13/cobra"
)

// metricsCmd displays the formal definitions of all statistics and rules.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display definitions for all statistics and insight rule kinds",
	Long: `Show the formal definitions of every supported statistic and insight
rule kind.

Provides complete transparency into how groups are summarized, including:
- Statistic formulas and their null handling
- Percentile interpolation method
- Rule kinds, their comparisons, and what each requires

No sources are loaded - this is purely informational.

Examples:
  # Show definitions as text
  costlens metrics

  # Export definitions as JSON
  costlens metrics --output json`,
	PreRunE: displaySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDefinitions(cfg); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
