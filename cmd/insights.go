package cmd

import (
	"github.com/costlens/costlens/core"
	"github.com/costlens/costlens/internal/contract"
	"github.com/spf13/cobra"
)

// insightsCmd evaluates declarative rules over the aggregation result.
var insightsCmd = &cobra.Command{
	Use:   "insights <source>...",
	Short: "Evaluate insight rules over grouped statistics.",
	Long: `Run the aggregation pipeline, then evaluate the declarative rules from
the config file against the grouped statistics.

Rule kinds:
  premium    percent delta of a target group over a base group
  top        highest (or lowest) N groups by a column
  spread     max/min multiplier across all groups
  threshold  groups whose value crosses an absolute bound

Rules that cannot be evaluated (missing groups, too few data points) are
reported as skipped, never silently dropped.

Example .costlens.yaml:
  rules:
    - name: cloud-premium
      kind: premium
      column: usd_per_tb_mean
      base: opensource
      target: cloud
      min_delta_pct: 10
    - name: priciest-engines
      kind: top
      column: usd_per_tb_mean
      count: 3

Examples:
  costlens insights pricing.csv -g category -m usd_per_tb
  costlens insights pricing.csv -g category -m usd_per_tb --output json`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteInsights(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run insights", err)
		}
	},
}
