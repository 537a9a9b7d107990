package cmd

import (
	"github.com/costlens/costlens/core"
	"github.com/costlens/costlens/internal/contract"
	"github.com/spf13/cobra"
)

// aggregateCmd runs the grouped statistics pipeline.
var aggregateCmd = &cobra.Command{
	Use:   "aggregate <source>...",
	Short: "Group records from one or more sources and compute statistics.",
	Long: `Load tabular sources, merge them under one inferred schema, and compute
grouped statistics over the requested metric fields.

Sources are CSV files or SQLite tables (path.db#table). Missing sources
are skipped with a warning; the run only fails when nothing loads.

Statistics ignore null metric values; group counts include them. Derived
ratios divide group sums, never average per-record ratios.

Examples:
  # Mean and spread of cost per TB by provider
  costlens aggregate pricing.csv -g provider -m usd_per_tb --stats count,mean,min,max

  # Tail latency percentiles across two files
  costlens aggregate q1.csv q2.csv -g engine,workload -m latency_ms --stats p50,p95,p99

  # Cost efficiency ratio, ranked ascending
  costlens aggregate pricing.csv -g provider -m usd,tb_scanned \
    --ratio usd_per_tb=usd/tb_scanned --sort usd_per_tb --direction asc

  # Export findings to Parquet for a warehouse load
  costlens aggregate pricing.db#prices -g provider -m usd_per_tb \
    --output parquet --output-file agg.parquet`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAggregate(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run aggregation", err)
		}
	},
}
