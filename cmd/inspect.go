package cmd

import (
	"fmt"

	"github.com/costlens/costlens/core"
	"github.com/costlens/costlens/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// inspectCmd shows the merged schema without running an aggregation.
var inspectCmd = &cobra.Command{
	Use:   "inspect <source>...",
	Short: "Show the merged schema inferred from a set of sources.",
	Long: `Load and normalize the sources, then print every field with its
inferred kind, plus any type conflicts and missing sources.

Useful before a full run to check that numeric columns were recognized
as numbers (currency symbols and thousands separators are stripped) and
that fields shared across sources resolved to one kind.

Examples:
  costlens inspect pricing.csv
  costlens inspect q1.csv q2.csv pricing.db#prices --output json`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: inspectSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteInspect(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot inspect sources", err)
		}
	},
}

// inspectSetupWrapper validates scalar settings and source args only.
// Inspection has no grouping or metrics to validate.
func inspectSetupWrapper(_ *cobra.Command, args []string) error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	input.SourceArgs = args
	return contract.ProcessDisplayOnly(cfg, input)
}
