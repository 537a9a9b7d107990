// Package cmd defines the command-line interface for costlens.
package cmd

import (
	"github.com/costlens/costlens/internal/contract"
	"github.com/costlens/costlens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(aggregateCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(versionCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("group-by", "g", "", "Comma-separated list of fields to group records by")
	rootCmd.PersistentFlags().StringP("metrics", "m", "", "Comma-separated list of numeric fields to aggregate")
	rootCmd.PersistentFlags().String("stats", contract.DefaultStats, "Statistics to compute: count, sum, mean, median, min, max, stdev, pN, wmean:field")
	rootCmd.PersistentFlags().String("ratio", "", "Derived ratio columns (format: 'name=numerator/denominator')")
	rootCmd.PersistentFlags().String("sort", "", "Column to rank groups by (defaults to first metric's first statistic)")
	rootCmd.PersistentFlags().String("direction", string(schema.Descending), "Sort direction: desc or asc")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of groups to display")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent source loads")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or markdown or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}
}
