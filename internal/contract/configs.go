package contract

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/costlens/costlens/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 2
	DefaultStats       = "count,mean,min,max"
)

// DefaultWorkers is the default number of concurrent source loads.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Rule is a validated, declarative insight rule. Rules reference flattened
// statistic columns (e.g. "usd_per_tb_mean") and group keys by their joined
// string form; they never carry dataset-specific code.
type Rule struct {
	Name        string
	Kind        schema.RuleKind
	Column      string
	Base        string           // premium: group key of the baseline
	Target      string           // premium: group key being compared
	MinDeltaPct float64          // premium: emit only above this delta
	Count       int              // top: number of groups to select
	Direction   schema.Direction // top: desc = highest first
	Threshold   float64          // threshold: bound to compare against
	Op          string           // threshold: ">=" (default) or "<="
}

// Config holds the runtime configuration for one pipeline invocation.
// This struct remains the "final, validated" config; nothing downstream
// re-parses raw input.
type Config struct {
	Sources     []string
	GroupBy     []string
	Metrics     []string
	Stats       []schema.StatSpec
	Ratios      []schema.RatioSpec
	SortColumn  string
	Direction   schema.Direction
	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	UseColors   bool
	Rules       []Rule
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config
// file). Viper unmarshals into this struct; ProcessAndValidate turns it
// into a Config.
type ConfigRawInput struct {
	// Positional args, set manually, so no tag
	SourceArgs []string

	GroupBy    string `mapstructure:"group-by"`
	Metrics    string `mapstructure:"metrics"`
	Stats      string `mapstructure:"stats"`
	Ratio      string `mapstructure:"ratio"`
	Sort       string `mapstructure:"sort"`
	Direction  string `mapstructure:"direction"`
	Limit      int    `mapstructure:"limit"`
	Workers    int    `mapstructure:"workers"`
	Precision  int    `mapstructure:"precision"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Color      string `mapstructure:"color"`

	// --- Insight rules from config file ---
	Rules []RuleRawInput `mapstructure:"rules"`
}

// RuleRawInput holds one declarative rule as it appears in the YAML
// config file.
type RuleRawInput struct {
	Name        string  `mapstructure:"name"`
	Kind        string  `mapstructure:"kind"`
	Column      string  `mapstructure:"column"`
	Base        string  `mapstructure:"base"`
	Target      string  `mapstructure:"target"`
	MinDeltaPct float64 `mapstructure:"min_delta_pct"`
	Count       int     `mapstructure:"count"`
	Direction   string  `mapstructure:"direction"`
	Threshold   float64 `mapstructure:"threshold"`
	Op          string  `mapstructure:"op"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and populates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processGrouping(cfg, input); err != nil {
		return err
	}
	if err := processStats(cfg, input); err != nil {
		return err
	}
	if err := processRatios(cfg, input); err != nil {
		return err
	}
	if err := processSort(cfg, input); err != nil {
		return err
	}
	return processRules(cfg, input)
}

// ProcessDisplayOnly validates just the scalar display settings. Used by
// commands that render static information without loading any sources.
func ProcessDisplayOnly(cfg *Config, input *ConfigRawInput) error {
	return validateSimpleInputs(cfg, input)
}

// validateSimpleInputs processes and validates all scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Sources = input.SourceArgs
	cfg.OutputFile = input.OutputFile

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 0 || input.Precision > 6 {
		return fmt.Errorf("precision must be between 0 and 6 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, markdown, parquet", input.Output)
	}

	cfg.Direction = schema.Descending
	if input.Direction != "" {
		cfg.Direction = schema.Direction(strings.ToLower(input.Direction))
		if _, ok := schema.ValidDirections[cfg.Direction]; !ok {
			return fmt.Errorf("invalid direction '%s'. must be desc or asc", input.Direction)
		}
	}
	return nil
}

// processGrouping validates group-by and metric field lists.
func processGrouping(cfg *Config, input *ConfigRawInput) error {
	cfg.GroupBy = splitList(input.GroupBy)
	if len(cfg.GroupBy) == 0 {
		return fmt.Errorf("--group-by requires at least one field")
	}
	cfg.Metrics = splitList(input.Metrics)
	if len(cfg.Metrics) == 0 {
		return fmt.Errorf("--metrics requires at least one field")
	}
	for _, g := range cfg.GroupBy {
		for _, m := range cfg.Metrics {
			if g == m {
				return fmt.Errorf("field '%s' cannot be both a grouping key and a metric", g)
			}
		}
	}
	return nil
}

// processStats parses the stat token list. "count" is always emitted at the
// group level, so it is accepted here but not turned into a per-metric spec.
func processStats(cfg *Config, input *ConfigRawInput) error {
	tokens := splitList(input.Stats)
	if len(tokens) == 0 {
		tokens = splitList(DefaultStats)
	}
	seen := make(map[string]struct{})
	for _, tok := range tokens {
		spec, skip, err := ParseStatSpec(tok)
		if err != nil {
			return err
		}
		if skip {
			continue
		}
		if _, dup := seen[spec.Name()]; dup {
			continue
		}
		seen[spec.Name()] = struct{}{}
		cfg.Stats = append(cfg.Stats, spec)
	}
	if len(cfg.Stats) == 0 {
		return fmt.Errorf("--stats must request at least one statistic besides count")
	}
	return nil
}

// ParseStatSpec parses a single stat token: a simple stat name, a pN
// percentile, or wmean:weight_field. skip is true for "count", which is a
// group-level constant rather than a per-metric statistic.
func ParseStatSpec(token string) (spec schema.StatSpec, skip bool, err error) {
	tok := strings.ToLower(strings.TrimSpace(token))
	if tok == string(schema.CountStat) {
		return schema.StatSpec{}, true, nil
	}
	if _, ok := schema.ValidSimpleStats[schema.StatKind(tok)]; ok {
		return schema.StatSpec{Kind: schema.StatKind(tok)}, false, nil
	}
	if rest, ok := strings.CutPrefix(tok, "p"); ok {
		p, perr := strconv.ParseFloat(rest, 64)
		if perr != nil || p < 0 || p > 100 {
			return schema.StatSpec{}, false, fmt.Errorf("invalid percentile '%s': must be p0..p100", token)
		}
		return schema.StatSpec{Kind: schema.PercentileStat, Percentile: p}, false, nil
	}
	if rest, ok := strings.CutPrefix(tok, "wmean:"); ok {
		if rest == "" {
			return schema.StatSpec{}, false, fmt.Errorf("wmean requires a weight field, e.g. wmean:sample_size")
		}
		return schema.StatSpec{Kind: schema.WeightedMeanStat, WeightField: rest}, false, nil
	}
	return schema.StatSpec{}, false, fmt.Errorf("unknown statistic '%s'", token)
}

// processRatios parses --ratio entries of the form name=num/den.
func processRatios(cfg *Config, input *ConfigRawInput) error {
	for _, tok := range splitList(input.Ratio) {
		name, expr, ok := strings.Cut(tok, "=")
		if !ok {
			return fmt.Errorf("invalid ratio '%s': expected name=numerator/denominator", tok)
		}
		num, den, ok := strings.Cut(expr, "/")
		if !ok || num == "" || den == "" {
			return fmt.Errorf("invalid ratio '%s': expected name=numerator/denominator", tok)
		}
		cfg.Ratios = append(cfg.Ratios, schema.RatioSpec{
			Name:        strings.TrimSpace(name),
			Numerator:   strings.TrimSpace(num),
			Denominator: strings.TrimSpace(den),
		})
	}
	return nil
}

// processSort resolves the sort column, defaulting to the first metric's
// first statistic so ranked output is stable without extra flags.
func processSort(cfg *Config, input *ConfigRawInput) error {
	if input.Sort != "" {
		cfg.SortColumn = strings.TrimSpace(input.Sort)
		if !isKnownColumn(cfg, cfg.SortColumn) {
			return fmt.Errorf("unknown sort column '%s'", cfg.SortColumn)
		}
		return nil
	}
	cfg.SortColumn = cfg.Metrics[0] + "_" + cfg.Stats[0].Name()
	return nil
}

// isKnownColumn reports whether a flattened column name will exist in the
// aggregation result for this config.
func isKnownColumn(cfg *Config, column string) bool {
	if column == "count" {
		return true
	}
	for _, m := range cfg.Metrics {
		for _, s := range cfg.Stats {
			if column == m+"_"+s.Name() {
				return true
			}
		}
	}
	for _, rt := range cfg.Ratios {
		if column == rt.Name {
			return true
		}
	}
	return false
}

// processRules validates the declarative insight rules from the config file.
func processRules(cfg *Config, input *ConfigRawInput) error {
	for i, raw := range input.Rules {
		if raw.Name == "" {
			return fmt.Errorf("rule %d: name is required", i)
		}
		kind := schema.RuleKind(strings.ToLower(raw.Kind))
		if _, ok := schema.ValidRuleKinds[kind]; !ok {
			return fmt.Errorf("rule '%s': invalid kind '%s'. must be premium, top, spread, threshold", raw.Name, raw.Kind)
		}
		if raw.Column == "" {
			return fmt.Errorf("rule '%s': column is required", raw.Name)
		}
		rule := Rule{
			Name:        raw.Name,
			Kind:        kind,
			Column:      raw.Column,
			Base:        raw.Base,
			Target:      raw.Target,
			MinDeltaPct: raw.MinDeltaPct,
			Count:       raw.Count,
			Threshold:   raw.Threshold,
			Op:          raw.Op,
			Direction:   schema.Descending,
		}
		if raw.Direction != "" {
			rule.Direction = schema.Direction(strings.ToLower(raw.Direction))
			if _, ok := schema.ValidDirections[rule.Direction]; !ok {
				return fmt.Errorf("rule '%s': invalid direction '%s'", raw.Name, raw.Direction)
			}
		}
		switch kind {
		case schema.PremiumRule:
			if rule.Base == "" || rule.Target == "" {
				return fmt.Errorf("rule '%s': premium rules need base and target groups", raw.Name)
			}
		case schema.TopRule:
			if rule.Count <= 0 {
				rule.Count = 3
			}
		case schema.ThresholdRule:
			if rule.Op == "" {
				rule.Op = ">="
			}
			if rule.Op != ">=" && rule.Op != "<=" {
				return fmt.Errorf("rule '%s': op must be '>=' or '<='", raw.Name)
			}
		}
		cfg.Rules = append(cfg.Rules, rule)
	}
	return nil
}

// splitList splits a comma-separated flag value, trimming blanks.
func splitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
