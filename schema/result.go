package schema

import (
	"encoding/json"
	"strconv"
	"strings"
)

// StatSpec identifies one requested statistic. Percentile carries the
// argument for pN stats; WeightField carries the weight column for wmean.
type StatSpec struct {
	Kind        StatKind
	Percentile  float64
	WeightField string
}

// Name returns the canonical column suffix for the statistic, e.g. "mean",
// "p95" or "wmean_sample_size".
func (s StatSpec) Name() string {
	switch s.Kind {
	case PercentileStat:
		return "p" + strconv.FormatFloat(s.Percentile, 'f', -1, 64)
	case WeightedMeanStat:
		return "wmean_" + s.WeightField
	default:
		return string(s.Kind)
	}
}

// RatioSpec defines a derived ratio metric. The ratio is computed from
// already-aggregated sums (sum(num)/sum(den)), never as a mean of per-row
// ratios, so mixed group sizes cannot distort it.
type RatioSpec struct {
	Name        string
	Numerator   string
	Denominator string
}

// GroupKey is the ordered tuple of formatted field values a group of
// records is partitioned by. Null components render as UnknownGroup.
type GroupKey struct {
	Parts []string
}

// String joins the key parts for display and map keying.
func (k GroupKey) String() string {
	return strings.Join(k.Parts, "|")
}

// Less orders keys lexically, part by part. Used for deterministic group
// ordering and tie-breaking in top-N selection.
func (k GroupKey) Less(o GroupKey) bool {
	n := min(len(k.Parts), len(o.Parts))
	for i := range n {
		if k.Parts[i] != o.Parts[i] {
			return k.Parts[i] < o.Parts[i]
		}
	}
	return len(k.Parts) < len(o.Parts)
}

// Cell is one computed statistic for one metric within a group.
// Valid is false when the statistic is undefined (no non-null values,
// or a zero-sum denominator for ratios); undefined never means zero.
type Cell struct {
	Metric string
	Stat   string
	Value  float64
	Valid  bool
}

// Column returns the flattened column name for the cell. Ratio cells use
// the ratio name directly; everything else is metric_stat.
func (c Cell) Column() string {
	if c.Stat == "ratio" {
		return c.Metric
	}
	return c.Metric + "_" + c.Stat
}

// GroupStats holds the computed statistics for a single group.
// Count always equals the number of source records in the group, including
// records whose metric values are null.
type GroupStats struct {
	Key   GroupKey
	Count int
	Cells []Cell
}

// Cell returns the cell for a flattened column name.
func (g *GroupStats) Cell(column string) (Cell, bool) {
	for _, c := range g.Cells {
		if c.Column() == column {
			return c, true
		}
	}
	return Cell{}, false
}

// MarshalJSON flattens the group to {key, count, stats}. Undefined cells
// are omitted rather than encoded as zero; map keys sort deterministically.
func (g GroupStats) MarshalJSON() ([]byte, error) {
	stats := make(map[string]float64, len(g.Cells))
	for _, c := range g.Cells {
		if c.Valid {
			stats[c.Column()] = c.Value
		}
	}
	return json.Marshal(struct {
		Key   []string           `json:"key"`
		Count int                `json:"count"`
		Stats map[string]float64 `json:"stats"`
	}{g.Key.Parts, g.Count, stats})
}

// AggregationResult maps every GroupKey of a dataset partition to its
// computed statistics. Groups are sorted by key so that every output
// format renders in the same order the engine computed.
type AggregationResult struct {
	GroupBy      []string
	Metrics      []string
	Stats        []StatSpec
	Ratios       []RatioSpec
	Groups       []GroupStats
	TotalRecords int
}

// Columns returns the flattened statistic column names in render order:
// count first, then metric/stat pairs, then derived ratios.
func (r *AggregationResult) Columns() []string {
	cols := []string{"count"}
	for _, m := range r.Metrics {
		for _, s := range r.Stats {
			cols = append(cols, m+"_"+s.Name())
		}
	}
	for _, rt := range r.Ratios {
		cols = append(cols, rt.Name)
	}
	return cols
}

// Group returns the stats for an exact key, if present.
func (r *AggregationResult) Group(parts ...string) (*GroupStats, bool) {
	for i := range r.Groups {
		if r.Groups[i].Key.String() == (GroupKey{Parts: parts}).String() {
			return &r.Groups[i], true
		}
	}
	return nil, false
}

// MarshalJSON encodes the result with a stable field order.
func (r *AggregationResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		GroupBy      []string     `json:"group_by"`
		Metrics      []string     `json:"metrics"`
		Columns      []string     `json:"columns"`
		TotalRecords int          `json:"total_records"`
		Groups       []GroupStats `json:"groups"`
	}{r.GroupBy, r.Metrics, r.Columns(), r.TotalRecords, r.Groups})
}

// Insight is a derived, read-only finding over an AggregationResult.
type Insight struct {
	Rule       string   `json:"rule"`
	Kind       RuleKind `json:"kind"`
	Label      string   `json:"label"`
	Scope      []string `json:"scope"`
	Value      float64  `json:"value"`
	Comparison string   `json:"comparison"`
}

// SkippedRule records a rule that could not run, so callers can tell
// "no finding" apart from "insufficient data".
type SkippedRule struct {
	Rule   string `json:"rule"`
	Reason string `json:"reason"`
}

// SourceGap records a source that could not be read. The run continues
// with the remaining sources and the gap is surfaced in report metadata.
type SourceGap struct {
	Location string `json:"location"`
	Reason   string `json:"reason"`
}

// FieldConflict records a field whose inferred type differed across
// sources and was resolved to string to preserve information.
type FieldConflict struct {
	Field    string `json:"field"`
	Resolved Kind   `json:"resolved"`
}

// SourceInfo summarizes one input source for report metadata.
type SourceInfo struct {
	Location string `json:"location"`
	Records  int    `json:"records"`
	Missing  bool   `json:"missing"`
}

// ReportMetadata describes the run that produced a report.
type ReportMetadata struct {
	GeneratedAt  string          `json:"generated_at"`
	Sources      []SourceInfo    `json:"sources"`
	TotalRecords int             `json:"total_records"`
	GroupBy      []string        `json:"group_by"`
	Metrics      []string        `json:"metrics"`
	Conflicts    []FieldConflict `json:"conflicts,omitempty"`
	SkippedRules []SkippedRule   `json:"skipped_rules,omitempty"`
}

// Report is the full serializable output of one pipeline run.
type Report struct {
	Metadata   ReportMetadata     `json:"metadata"`
	Aggregates *AggregationResult `json:"aggregates"`
	Insights   []Insight          `json:"insights"`
}
