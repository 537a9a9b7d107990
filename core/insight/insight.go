// Package insight evaluates declarative rules over aggregation results.
//
// Rules are data, not code: each one names a statistic column, the groups
// it compares, and its bounds. A rule whose inputs are missing from the
// result is skipped and recorded, so callers can distinguish "no finding"
// from "insufficient data".
package insight

import (
	"fmt"

	"github.com/costlens/costlens/core/stats"
	"github.com/costlens/costlens/internal/contract"
	"github.com/costlens/costlens/schema"
)

// Evaluate runs every rule against the result. The returned insights are
// ordered by rule, then by each rule's own deterministic ordering, so the
// same result and rule set always produce the same list.
func Evaluate(result *schema.AggregationResult, rules []contract.Rule) ([]schema.Insight, []schema.SkippedRule) {
	var insights []schema.Insight
	var skipped []schema.SkippedRule

	for _, rule := range rules {
		found, err := evaluateRule(result, rule)
		if err != nil {
			skipped = append(skipped, schema.SkippedRule{Rule: rule.Name, Reason: err.Error()})
			continue
		}
		insights = append(insights, found...)
	}
	return insights, skipped
}

func evaluateRule(result *schema.AggregationResult, rule contract.Rule) ([]schema.Insight, error) {
	switch rule.Kind {
	case schema.PremiumRule:
		return premiumInsight(result, rule)
	case schema.TopRule:
		return topInsights(result, rule)
	case schema.SpreadRule:
		return spreadInsight(result, rule)
	case schema.ThresholdRule:
		return thresholdInsights(result, rule)
	default:
		return nil, fmt.Errorf("unknown rule kind '%s'", rule.Kind)
	}
}

// premiumInsight compares the target group's statistic against the base
// group's and emits a percentage-delta finding when the premium clears the
// rule's minimum. A sub-threshold premium is a valid "no finding", not an
// error.
func premiumInsight(result *schema.AggregationResult, rule contract.Rule) ([]schema.Insight, error) {
	base, err := groupColumn(result, rule.Base, rule.Column)
	if err != nil {
		return nil, err
	}
	target, err := groupColumn(result, rule.Target, rule.Column)
	if err != nil {
		return nil, err
	}
	if base <= 0 {
		return nil, fmt.Errorf("%w: baseline '%s' is not positive", contract.ErrInsufficientData, rule.Base)
	}

	delta := (target/base - 1) * 100
	if delta < rule.MinDeltaPct {
		return nil, nil
	}
	return []schema.Insight{{
		Rule:       rule.Name,
		Kind:       schema.PremiumRule,
		Label:      fmt.Sprintf("%s runs %.1f%% above %s on %s", rule.Target, delta, rule.Base, rule.Column),
		Scope:      []string{rule.Base, rule.Target, rule.Column},
		Value:      delta,
		Comparison: "percentage-delta",
	}}, nil
}

// topInsights emits one ranked finding per selected group.
func topInsights(result *schema.AggregationResult, rule contract.Rule) ([]schema.Insight, error) {
	defined := definedGroups(result, rule.Column)
	if len(defined) == 0 {
		return nil, fmt.Errorf("%w: column '%s' has no defined values", contract.ErrInsufficientData, rule.Column)
	}

	ranked := stats.TopN(defined, rule.Column, rule.Count, rule.Direction)
	adjective := "highest"
	if rule.Direction == schema.Ascending {
		adjective = "lowest"
	}

	insights := make([]schema.Insight, 0, len(ranked))
	for i := range ranked {
		v, _ := stats.ColumnValue(&ranked[i], rule.Column)
		insights = append(insights, schema.Insight{
			Rule:       rule.Name,
			Kind:       schema.TopRule,
			Label:      fmt.Sprintf("#%d %s %s: %s (%g)", i+1, adjective, rule.Column, ranked[i].Key.String(), v),
			Scope:      []string{ranked[i].Key.String(), rule.Column},
			Value:      v,
			Comparison: "rank",
		})
	}
	return insights, nil
}

// spreadInsight reports the max/min multiplier of a column across all
// groups where it is defined.
func spreadInsight(result *schema.AggregationResult, rule contract.Rule) ([]schema.Insight, error) {
	defined := definedGroups(result, rule.Column)
	if len(defined) < 2 {
		return nil, fmt.Errorf("%w: spread needs at least two groups with '%s'", contract.ErrInsufficientData, rule.Column)
	}

	highest := stats.TopN(defined, rule.Column, 1, schema.Descending)[0]
	lowest := stats.TopN(defined, rule.Column, 1, schema.Ascending)[0]
	maxV, _ := stats.ColumnValue(&highest, rule.Column)
	minV, _ := stats.ColumnValue(&lowest, rule.Column)
	if minV <= 0 {
		return nil, fmt.Errorf("%w: minimum of '%s' is not positive", contract.ErrInsufficientData, rule.Column)
	}

	multiplier := maxV / minV
	return []schema.Insight{{
		Rule:       rule.Name,
		Kind:       schema.SpreadRule,
		Label:      fmt.Sprintf("%s spans %.1fx on %s (%s at %g, %s at %g)", rule.Column, multiplier, rule.Column, highest.Key.String(), maxV, lowest.Key.String(), minV),
		Scope:      []string{highest.Key.String(), lowest.Key.String(), rule.Column},
		Value:      multiplier,
		Comparison: "multiplier",
	}}, nil
}

// thresholdInsights emits one finding per group crossing the bound.
func thresholdInsights(result *schema.AggregationResult, rule contract.Rule) ([]schema.Insight, error) {
	defined := definedGroups(result, rule.Column)
	if len(defined) == 0 {
		return nil, fmt.Errorf("%w: column '%s' has no defined values", contract.ErrInsufficientData, rule.Column)
	}

	var insights []schema.Insight
	for i := range defined {
		v, _ := stats.ColumnValue(&defined[i], rule.Column)
		crossed := v >= rule.Threshold
		if rule.Op == "<=" {
			crossed = v <= rule.Threshold
		}
		if !crossed {
			continue
		}
		insights = append(insights, schema.Insight{
			Rule:       rule.Name,
			Kind:       schema.ThresholdRule,
			Label:      fmt.Sprintf("%s %s %s %g (%g)", defined[i].Key.String(), rule.Column, rule.Op, rule.Threshold, v),
			Scope:      []string{defined[i].Key.String(), rule.Column},
			Value:      v,
			Comparison: "absolute",
		})
	}
	return insights, nil
}

// groupColumn resolves one group's column value or explains what is missing.
func groupColumn(result *schema.AggregationResult, key, column string) (float64, error) {
	for i := range result.Groups {
		g := &result.Groups[i]
		if g.Key.String() != key {
			continue
		}
		if v, ok := stats.ColumnValue(g, column); ok {
			return v, nil
		}
		return 0, fmt.Errorf("%w: column '%s' undefined for group '%s'", contract.ErrInsufficientData, column, key)
	}
	return 0, fmt.Errorf("%w: group '%s' absent", contract.ErrInsufficientData, key)
}

// definedGroups filters to groups where the column resolves, preserving
// the result's computed order.
func definedGroups(result *schema.AggregationResult, column string) []schema.GroupStats {
	var out []schema.GroupStats
	for i := range result.Groups {
		if _, ok := stats.ColumnValue(&result.Groups[i], column); ok {
			out = append(out, result.Groups[i])
		}
	}
	return out
}
