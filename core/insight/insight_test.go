package insight

import (
	"testing"

	"github.com/costlens/costlens/internal/contract"
	"github.com/costlens/costlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// priceResult builds a one-column result with a mean usd_per_tb per group.
func priceResult(values map[string]float64) *schema.AggregationResult {
	result := &schema.AggregationResult{
		GroupBy: []string{"category"},
		Metrics: []string{"usd_per_tb"},
		Stats:   []schema.StatSpec{{Kind: schema.MeanStat}},
	}
	keys := []string{"cloud", "duckdb", "opensource", "snowflake"}
	for _, k := range keys {
		v, ok := values[k]
		if !ok {
			continue
		}
		result.Groups = append(result.Groups, schema.GroupStats{
			Key:   schema.GroupKey{Parts: []string{k}},
			Count: 10,
			Cells: []schema.Cell{{Metric: "usd_per_tb", Stat: "mean", Value: v, Valid: true}},
		})
	}
	return result
}

func TestPremiumRule(t *testing.T) {
	result := priceResult(map[string]float64{"cloud": 6.0, "opensource": 4.0})
	rules := []contract.Rule{{
		Name:        "cloud-premium",
		Kind:        schema.PremiumRule,
		Column:      "usd_per_tb_mean",
		Base:        "opensource",
		Target:      "cloud",
		MinDeltaPct: 10,
	}}

	insights, skipped := Evaluate(result, rules)
	assert.Empty(t, skipped)
	require.Len(t, insights, 1)

	in := insights[0]
	assert.Equal(t, "cloud-premium", in.Rule)
	assert.Equal(t, schema.PremiumRule, in.Kind)
	assert.InDelta(t, 50.0, in.Value, 1e-9)
	assert.Equal(t, "percentage-delta", in.Comparison)
	assert.Contains(t, in.Label, "cloud")
	assert.Contains(t, in.Label, "opensource")
}

func TestPremiumRuleBelowMinDeltaIsNoFinding(t *testing.T) {
	result := priceResult(map[string]float64{"cloud": 4.2, "opensource": 4.0})
	rules := []contract.Rule{{
		Name:        "cloud-premium",
		Kind:        schema.PremiumRule,
		Column:      "usd_per_tb_mean",
		Base:        "opensource",
		Target:      "cloud",
		MinDeltaPct: 10,
	}}

	insights, skipped := Evaluate(result, rules)
	assert.Empty(t, insights, "a sub-threshold premium is a valid no-finding")
	assert.Empty(t, skipped, "no-finding is not insufficient data")
}

func TestPremiumRuleMissingGroupIsSkipped(t *testing.T) {
	result := priceResult(map[string]float64{"cloud": 6.0})
	rules := []contract.Rule{{
		Name:   "cloud-premium",
		Kind:   schema.PremiumRule,
		Column: "usd_per_tb_mean",
		Base:   "opensource",
		Target: "cloud",
	}}

	insights, skipped := Evaluate(result, rules)
	assert.Empty(t, insights)
	require.Len(t, skipped, 1)
	assert.Equal(t, "cloud-premium", skipped[0].Rule)
	assert.Contains(t, skipped[0].Reason, "insufficient data")
	assert.Contains(t, skipped[0].Reason, "opensource")
}

func TestPremiumRuleNonPositiveBaseIsSkipped(t *testing.T) {
	result := priceResult(map[string]float64{"cloud": 6.0, "opensource": 0})
	rules := []contract.Rule{{
		Name:   "cloud-premium",
		Kind:   schema.PremiumRule,
		Column: "usd_per_tb_mean",
		Base:   "opensource",
		Target: "cloud",
	}}

	insights, skipped := Evaluate(result, rules)
	assert.Empty(t, insights)
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].Reason, "not positive")
}

func TestTopRule(t *testing.T) {
	result := priceResult(map[string]float64{
		"cloud": 6.0, "duckdb": 1.0, "opensource": 4.0, "snowflake": 7.5,
	})
	rules := []contract.Rule{{
		Name:      "priciest",
		Kind:      schema.TopRule,
		Column:    "usd_per_tb_mean",
		Count:     2,
		Direction: schema.Descending,
	}}

	insights, skipped := Evaluate(result, rules)
	assert.Empty(t, skipped)
	require.Len(t, insights, 2)

	assert.Contains(t, insights[0].Label, "#1")
	assert.Contains(t, insights[0].Label, "snowflake")
	assert.Equal(t, 7.5, insights[0].Value)
	assert.Equal(t, "rank", insights[0].Comparison)

	assert.Contains(t, insights[1].Label, "#2")
	assert.Contains(t, insights[1].Label, "cloud")
}

func TestTopRuleAscending(t *testing.T) {
	result := priceResult(map[string]float64{"cloud": 6.0, "duckdb": 1.0})
	rules := []contract.Rule{{
		Name:      "cheapest",
		Kind:      schema.TopRule,
		Column:    "usd_per_tb_mean",
		Count:     1,
		Direction: schema.Ascending,
	}}

	insights, _ := Evaluate(result, rules)
	require.Len(t, insights, 1)
	assert.Contains(t, insights[0].Label, "lowest")
	assert.Contains(t, insights[0].Label, "duckdb")
}

func TestSpreadRule(t *testing.T) {
	result := priceResult(map[string]float64{"cloud": 6.0, "duckdb": 1.5, "snowflake": 7.5})
	rules := []contract.Rule{{
		Name:   "price-spread",
		Kind:   schema.SpreadRule,
		Column: "usd_per_tb_mean",
	}}

	insights, skipped := Evaluate(result, rules)
	assert.Empty(t, skipped)
	require.Len(t, insights, 1)
	assert.InDelta(t, 5.0, insights[0].Value, 1e-9)
	assert.Equal(t, "multiplier", insights[0].Comparison)
	assert.Contains(t, insights[0].Scope, "snowflake")
	assert.Contains(t, insights[0].Scope, "duckdb")
}

func TestSpreadRuleNeedsTwoGroups(t *testing.T) {
	result := priceResult(map[string]float64{"cloud": 6.0})
	rules := []contract.Rule{{
		Name:   "price-spread",
		Kind:   schema.SpreadRule,
		Column: "usd_per_tb_mean",
	}}

	insights, skipped := Evaluate(result, rules)
	assert.Empty(t, insights)
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].Reason, "at least two groups")
}

func TestSpreadRuleNonPositiveMinIsSkipped(t *testing.T) {
	result := priceResult(map[string]float64{"cloud": 6.0, "duckdb": 0})
	rules := []contract.Rule{{
		Name:   "price-spread",
		Kind:   schema.SpreadRule,
		Column: "usd_per_tb_mean",
	}}

	_, skipped := Evaluate(result, rules)
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].Reason, "not positive")
}

func TestThresholdRule(t *testing.T) {
	result := priceResult(map[string]float64{"cloud": 6.0, "duckdb": 1.0, "snowflake": 7.5})

	tests := []struct {
		name      string
		op        string
		threshold float64
		expected  []string
	}{
		{
			name:      "greater or equal",
			op:        ">=",
			threshold: 6.0,
			expected:  []string{"cloud", "snowflake"},
		},
		{
			name:      "less or equal",
			op:        "<=",
			threshold: 1.0,
			expected:  []string{"duckdb"},
		},
		{
			name:      "nothing crosses",
			op:        ">=",
			threshold: 100,
			expected:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := []contract.Rule{{
				Name:      "bound",
				Kind:      schema.ThresholdRule,
				Column:    "usd_per_tb_mean",
				Threshold: tt.threshold,
				Op:        tt.op,
			}}

			insights, skipped := Evaluate(result, rules)
			assert.Empty(t, skipped)
			require.Len(t, insights, len(tt.expected))
			for i, key := range tt.expected {
				assert.Contains(t, insights[i].Scope, key)
				assert.Equal(t, "absolute", insights[i].Comparison)
			}
		})
	}
}

func TestEvaluateRunsRulesInOrder(t *testing.T) {
	result := priceResult(map[string]float64{"cloud": 6.0, "duckdb": 1.0})
	rules := []contract.Rule{
		{Name: "first", Kind: schema.TopRule, Column: "usd_per_tb_mean", Count: 1, Direction: schema.Descending},
		{Name: "second", Kind: schema.SpreadRule, Column: "usd_per_tb_mean"},
	}

	insights, skipped := Evaluate(result, rules)
	assert.Empty(t, skipped)
	require.Len(t, insights, 2)
	assert.Equal(t, "first", insights[0].Rule)
	assert.Equal(t, "second", insights[1].Rule)
}

func TestEvaluateUnknownColumnIsSkipped(t *testing.T) {
	result := priceResult(map[string]float64{"cloud": 6.0})
	rules := []contract.Rule{{
		Name:   "bad-column",
		Kind:   schema.TopRule,
		Column: "usd_per_tb_p95",
		Count:  1,
	}}

	insights, skipped := Evaluate(result, rules)
	assert.Empty(t, insights)
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].Reason, "no defined values")
}
