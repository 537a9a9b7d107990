package core

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/costlens/costlens/internal/contract"
	"github.com/costlens/costlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func pipelineConfig(sources []string, outputFile string) *contract.Config {
	return &contract.Config{
		Sources:     sources,
		GroupBy:     []string{"provider"},
		Metrics:     []string{"usd"},
		Stats:       []schema.StatSpec{{Kind: schema.MeanStat}},
		SortColumn:  "usd_mean",
		Direction:   schema.Descending,
		ResultLimit: contract.DefaultResultLimit,
		Workers:     2,
		Precision:   2,
		Output:      schema.JSONOut,
		OutputFile:  outputFile,
	}
}

func TestExecuteAggregateEndToEnd(t *testing.T) {
	q1 := writeTempCSV(t, "q1.csv", "provider,usd\nbigquery,10\nbigquery,20\n")
	q2 := writeTempCSV(t, "q2.csv", "provider,usd\nathena,5\n")
	outFile := filepath.Join(t.TempDir(), "agg.json")

	cfg := pipelineConfig([]string{q1, q2}, outFile)
	require.NoError(t, ExecuteAggregate(context.Background(), cfg))

	content, err := os.ReadFile(outFile)
	require.NoError(t, err)

	var decoded struct {
		TotalRecords int `json:"total_records"`
		Groups       []struct {
			Key   []string           `json:"key"`
			Count int                `json:"count"`
			Stats map[string]float64 `json:"stats"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(content, &decoded))

	assert.Equal(t, 3, decoded.TotalRecords)
	require.Len(t, decoded.Groups, 2)
	// Display ranking is descending by usd_mean, not key order.
	assert.Equal(t, []string{"bigquery"}, decoded.Groups[0].Key)
	assert.Equal(t, 15.0, decoded.Groups[0].Stats["usd_mean"])
	assert.Equal(t, []string{"athena"}, decoded.Groups[1].Key)
}

func TestExecuteAggregateToleratesMissingSource(t *testing.T) {
	q1 := writeTempCSV(t, "q1.csv", "provider,usd\nbigquery,10\n")
	outFile := filepath.Join(t.TempDir(), "agg.json")

	cfg := pipelineConfig([]string{q1, "/nonexistent/q2.csv"}, outFile)
	require.NoError(t, ExecuteAggregate(context.Background(), cfg))

	content, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var decoded struct {
		TotalRecords int `json:"total_records"`
	}
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, 1, decoded.TotalRecords)
}

func TestExecuteAggregateAllSourcesMissing(t *testing.T) {
	cfg := pipelineConfig([]string{"/nonexistent/a.csv", "/nonexistent/b.csv"}, "")
	err := ExecuteAggregate(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrNoValidSources))
}

func TestExecuteInsightsEndToEnd(t *testing.T) {
	q1 := writeTempCSV(t, "q1.csv", "provider,usd\nbigquery,10\nathena,2\n")
	outFile := filepath.Join(t.TempDir(), "insights.json")

	cfg := pipelineConfig([]string{q1}, outFile)
	cfg.Rules = []contract.Rule{{
		Name:      "expensive",
		Kind:      schema.ThresholdRule,
		Column:    "usd_mean",
		Threshold: 5,
		Op:        ">=",
	}}
	require.NoError(t, ExecuteInsights(context.Background(), cfg))

	content, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var decoded struct {
		Insights []schema.Insight     `json:"insights"`
		Skipped  []schema.SkippedRule `json:"skipped_rules"`
	}
	require.NoError(t, json.Unmarshal(content, &decoded))
	require.Len(t, decoded.Insights, 1)
	assert.Contains(t, decoded.Insights[0].Scope, "bigquery")
	assert.Empty(t, decoded.Skipped)
}

func TestExecuteInsightsSeesAllGroups(t *testing.T) {
	// With a display limit of 1 the rule must still see both groups.
	q1 := writeTempCSV(t, "q1.csv", "provider,usd\nbigquery,10\nathena,2\n")
	outFile := filepath.Join(t.TempDir(), "insights.json")

	cfg := pipelineConfig([]string{q1}, outFile)
	cfg.ResultLimit = 1
	cfg.Rules = []contract.Rule{{
		Name:      "cheap",
		Kind:      schema.ThresholdRule,
		Column:    "usd_mean",
		Threshold: 5,
		Op:        "<=",
	}}
	require.NoError(t, ExecuteInsights(context.Background(), cfg))

	content, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var decoded struct {
		Insights []schema.Insight `json:"insights"`
	}
	require.NoError(t, json.Unmarshal(content, &decoded))
	require.Len(t, decoded.Insights, 1)
	assert.Contains(t, decoded.Insights[0].Scope, "athena")
}

func TestExecuteReportEndToEnd(t *testing.T) {
	q1 := writeTempCSV(t, "q1.csv", "provider,usd\nbigquery,10\nathena,2\n")
	outFile := filepath.Join(t.TempDir(), "report.json")

	cfg := pipelineConfig([]string{q1, "/nonexistent/q2.csv"}, outFile)
	require.NoError(t, ExecuteReport(context.Background(), cfg))

	content, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var decoded struct {
		Metadata struct {
			GeneratedAt  string              `json:"generated_at"`
			Sources      []schema.SourceInfo `json:"sources"`
			TotalRecords int                 `json:"total_records"`
		} `json:"metadata"`
		Aggregates *schema.AggregationResult `json:"aggregates"`
	}
	require.NoError(t, json.Unmarshal(content, &decoded))

	assert.NotEmpty(t, decoded.Metadata.GeneratedAt)
	require.Len(t, decoded.Metadata.Sources, 2)
	assert.Equal(t, q1, decoded.Metadata.Sources[0].Location)
	assert.Equal(t, 2, decoded.Metadata.Sources[0].Records)
	assert.True(t, decoded.Metadata.Sources[1].Missing)
	assert.Equal(t, 2, decoded.Metadata.TotalRecords)
	require.NotNil(t, decoded.Aggregates)
}

func TestRankForDisplayDoesNotMutateResult(t *testing.T) {
	result := &schema.AggregationResult{
		Groups: []schema.GroupStats{
			{Key: schema.GroupKey{Parts: []string{"a"}}, Count: 1, Cells: []schema.Cell{{Metric: "usd", Stat: "mean", Value: 1, Valid: true}}},
			{Key: schema.GroupKey{Parts: []string{"b"}}, Count: 1, Cells: []schema.Cell{{Metric: "usd", Stat: "mean", Value: 9, Valid: true}}},
		},
	}
	cfg := pipelineConfig(nil, "")
	cfg.ResultLimit = 1

	ranked := rankForDisplay(result, cfg)
	require.Len(t, ranked.Groups, 1)
	assert.Equal(t, "b", ranked.Groups[0].Key.String())

	// The full result keeps every group in key order.
	require.Len(t, result.Groups, 2)
	assert.Equal(t, "a", result.Groups[0].Key.String())
}
