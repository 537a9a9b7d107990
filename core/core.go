// Package core has the pipeline orchestration for loading, normalizing,
// aggregating and reporting.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/costlens/costlens/core/agg"
	"github.com/costlens/costlens/core/insight"
	"github.com/costlens/costlens/core/loader"
	"github.com/costlens/costlens/core/normalize"
	"github.com/costlens/costlens/core/stats"
	"github.com/costlens/costlens/internal/contract"
	"github.com/costlens/costlens/internal/outwriter"
	"github.com/costlens/costlens/schema"
)

// pipelineOutput carries everything one pipeline pass produced. All of it
// is discarded when the invocation returns; there is no cross-run state.
type pipelineOutput struct {
	gaps      []schema.SourceGap
	sources   []*schema.Dataset
	merged    *schema.Dataset
	conflicts []schema.FieldConflict
	result    *schema.AggregationResult
}

// runPipelineCore executes load → normalize → aggregate. The returned
// result is sorted by GroupKey (the engine's computed order); ranking for
// display happens separately so insight rules always see every group.
func runPipelineCore(ctx context.Context, cfg *contract.Config) (*pipelineOutput, error) {
	ld := loader.New()
	sources, gaps, err := ld.LoadAll(ctx, cfg.Sources, cfg.Workers)
	if err != nil {
		return nil, err
	}
	for _, gap := range gaps {
		contract.LogWarn("skipping source "+gap.Location, errors.New(gap.Reason))
	}

	merged, conflicts := normalize.Merge(sources)

	result, err := agg.Aggregate(merged, cfg.GroupBy, cfg.Metrics, cfg.Stats, cfg.Ratios)
	if err != nil {
		return nil, err
	}
	return &pipelineOutput{
		gaps:      gaps,
		sources:   sources,
		merged:    merged,
		conflicts: conflicts,
		result:    result,
	}, nil
}

// rankForDisplay returns a copy of the result with groups ordered by the
// configured sort column and truncated to the result limit.
func rankForDisplay(result *schema.AggregationResult, cfg *contract.Config) *schema.AggregationResult {
	ranked := *result
	ranked.Groups = stats.TopN(result.Groups, cfg.SortColumn, cfg.ResultLimit, cfg.Direction)
	return &ranked
}

// ExecuteAggregate runs the aggregation pipeline and writes the grouped
// statistics. It serves as the main entry point for the 'aggregate' mode.
func ExecuteAggregate(ctx context.Context, cfg *contract.Config) error {
	output, err := runPipelineCore(ctx, cfg)
	if err != nil {
		return err
	}
	ow := outwriter.NewOutWriter()
	return ow.WriteAggregates(rankForDisplay(output.result, cfg), cfg)
}

// ExecuteInsights runs the aggregation pipeline, evaluates the configured
// rules over the full (unranked) result, and writes the findings.
func ExecuteInsights(ctx context.Context, cfg *contract.Config) error {
	output, err := runPipelineCore(ctx, cfg)
	if err != nil {
		return err
	}
	insights, skipped := insight.Evaluate(output.result, cfg.Rules)
	ow := outwriter.NewOutWriter()
	return ow.WriteInsights(output.result, insights, skipped, cfg)
}

// ExecuteReport runs the full pipeline and writes the structured
// {metadata, aggregates, insights} report.
func ExecuteReport(ctx context.Context, cfg *contract.Config) error {
	output, err := runPipelineCore(ctx, cfg)
	if err != nil {
		return err
	}
	insights, skipped := insight.Evaluate(output.result, cfg.Rules)

	report := &schema.Report{
		Metadata: schema.ReportMetadata{
			GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
			Sources:      buildSourceInfos(cfg.Sources, output),
			TotalRecords: output.merged.Len(),
			GroupBy:      cfg.GroupBy,
			Metrics:      cfg.Metrics,
			Conflicts:    output.conflicts,
			SkippedRules: skipped,
		},
		Aggregates: rankForDisplay(output.result, cfg),
		Insights:   insights,
	}
	ow := outwriter.NewOutWriter()
	return ow.WriteReport(report, cfg)
}

// ExecuteInspect loads and normalizes the sources, then writes the merged
// schema so typing decisions can be audited before a full run.
func ExecuteInspect(ctx context.Context, cfg *contract.Config) error {
	ld := loader.New()
	sources, gaps, err := ld.LoadAll(ctx, cfg.Sources, cfg.Workers)
	if err != nil {
		return err
	}
	merged, conflicts := normalize.Merge(sources)
	ow := outwriter.NewOutWriter()
	return ow.WriteSchema(merged, conflicts, gaps, cfg)
}

// ExecuteDefinitions displays the formal definitions of all statistics and
// rule kinds. This is a static display that loads no data.
func ExecuteDefinitions(cfg *contract.Config) error {
	ow := outwriter.NewOutWriter()
	return ow.WriteDefinitions(cfg)
}

// buildSourceInfos summarizes every requested source, loaded or missing,
// in the order the user listed them.
func buildSourceInfos(locations []string, output *pipelineOutput) []schema.SourceInfo {
	missing := make(map[string]struct{}, len(output.gaps))
	for _, gap := range output.gaps {
		missing[gap.Location] = struct{}{}
	}
	records := make(map[string]int, len(output.sources))
	for _, ds := range output.sources {
		records[ds.Label] = ds.Len()
	}

	infos := make([]schema.SourceInfo, 0, len(locations))
	for _, loc := range locations {
		if _, gone := missing[loc]; gone {
			infos = append(infos, schema.SourceInfo{Location: loc, Missing: true})
			continue
		}
		infos = append(infos, schema.SourceInfo{Location: loc, Records: records[loc]})
	}
	return infos
}
