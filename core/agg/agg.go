// Package agg has the grouping engine that turns a normalized dataset into
// per-group statistics.
package agg

import (
	"fmt"
	"sort"

	"github.com/costlens/costlens/core/stats"
	"github.com/costlens/costlens/schema"
)

// Aggregate partitions the dataset by the grouping fields and computes the
// requested statistics and derived ratios per group.
//
// Null handling: a record with a null metric value still counts toward the
// group's Count, but is excluded from that metric's statistics. A group of
// five records where two have null cost reports count=5 and a mean over the
// three non-null values.
func Aggregate(ds *schema.Dataset, groupBy, metrics []string, specs []schema.StatSpec, ratios []schema.RatioSpec) (*schema.AggregationResult, error) {
	if ds == nil || len(groupBy) == 0 {
		return nil, fmt.Errorf("aggregation requires a dataset and at least one grouping field")
	}
	if err := checkFields(ds, metrics, specs, ratios); err != nil {
		return nil, err
	}

	// Partition records. Missing/null key components become the "unknown"
	// group instead of being dropped, so partial records stay visible.
	buckets := make(map[string][]schema.Record)
	keys := make(map[string]schema.GroupKey)
	for _, rec := range ds.Records {
		key := buildKey(rec, groupBy)
		id := key.String()
		if _, ok := keys[id]; !ok {
			keys[id] = key
		}
		buckets[id] = append(buckets[id], rec)
	}

	ids := make([]string, 0, len(keys))
	for id := range keys {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return keys[ids[i]].Less(keys[ids[j]]) })

	result := &schema.AggregationResult{
		GroupBy:      groupBy,
		Metrics:      metrics,
		Stats:        specs,
		Ratios:       ratios,
		TotalRecords: ds.Len(),
	}
	for _, id := range ids {
		result.Groups = append(result.Groups, computeGroup(keys[id], buckets[id], metrics, specs, ratios))
	}
	return result, nil
}

// checkFields rejects references to fields absent from the schema. A typo
// in a metric name is structural misuse and fatal, unlike a missing value.
func checkFields(ds *schema.Dataset, metrics []string, specs []schema.StatSpec, ratios []schema.RatioSpec) error {
	for _, m := range metrics {
		if !ds.HasField(m) {
			return fmt.Errorf("unknown metric field '%s'", m)
		}
	}
	for _, s := range specs {
		if s.Kind == schema.WeightedMeanStat && !ds.HasField(s.WeightField) {
			return fmt.Errorf("unknown weight field '%s'", s.WeightField)
		}
	}
	for _, r := range ratios {
		if !ds.HasField(r.Numerator) {
			return fmt.Errorf("ratio '%s': unknown numerator field '%s'", r.Name, r.Numerator)
		}
		if !ds.HasField(r.Denominator) {
			return fmt.Errorf("ratio '%s': unknown denominator field '%s'", r.Name, r.Denominator)
		}
	}
	return nil
}

// buildKey renders the grouping tuple for one record.
func buildKey(rec schema.Record, groupBy []string) schema.GroupKey {
	parts := make([]string, len(groupBy))
	for i, field := range groupBy {
		v := rec.Get(field)
		if v.IsNull() {
			parts[i] = schema.UnknownGroup
			continue
		}
		parts[i] = v.Display()
	}
	return schema.GroupKey{Parts: parts}
}

// computeGroup evaluates every requested statistic for one group.
func computeGroup(key schema.GroupKey, records []schema.Record, metrics []string, specs []schema.StatSpec, ratios []schema.RatioSpec) schema.GroupStats {
	g := schema.GroupStats{Key: key, Count: len(records)}

	for _, metric := range metrics {
		values := metricValues(records, metric)
		for _, spec := range specs {
			cell := schema.Cell{Metric: metric, Stat: spec.Name()}
			switch spec.Kind {
			case schema.SumStat:
				cell.Value, cell.Valid = stats.Sum(values), len(values) > 0
			case schema.MeanStat:
				cell.Value, cell.Valid = stats.Mean(values)
			case schema.MedianStat:
				cell.Value, cell.Valid = stats.Median(values)
			case schema.MinStat:
				cell.Value, cell.Valid = stats.Min(values)
			case schema.MaxStat:
				cell.Value, cell.Valid = stats.Max(values)
			case schema.StdevStat:
				cell.Value, cell.Valid = stats.Stdev(values)
			case schema.PercentileStat:
				cell.Value, cell.Valid = stats.Percentile(values, spec.Percentile)
			case schema.WeightedMeanStat:
				vals, weights := pairedValues(records, metric, spec.WeightField)
				cell.Value, cell.Valid = stats.WeightedMean(vals, weights)
			}
			g.Cells = append(g.Cells, cell)
		}
	}

	// Ratios divide aggregated sums. Averaging per-row ratios would weight
	// small rows the same as large ones and invite Simpson's paradox.
	for _, r := range ratios {
		num := stats.Sum(metricValues(records, r.Numerator))
		den := stats.Sum(metricValues(records, r.Denominator))
		cell := schema.Cell{Metric: r.Name, Stat: "ratio"}
		if den != 0 {
			cell.Value, cell.Valid = num/den, true
		}
		g.Cells = append(g.Cells, cell)
	}
	return g
}

// metricValues collects the non-null numeric values of a field.
func metricValues(records []schema.Record, field string) []float64 {
	var out []float64
	for _, rec := range records {
		if f, ok := rec.Get(field).Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// pairedValues collects (value, weight) pairs where both are non-null.
func pairedValues(records []schema.Record, field, weightField string) (vals, weights []float64) {
	for _, rec := range records {
		v, okV := rec.Get(field).Float()
		w, okW := rec.Get(weightField).Float()
		if okV && okW {
			vals = append(vals, v)
			weights = append(weights, w)
		}
	}
	return vals, weights
}
