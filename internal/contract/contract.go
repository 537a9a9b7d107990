// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/costlens/costlens/schema"
)

// SourceReader abstracts one tabular input format. The loader walks its
// readers in order and uses the first one that claims a location, which
// keeps format dispatch out of the pipeline core and lets tests swap in
// fake readers.
type SourceReader interface {
	// CanRead reports whether the reader handles the given location.
	CanRead(location string) bool

	// Read parses the source into a Dataset of verbatim string values.
	// No type coercion happens here; that is the normalizer's job.
	Read(ctx context.Context, location string) (*schema.Dataset, error)
}

// ReportWriter renders pipeline outputs in one of the supported formats.
// Implementations must render aggregates and insights in the order they
// were computed, never re-sorting at render time.
type ReportWriter interface {
	WriteAggregates(result *schema.AggregationResult, cfg *Config) error
	WriteInsights(result *schema.AggregationResult, insights []schema.Insight, skipped []schema.SkippedRule, cfg *Config) error
	WriteReport(report *schema.Report, cfg *Config) error
}
