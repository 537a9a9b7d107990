// Package loader reads tabular sources into raw string datasets.
//
// The loader is pure I/O plus structural parsing: every value comes out as
// the verbatim source string, and all type coercion is left to the
// normalizer. A missing or unreadable source is a recorded gap, not a
// failed run.
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/costlens/costlens/internal/contract"
	"github.com/costlens/costlens/schema"
)

// Loader fans source locations out to format readers.
type Loader struct {
	readers []contract.SourceReader
}

// New returns a loader with the built-in readers (CSV and SQLite).
func New() *Loader {
	return &Loader{readers: []contract.SourceReader{&SQLiteReader{}, &CSVReader{}}}
}

// NewWithReaders returns a loader with a custom reader chain, used by tests.
func NewWithReaders(readers ...contract.SourceReader) *Loader {
	return &Loader{readers: readers}
}

// LoadAll reads every location into its own Dataset, preserving input
// order. Sources load concurrently with up to `workers` goroutines; the
// result is identical to a sequential run because each source lands in its
// input slot. Failed sources become SourceGaps and the run continues; only
// zero readable sources is fatal.
func (l *Loader) LoadAll(ctx context.Context, locations []string, workers int) ([]*schema.Dataset, []schema.SourceGap, error) {
	if len(locations) == 0 {
		return nil, nil, fmt.Errorf("at least one source location is required")
	}
	if workers <= 0 {
		workers = 1
	}

	datasets := make([]*schema.Dataset, len(locations))
	errs := make([]error, len(locations))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i, loc := range locations {
		wg.Add(1)
		go func(i int, loc string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			datasets[i], errs[i] = l.loadOne(ctx, loc)
		}(i, loc)
	}
	wg.Wait()

	var loaded []*schema.Dataset
	var gaps []schema.SourceGap
	for i, loc := range locations {
		if errs[i] != nil {
			gaps = append(gaps, schema.SourceGap{Location: loc, Reason: errs[i].Error()})
			continue
		}
		loaded = append(loaded, datasets[i])
	}
	if len(loaded) == 0 {
		return nil, gaps, fmt.Errorf("%w: all %d sources failed", contract.ErrNoValidSources, len(locations))
	}
	return loaded, gaps, nil
}

// loadOne dispatches a location to the first reader that claims it.
func (l *Loader) loadOne(ctx context.Context, location string) (*schema.Dataset, error) {
	for _, r := range l.readers {
		if r.CanRead(location) {
			return r.Read(ctx, location)
		}
	}
	return nil, &contract.SourceNotFoundError{
		Location: location,
		Err:      fmt.Errorf("unsupported source format"),
	}
}

// CSVReader parses delimited files with a header row.
type CSVReader struct{}

var _ contract.SourceReader = (*CSVReader)(nil) // Compile-time check

// CanRead claims .csv locations.
func (r *CSVReader) CanRead(location string) bool {
	return strings.EqualFold(filepath.Ext(location), ".csv")
}

// Read opens and parses the file. Missing files surface as
// SourceNotFoundError so the pipeline can continue without them.
func (r *CSVReader) Read(_ context.Context, location string) (*schema.Dataset, error) {
	f, err := os.Open(location)
	if err != nil {
		return nil, &contract.SourceNotFoundError{Location: location, Err: err}
	}
	defer func() { _ = f.Close() }()
	return ParseCSV(f, location)
}

// ParseCSV reads CSV from any byte stream. The header row becomes the
// initial schema; every cell stays a verbatim string (blank cells stay
// blank here and become null during normalization). Short rows are
// tolerated: missing trailing fields are simply absent from the record.
func ParseCSV(reader io.Reader, label string) (*schema.Dataset, error) {
	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1 // sources are hand-curated; ragged rows happen

	header, err := cr.Read()
	if err != nil {
		return nil, &contract.SourceNotFoundError{Location: label, Err: fmt.Errorf("cannot read header: %w", err)}
	}

	ds := &schema.Dataset{Label: label}
	for _, name := range header {
		ds.Fields = append(ds.Fields, schema.Field{Name: strings.TrimSpace(name), Kind: schema.StringKind})
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &contract.SourceNotFoundError{Location: label, Err: fmt.Errorf("malformed row: %w", err)}
		}
		rec := make(schema.Record, len(ds.Fields))
		for i, cell := range row {
			if i >= len(ds.Fields) {
				break // extra unnamed cells have no schema home
			}
			rec[ds.Fields[i].Name] = schema.StringValue(cell)
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}
