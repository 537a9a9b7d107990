package outwriter

import (
	"fmt"
	"io"

	"github.com/costlens/costlens/internal/contract"
	"github.com/costlens/costlens/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteSchema outputs the merged union schema with inferred kinds, plus any
// type conflicts and source gaps. Used by the inspect command to audit how
// the normalizer read a set of sources before running a full aggregation.
func (ow *OutWriter) WriteSchema(ds *schema.Dataset, conflicts []schema.FieldConflict, gaps []schema.SourceGap, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, struct {
				Records   int                    `json:"records"`
				Fields    []schema.Field         `json:"fields"`
				Conflicts []schema.FieldConflict `json:"conflicts"`
				Gaps      []schema.SourceGap     `json:"gaps"`
			}{ds.Len(), ds.Fields, conflicts, gaps})
		}, "Wrote JSON")
	}

	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeSchemaTable(w, ds, conflicts, gaps)
	}, "Wrote table")
}

func writeSchemaTable(w io.Writer, ds *schema.Dataset, conflicts []schema.FieldConflict, gaps []schema.SourceGap) error {
	conflicted := make(map[string]struct{}, len(conflicts))
	for _, c := range conflicts {
		conflicted[c.Field] = struct{}{}
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Field", "Kind", "Note"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, f := range ds.Fields {
		note := ""
		if _, ok := conflicted[f.Name]; ok {
			note = "mixed types across sources; kept as string"
		}
		data = append(data, []string{f.Name, string(f.Kind), note})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, gap := range gaps {
		if _, err := fmt.Fprintf(w, "Missing source %s: %s\n", gap.Location, gap.Reason); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d fields, %d records\n", len(ds.Fields), ds.Len())
	return err
}
