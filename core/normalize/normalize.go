// Package normalize reconciles heterogeneous source datasets into a single
// typed dataset with a union schema.
package normalize

import (
	"sort"
	"strconv"
	"strings"

	"github.com/costlens/costlens/schema"
)

// Merge produces one Dataset whose schema is the union of all input
// schemas, in first-observed field order, and whose records carry typed
// values. Records lacking a field present in the union gain it as null.
//
// Type resolution is deterministic and information-preserving: a field
// holding only integers stays int, integers mixed with floats widen to
// float, and any mix of numeric/boolean/textual values falls back to
// string for the whole merged dataset. Each string fallback caused by a
// mixed-kind field is reported as a FieldConflict.
//
// Merging an already-normalized dataset is a no-op: typed values classify
// as their own kind and coerce to themselves, so output is byte-identical.
func Merge(datasets []*schema.Dataset) (*schema.Dataset, []schema.FieldConflict) {
	merged := &schema.Dataset{Label: "merged"}

	// Union schema in first-observed order.
	seen := make(map[string]struct{})
	var fieldOrder []string
	for _, ds := range datasets {
		for _, f := range ds.Fields {
			if _, ok := seen[f.Name]; !ok {
				seen[f.Name] = struct{}{}
				fieldOrder = append(fieldOrder, f.Name)
			}
		}
	}

	// Pass 1: classify every value to resolve each field's kind.
	observed := make(map[string]map[schema.Kind]struct{}, len(fieldOrder))
	for _, ds := range datasets {
		for _, rec := range ds.Records {
			for name, v := range rec {
				kind := classify(v)
				if kind == schema.NullKind {
					continue
				}
				if observed[name] == nil {
					observed[name] = make(map[schema.Kind]struct{})
				}
				observed[name][kind] = struct{}{}
			}
		}
	}

	var conflicts []schema.FieldConflict
	kinds := make(map[string]schema.Kind, len(fieldOrder))
	for _, name := range fieldOrder {
		kind, conflict := unify(observed[name])
		kinds[name] = kind
		if conflict {
			conflicts = append(conflicts, schema.FieldConflict{Field: name, Resolved: kind})
		}
		merged.Fields = append(merged.Fields, schema.Field{Name: name, Kind: kind})
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Field < conflicts[j].Field })

	// Pass 2: build new records against the union schema. Input records
	// are never mutated.
	for _, ds := range datasets {
		for _, rec := range ds.Records {
			out := make(schema.Record, len(fieldOrder))
			for _, name := range fieldOrder {
				out[name] = coerce(rec.Get(name), kinds[name])
			}
			merged.Records = append(merged.Records, out)
		}
	}
	return merged, conflicts
}

// classify returns the kind a value will have after normalization.
// Raw strings are classified by inference; typed values keep their kind.
func classify(v schema.Value) schema.Kind {
	if s, ok := v.Str(); ok {
		return InferValue(s).Kind()
	}
	return v.Kind()
}

// unify resolves the set of observed kinds for a field. conflict is true
// when incompatible kinds forced the string fallback; int widening to
// float is compatible and silent.
func unify(observed map[schema.Kind]struct{}) (schema.Kind, bool) {
	has := func(k schema.Kind) bool { _, ok := observed[k]; return ok }
	switch len(observed) {
	case 0:
		// No non-null values at all; string is the safe default.
		return schema.StringKind, false
	case 1:
		for k := range observed {
			return k, false
		}
	case 2:
		if has(schema.IntKind) && has(schema.FloatKind) {
			return schema.FloatKind, false
		}
	}
	// Mixed textual/numeric/boolean: string preserves every value.
	return schema.StringKind, true
}

// coerce converts a value to the resolved field kind. Values that already
// match pass through untouched; anything that cannot represent itself in
// the field kind falls back to its display string, never to an error.
func coerce(v schema.Value, kind schema.Kind) schema.Value {
	if v.IsNull() {
		return schema.Null()
	}
	if s, ok := v.Str(); ok {
		parsed := InferValue(s)
		switch {
		case parsed.Kind() == kind:
			if kind == schema.StringKind {
				return v // keep the original string verbatim
			}
			return parsed
		case kind == schema.FloatKind && parsed.Kind() == schema.IntKind:
			i, _ := parsed.Int()
			return schema.FloatValue(float64(i))
		case kind == schema.StringKind:
			return v
		default:
			return v
		}
	}
	if v.Kind() == kind {
		return v
	}
	if kind == schema.FloatKind && v.Kind() == schema.IntKind {
		i, _ := v.Int()
		return schema.FloatValue(float64(i))
	}
	return schema.StringValue(v.Display())
}

// InferValue parses one raw string into its typed value: integer first,
// then float (stripping currency signs, percent suffixes and thousands
// separators), then boolean, else the string itself. Blank strings are
// null. The try-order is fixed, so "1" and "0" are integers, not booleans.
func InferValue(s string) schema.Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return schema.Null()
	}

	cleaned := stripNumericDecorations(trimmed)
	if i, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		return schema.IntValue(i)
	}
	if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return schema.FloatValue(f)
	}

	switch strings.ToLower(trimmed) {
	case "true", "yes":
		return schema.BoolValue(true)
	case "false", "no":
		return schema.BoolValue(false)
	}
	return schema.StringValue(s)
}

// stripNumericDecorations removes the currency/percent/thousands noise the
// research CSVs carry ("$1,234.50", "37%") so the numeric parse can run.
// Non-numeric text is unaffected because the parse simply fails afterwards.
func stripNumericDecorations(s string) string {
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimSuffix(s, "%")
	return strings.ReplaceAll(s, ",", "")
}
