// Package schema has configs, models and shared types for all parts of costlens.
package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Value is a tagged union over the types a tabular cell can hold.
// The zero Value is null. Values are immutable once constructed.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
}

// Null returns the null Value.
func Null() Value {
	return Value{kind: NullKind}
}

// IntValue wraps an int64.
func IntValue(i int64) Value {
	return Value{kind: IntKind, i: i}
}

// FloatValue wraps a float64.
func FloatValue(f float64) Value {
	return Value{kind: FloatKind, f: f}
}

// BoolValue wraps a bool.
func BoolValue(b bool) Value {
	return Value{kind: BoolKind, b: b}
}

// StringValue wraps a string.
func StringValue(s string) Value {
	return Value{kind: StringKind, s: s}
}

// Kind returns the kind tag of the value.
func (v Value) Kind() Kind {
	if v.kind == "" {
		return NullKind
	}
	return v.kind
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.Kind() == NullKind
}

// Int returns the integer payload. The bool is false for non-int kinds.
func (v Value) Int() (int64, bool) {
	if v.kind == IntKind {
		return v.i, true
	}
	return 0, false
}

// Float returns the value as a float64. Integer values coerce; all other
// kinds report false so metric math never touches text or booleans.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case FloatKind:
		return v.f, true
	case IntKind:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// Bool returns the boolean payload. The bool is false for non-bool kinds.
func (v Value) Bool() (bool, bool) {
	if v.kind == BoolKind {
		return v.b, true
	}
	return false, false
}

// Str returns the string payload. The bool is false for non-string kinds.
func (v Value) Str() (string, bool) {
	if v.kind == StringKind {
		return v.s, true
	}
	return "", false
}

// Display renders the value for group keys, tables and CSV cells.
// Null renders as the empty string; callers decide how to label it.
func (v Value) Display() string {
	switch v.kind {
	case IntKind:
		return strconv.FormatInt(v.i, 10)
	case FloatKind:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case BoolKind:
		return strconv.FormatBool(v.b)
	case StringKind:
		return v.s
	default:
		return ""
	}
}

// MarshalJSON encodes the value with full numeric precision.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case IntKind:
		return json.Marshal(v.i)
	case FloatKind:
		return json.Marshal(v.f)
	case BoolKind:
		return json.Marshal(v.b)
	case StringKind:
		return json.Marshal(v.s)
	default:
		return []byte("null"), nil
	}
}

// Equal reports structural equality of two values.
func (v Value) Equal(o Value) bool {
	return v.Kind() == o.Kind() && v.i == o.i && v.f == o.f && v.b == o.b && v.s == o.s
}

// Field is one column of a Dataset schema with its inferred kind.
type Field struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Record is one normalized row. Field ordering lives in the Dataset schema,
// not in the record itself.
type Record map[string]Value

// Get returns the value for a field, or null when the record lacks it.
func (r Record) Get(field string) Value {
	if v, ok := r[field]; ok {
		return v
	}
	return Null()
}

// Dataset is an ordered sequence of Records plus the resolved schema.
// A Dataset is read-only once it leaves the component that built it.
type Dataset struct {
	Label   string
	Fields  []Field
	Records []Record
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// FieldNames returns the schema field names in order.
func (d *Dataset) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// FieldKind returns the inferred kind for a field name.
func (d *Dataset) FieldKind(name string) (Kind, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Kind, true
		}
	}
	return "", false
}

// HasField reports whether the schema contains the given field.
func (d *Dataset) HasField(name string) bool {
	_, ok := d.FieldKind(name)
	return ok
}

// String summarizes the dataset for logs and errors.
func (d *Dataset) String() string {
	return fmt.Sprintf("%s (%d fields, %d records)", d.Label, len(d.Fields), len(d.Records))
}
