package contract

import (
	"errors"
	"fmt"

	"github.com/costlens/costlens/schema"
)

// ErrNoValidSources is fatal: every requested source failed to load, so
// there is nothing for the pipeline to operate on.
var ErrNoValidSources = errors.New("no valid sources loaded")

// ErrInsufficientData marks an insight rule whose required groups or
// columns are absent. The rule is skipped, never fatal.
var ErrInsufficientData = errors.New("insufficient data")

// SourceNotFoundError reports a single input location that does not exist
// or could not be read. It is recoverable: the loader records the gap and
// continues with the remaining sources.
type SourceNotFoundError struct {
	Location string
	Err      error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source not found: %s: %v", e.Location, e.Err)
}

func (e *SourceNotFoundError) Unwrap() error {
	return e.Err
}

// SerializationError reports an output target that cannot represent a
// computed value (e.g. NaN in strict JSON). It is fatal for that target
// only; other requested formats still attempt to write.
type SerializationError struct {
	Format schema.OutputMode
	Err    error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cannot serialize %s output: %v", e.Format, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
