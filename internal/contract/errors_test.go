package contract

import (
	"errors"
	"fmt"
	"testing"

	"github.com/costlens/costlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceNotFoundError(t *testing.T) {
	inner := errors.New("no such file")
	err := &SourceNotFoundError{Location: "pricing.csv", Err: inner}

	assert.Contains(t, err.Error(), "pricing.csv")
	assert.Contains(t, err.Error(), "no such file")
	assert.True(t, errors.Is(err, inner))
}

func TestSerializationError(t *testing.T) {
	inner := errors.New("unsupported value: NaN")
	err := &SerializationError{Format: schema.JSONOut, Err: inner}

	assert.Contains(t, err.Error(), "json")
	assert.True(t, errors.Is(err, inner))
}

func TestSentinelWrapping(t *testing.T) {
	err := fmt.Errorf("%w: all 3 sources failed", ErrNoValidSources)
	require.True(t, errors.Is(err, ErrNoValidSources))

	err = fmt.Errorf("%w: group 'x' absent", ErrInsufficientData)
	require.True(t, errors.Is(err, ErrInsufficientData))
}
