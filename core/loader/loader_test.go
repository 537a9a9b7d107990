package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/costlens/costlens/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseCSV(t *testing.T) {
	input := "provider,usd,tb\nbigquery,$5.00,10\nathena,5,\n"
	ds, err := ParseCSV(strings.NewReader(input), "test.csv")
	require.NoError(t, err)

	assert.Equal(t, "test.csv", ds.Label)
	assert.Equal(t, []string{"provider", "usd", "tb"}, ds.FieldNames())
	require.Equal(t, 2, ds.Len())

	// Every cell stays a verbatim string; typing happens in the normalizer.
	s, ok := ds.Records[0].Get("usd").Str()
	require.True(t, ok)
	assert.Equal(t, "$5.00", s)
	s, ok = ds.Records[1].Get("tb").Str()
	require.True(t, ok)
	assert.Equal(t, "", s)
}

func TestParseCSVShortRows(t *testing.T) {
	input := "a,b,c\n1,2\n"
	ds, err := ParseCSV(strings.NewReader(input), "short.csv")
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())

	assert.True(t, ds.Records[0].Get("c").IsNull(), "missing trailing fields are absent, read back as null")
}

func TestParseCSVExtraCellsDropped(t *testing.T) {
	input := "a,b\n1,2,3\n"
	ds, err := ParseCSV(strings.NewReader(input), "wide.csv")
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Len(t, ds.Records[0], 2)
}

func TestParseCSVEmptyInput(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""), "empty.csv")
	require.Error(t, err)

	var notFound *contract.SourceNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestParseCSVTrimsHeaderWhitespace(t *testing.T) {
	input := "provider , usd\nx,1\n"
	ds, err := ParseCSV(strings.NewReader(input), "padded.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"provider", "usd"}, ds.FieldNames())
}

func TestCSVReaderCanRead(t *testing.T) {
	r := &CSVReader{}
	assert.True(t, r.CanRead("data.csv"))
	assert.True(t, r.CanRead("DATA.CSV"))
	assert.False(t, r.CanRead("data.db"))
	assert.False(t, r.CanRead("data.parquet"))
}

func TestCSVReaderMissingFile(t *testing.T) {
	r := &CSVReader{}
	_, err := r.Read(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)

	var notFound *contract.SourceNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestLoadAllKeepsInputOrder(t *testing.T) {
	first := writeTempCSV(t, "first.csv", "id\n1\n")
	second := writeTempCSV(t, "second.csv", "id\n2\n")
	third := writeTempCSV(t, "third.csv", "id\n3\n")

	ld := New()
	datasets, gaps, err := ld.LoadAll(context.Background(), []string{first, second, third}, 4)
	require.NoError(t, err)
	assert.Empty(t, gaps)
	require.Len(t, datasets, 3)

	assert.Equal(t, first, datasets[0].Label)
	assert.Equal(t, second, datasets[1].Label)
	assert.Equal(t, third, datasets[2].Label)
}

func TestLoadAllMissingSourceBecomesGap(t *testing.T) {
	present := writeTempCSV(t, "present.csv", "id\n1\n")
	missing := filepath.Join(t.TempDir(), "missing.csv")

	ld := New()
	datasets, gaps, err := ld.LoadAll(context.Background(), []string{present, missing, present}, 2)
	require.NoError(t, err, "one missing source must not fail the run")
	require.Len(t, datasets, 2)
	require.Len(t, gaps, 1)
	assert.Equal(t, missing, gaps[0].Location)
	assert.NotEmpty(t, gaps[0].Reason)
}

func TestLoadAllAllSourcesMissingIsFatal(t *testing.T) {
	dir := t.TempDir()
	ld := New()
	_, gaps, err := ld.LoadAll(context.Background(),
		[]string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")}, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrNoValidSources))
	assert.Len(t, gaps, 2)
}

func TestLoadAllUnsupportedFormat(t *testing.T) {
	present := writeTempCSV(t, "present.csv", "id\n1\n")

	ld := New()
	datasets, gaps, err := ld.LoadAll(context.Background(), []string{present, "data.parquet"}, 1)
	require.NoError(t, err)
	require.Len(t, datasets, 1)
	require.Len(t, gaps, 1)
	assert.Contains(t, gaps[0].Reason, "unsupported source format")
}

func TestLoadAllRequiresLocations(t *testing.T) {
	ld := New()
	_, _, err := ld.LoadAll(context.Background(), nil, 1)
	require.Error(t, err)
}

func TestLoadAllSingleWorker(t *testing.T) {
	first := writeTempCSV(t, "first.csv", "id\n1\n")
	second := writeTempCSV(t, "second.csv", "id\n2\n")

	ld := New()
	datasets, gaps, err := ld.LoadAll(context.Background(), []string{first, second}, 0)
	require.NoError(t, err)
	assert.Empty(t, gaps)
	assert.Len(t, datasets, 2)
}
