package parse

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqpipe/qcparse/internal/table"
)

// writeReport writes a report fixture to a temp file and returns its path.
func writeReport(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// mustValue fetches a record column that is required to exist.
func mustValue(t *testing.T, rec *table.Record, col string) table.Value {
	t.Helper()
	v, ok := rec.Value(col)
	require.True(t, ok, "record has no column %q", col)
	return v
}

func TestInferValue(t *testing.T) {
	tests := []struct {
		in   string
		want table.Value
	}{
		{"42", int64(42)},
		{"-3", int64(-3)},
		{"25.0", 25.0},
		{"2.5e-03", 0.0025},
		{"abc", "abc"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inferValue(tt.in), "inferValue(%q)", tt.in)
	}
}

func TestParseScalar(t *testing.T) {
	v, err := parseScalar("f", "100")
	require.NoError(t, err)
	assert.Equal(t, int64(100), v)

	v, err = parseScalar("f", "0.35")
	require.NoError(t, err)
	assert.Equal(t, 0.35, v)

	_, err = parseScalar("f", "1.2.3")
	var fe *FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestMissingColumnError(t *testing.T) {
	err := &MissingColumnError{Column: "Total reads"}
	assert.Contains(t, err.Error(), "Total reads")
}

func TestRatioMissingDenominator(t *testing.T) {
	b := table.NewBuilder()
	b.Put("Mapped reads", int64(80))

	_, err := ratio(b, "Mapped reads", "Total reads")
	var mce *MissingColumnError
	require.ErrorAs(t, err, &mce)
	assert.Equal(t, "Total reads", mce.Column)
}

func TestErrNoDataIsDistinguishable(t *testing.T) {
	assert.True(t, errors.Is(ErrNoData, ErrNoData))
	assert.False(t, errors.Is(&FormatError{Path: "f", Detail: "d"}, ErrNoData))
}
