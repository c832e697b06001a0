// Package parse implements parsers for the plain-text reports written
// by third-party sequencing QC tools. Each parser reads one report file
// and produces normalized tabular records keyed by a caller-supplied
// sample identifier.
//
// A report that scans cleanly but contains nothing a parser recognizes
// is a normal outcome, signalled with ErrNoData; batch callers skip
// those samples instead of failing. Structural problems (wrong column
// counts, unparseable numbers, missing required sections) surface as
// *FormatError, and a derived column whose source key is absent
// surfaces as *MissingColumnError.
package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/seqpipe/qcparse/internal/table"
)

// ErrNoData signals that a report was scanned completely but contained
// no parseable content. It is a recoverable outcome, not a failure.
var ErrNoData = errors.New("report contains no parseable data")

// FormatError reports a structural mismatch in a report file.
type FormatError struct {
	Path   string
	Detail string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: malformed report: %s", e.Path, e.Detail)
}

func formatErrorf(path, format string, args ...any) *FormatError {
	return &FormatError{Path: path, Detail: fmt.Sprintf(format, args...)}
}

// MissingColumnError reports that a derived column could not be
// computed because its required source column was never parsed.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required source column %q not present in report", e.Column)
}

// parseInt parses a strictly integral field.
func parseInt(path, s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, formatErrorf(path, "expected integer, got %q", s)
	}
	return v, nil
}

// parseFloat parses a strictly numeric field.
func parseFloat(path, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, formatErrorf(path, "expected number, got %q", s)
	}
	return v, nil
}

// parseScalar parses a matched numeric field as int64 unless it
// contains a decimal point, in which case it parses as float64.
func parseScalar(path, s string) (table.Value, error) {
	if strings.Contains(s, ".") {
		return parseFloat(path, s)
	}
	return parseInt(path, s)
}

// inferValue types a free-form table cell: int64 if it parses as an
// integer, float64 if it parses as a number, otherwise the raw string.
func inferValue(s string) table.Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// ratio returns numerator/denominator*100 from two accumulated integer
// columns, failing with MissingColumnError if either is absent.
func ratio(b *table.Builder, numerator, denominator string) (float64, error) {
	num, ok := b.Get(numerator)
	if !ok {
		return 0, &MissingColumnError{Column: numerator}
	}
	den, ok := b.Get(denominator)
	if !ok {
		return 0, &MissingColumnError{Column: denominator}
	}
	return toFloat(num) / toFloat(den) * 100, nil
}

func toFloat(v table.Value) float64 {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case float64:
		return x
	default:
		return 0
	}
}
