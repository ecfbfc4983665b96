// Package normalize turns untrusted upstream sales payloads into flat
// per-day entries. The upstream schema is not contractually fixed, so both
// the payload container and the row fields are resolved through ordered
// preference lists rather than typed decoding.
package normalize

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Container keys tried, in order, when the payload is not a bare array.
var containerKeys = []string{"data", "sales", "results", "rows"}

// Field preference lists per semantic quantity. Dotted entries descend one
// object level per segment. First present non-null value wins.
var (
	datePaths = []string{"date", "business_date", "day", "sales_date", "start_date"}

	projectedPaths = []string{
		"projected", "projected_sales", "projected_total",
		"forecast", "forecast_total",
		"sales.projected", "forecast.total",
	}

	actualPaths = []string{
		"actual", "actual_sales", "actual_total",
		"actuals", "actuals_total",
		"sales.actual", "actuals.total",
	}
)

var errUnexpectedShape = errors.New("payload is neither an array nor a recognized container object")

const dateLayout = "2006-01-02"

// Entry is one upstream row reduced to a calendar date and up to two
// monetary quantities. A nil amount means absent, which is distinct from
// zero for aggregation.
type Entry struct {
	Date      time.Time
	Projected *decimal.Decimal
	Actual    *decimal.Decimal
}

// Stats counts what happened to the raw rows during extraction.
type Stats struct {
	Rows    int
	Dropped int
}

// Options control normalization behavior.
type Options struct {
	// MinorUnits divides every extracted amount by 100. It is a fixed
	// configuration switch: auto-detecting cents on ambiguous small values
	// is unsafe.
	MinorUnits bool
}

// Rows unwraps a raw payload into its opaque row records. The payload may be
// a bare array or an object wrapping an array under a known container key.
// Non-object array elements are skipped.
func Rows(raw json.RawMessage) ([]map[string]any, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}

	switch v := decoded.(type) {
	case []any:
		return objectRows(v), nil
	case map[string]any:
		for _, key := range containerKeys {
			if inner, ok := v[key].([]any); ok {
				return objectRows(inner), nil
			}
		}
	}
	return nil, errUnexpectedShape
}

func objectRows(items []any) []map[string]any {
	rows := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if row, ok := item.(map[string]any); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// Entries extracts a date and the two monetary series from each row. Rows
// with no recognizable date are dropped; a row with a date but no amounts
// still yields an entry with both amounts absent.
func Entries(rows []map[string]any, opts Options) ([]Entry, Stats) {
	stats := Stats{Rows: len(rows)}
	entries := make([]Entry, 0, len(rows))

	for _, row := range rows {
		date, ok := extractDate(row)
		if !ok {
			stats.Dropped++
			continue
		}
		entries = append(entries, Entry{
			Date:      date,
			Projected: extractAmount(row, projectedPaths, opts),
			Actual:    extractAmount(row, actualPaths, opts),
		})
	}

	return entries, stats
}

func extractDate(row map[string]any) (time.Time, bool) {
	for _, path := range datePaths {
		value, present := lookupPath(row, path)
		if !present || value == nil {
			continue
		}
		s, ok := value.(string)
		if !ok {
			return time.Time{}, false
		}
		s = strings.TrimSpace(s)
		// Truncate timestamps to calendar-date precision.
		if idx := strings.IndexAny(s, "T "); idx >= 0 {
			s = s[:idx]
		}
		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}

func extractAmount(row map[string]any, paths []string, opts Options) *decimal.Decimal {
	for _, path := range paths {
		value, present := lookupPath(row, path)
		if !present || value == nil {
			continue
		}
		amount, ok := coerceNumeric(value)
		if !ok {
			continue
		}
		if opts.MinorUnits {
			amount = amount.Shift(-2)
		}
		return &amount
	}
	return nil
}

// coerceNumeric accepts JSON numbers and numeric strings. Anything else is
// absent, never an error.
func coerceNumeric(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

func lookupPath(row map[string]any, path string) (any, bool) {
	segments := strings.Split(path, ".")
	var current any = row
	for _, segment := range segments {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
