// Package aggregate folds per-day monetary entries into the canonical
// 7-key-plus-total row shape stored downstream.
package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/tuliahq/sales-sync/internal/week"
)

// Empty representations for a day with no data. Blank keeps "no data"
// distinguishable from "no sales"; zero matches older report variants.
const (
	EmptyBlank = "blank"
	EmptyZero  = "zero"
)

// Row is the canonical weekly shape: every day key always present, values
// formatted with exactly two fraction digits, and a total a reader can
// recompute by hand from the displayed day values.
type Row struct {
	Mon   string `firestore:"mon" json:"mon"`
	Tue   string `firestore:"tue" json:"tue"`
	Wed   string `firestore:"wed" json:"wed"`
	Thu   string `firestore:"thu" json:"thu"`
	Fri   string `firestore:"fri" json:"fri"`
	Sat   string `firestore:"sat" json:"sat"`
	Sun   string `firestore:"sun" json:"sun"`
	Total string `firestore:"total" json:"total"`
}

// Value returns the formatted value for a day key.
func (r Row) Value(key string) string {
	switch key {
	case "mon":
		return r.Mon
	case "tue":
		return r.Tue
	case "wed":
		return r.Wed
	case "thu":
		return r.Thu
	case "fri":
		return r.Fri
	case "sat":
		return r.Sat
	case "sun":
		return r.Sun
	case "total":
		return r.Total
	}
	return ""
}

// Accumulator buckets full-precision amounts per day key. Sub-daily rows
// mapping to the same key are summed; rounding happens once, at emission.
type Accumulator struct {
	sums map[string]decimal.Decimal
}

func NewAccumulator() *Accumulator {
	return &Accumulator{sums: make(map[string]decimal.Decimal, 7)}
}

// Add accumulates an amount under a day key. Unknown keys are ignored.
func (a *Accumulator) Add(key string, amount decimal.Decimal) {
	if a == nil || a.sums == nil {
		return
	}
	for _, known := range week.DayKeys {
		if key == known {
			a.sums[key] = a.sums[key].Add(amount)
			return
		}
	}
}

// Row emits the canonical record. Each day is rounded half away from zero
// to cents exactly once; the total is the sum of the seven rounded day
// values, not the rounding of the unrounded sum. Days without data emit
// the configured empty representation and contribute nothing to the total.
func (a *Accumulator) Row(emptyMode string) Row {
	var values [7]string
	total := decimal.Zero

	for i, key := range week.DayKeys {
		sum, present := a.sums[key]
		if !present {
			values[i] = emptyValue(emptyMode)
			continue
		}
		rounded := sum.Round(2)
		values[i] = rounded.StringFixed(2)
		total = total.Add(rounded)
	}

	return Row{
		Mon: values[0], Tue: values[1], Wed: values[2], Thu: values[3],
		Fri: values[4], Sat: values[5], Sun: values[6],
		Total: total.StringFixed(2),
	}
}

// Delta computes actual minus projected per day. A day blank on both sides
// stays blank; a day present on either side treats the missing side as
// zero. The total is the sum of the emitted day deltas.
func Delta(actual, projected Row, emptyMode string) Row {
	var values [7]string
	total := decimal.Zero

	for i, key := range week.DayKeys {
		a, aOK := parseValue(actual.Value(key))
		p, pOK := parseValue(projected.Value(key))
		if !aOK && !pOK {
			values[i] = emptyValue(emptyMode)
			continue
		}
		d := a.Sub(p)
		values[i] = d.StringFixed(2)
		total = total.Add(d)
	}

	return Row{
		Mon: values[0], Tue: values[1], Wed: values[2], Thu: values[3],
		Fri: values[4], Sat: values[5], Sun: values[6],
		Total: total.StringFixed(2),
	}
}

func parseValue(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func emptyValue(mode string) string {
	if mode == EmptyZero {
		return "0.00"
	}
	return ""
}
