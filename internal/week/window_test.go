package week

import (
	"testing"
	"time"

	pkgerrors "github.com/tuliahq/sales-sync/pkg/errors"
)

func torontoLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Toronto")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestResolveStartsOnMonday(t *testing.T) {
	loc := torontoLocation(t)
	now := time.Date(2024, 6, 6, 15, 30, 0, 0, loc) // a Thursday

	win, err := Resolve("", loc, now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if win.StartISO() != "2024-06-03" {
		t.Fatalf("expected start 2024-06-03, got %s", win.StartISO())
	}
	if win.EndISO() != "2024-06-09" {
		t.Fatalf("expected end 2024-06-09, got %s", win.EndISO())
	}
	if win.Start.Weekday() != time.Monday {
		t.Fatalf("expected Monday start, got %s", win.Start.Weekday())
	}
	if h, m, s := win.Start.Clock(); h != 0 || m != 0 || s != 0 {
		t.Fatalf("expected local midnight anchor, got %02d:%02d:%02d", h, m, s)
	}
}

func TestResolveMondayTargetDoesNotShift(t *testing.T) {
	loc := torontoLocation(t)

	win, err := Resolve("2024-06-03", loc, time.Now())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if win.StartISO() != "2024-06-03" {
		t.Fatalf("Monday target must start its own window, got %s", win.StartISO())
	}
}

func TestResolveSundayTargetBelongsToPrecedingMonday(t *testing.T) {
	loc := torontoLocation(t)

	win, err := Resolve("2024-06-09", loc, time.Now())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if win.StartISO() != "2024-06-03" {
		t.Fatalf("expected 2024-06-03, got %s", win.StartISO())
	}
}

func TestResolveSevenConsecutiveDays(t *testing.T) {
	loc := torontoLocation(t)
	// Window spanning the November DST fall-back in Toronto.
	win, err := Resolve("2024-11-06", loc, time.Now())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	days := win.Days()
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	for i := 1; i < len(days); i++ {
		prev := days[i-1].AddDate(0, 0, 1)
		if prev.Year() != days[i].Year() || prev.YearDay() != days[i].YearDay() {
			t.Fatalf("days not consecutive at index %d: %v -> %v", i, days[i-1], days[i])
		}
	}
}

func TestResolveIsStable(t *testing.T) {
	loc := torontoLocation(t)
	now := time.Date(2024, 6, 6, 8, 0, 0, 0, loc)

	first, err := Resolve("2024-06-05", loc, now)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := Resolve("2024-06-05", loc, now.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !first.Start.Equal(second.Start) || !first.End.Equal(second.End) {
		t.Fatalf("windows differ: %+v vs %+v", first, second)
	}
}

func TestResolveRejectsUnparseableTarget(t *testing.T) {
	loc := torontoLocation(t)

	_, err := Resolve("06/03/2024", loc, time.Now())
	if err == nil {
		t.Fatalf("expected error for unparseable target")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestDayKeyMapping(t *testing.T) {
	loc := torontoLocation(t)
	win, err := Resolve("2024-06-03", loc, time.Now())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	tests := []struct {
		date string
		key  string
		ok   bool
	}{
		{date: "2024-06-03", key: "mon", ok: true},
		{date: "2024-06-04", key: "tue", ok: true},
		{date: "2024-06-09", key: "sun", ok: true},
		{date: "2024-06-02", ok: false},
		{date: "2024-06-10", ok: false},
		{date: "2024-05-26", ok: false}, // 8 days before the window
		{date: "2024-06-17", ok: false}, // 8 days after the window
	}

	for _, tt := range tests {
		parsed, err := time.Parse("2006-01-02", tt.date)
		if err != nil {
			t.Fatalf("parse %s: %v", tt.date, err)
		}
		key, ok := win.DayKey(parsed)
		if ok != tt.ok {
			t.Fatalf("date %s expected ok=%v got %v", tt.date, tt.ok, ok)
		}
		if key != tt.key {
			t.Fatalf("date %s expected key %q got %q", tt.date, tt.key, key)
		}
	}
}

func TestDayKeyIgnoresTimeOfDayAndZone(t *testing.T) {
	loc := torontoLocation(t)
	win, err := Resolve("2024-06-03", loc, time.Now())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	utcEvening := time.Date(2024, 6, 5, 23, 45, 0, 0, time.UTC)
	key, ok := win.DayKey(utcEvening)
	if !ok || key != "wed" {
		t.Fatalf("expected wed, got %q ok=%v", key, ok)
	}
}
