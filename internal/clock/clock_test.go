package clock

import (
	"testing"
	"time"
)

func TestZone_ReportsInLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	z := NewZone(loc)
	if got := z.Now().Location(); got != loc {
		t.Fatalf("want %v, got %v", loc, got)
	}
}

func TestFake_TodayAndTimeOfDay(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC is 01:30 next day in IST
	f := NewFake(time.Date(2025, time.June, 1, 20, 0, 0, 0, time.UTC).In(loc))

	if got := Today(f); got != "2025-06-02" {
		t.Fatalf("want 2025-06-02, got %s", got)
	}
	if got := TimeOfDay(f).String(); got != "01:30" {
		t.Fatalf("want 01:30, got %s", got)
	}

	f.Advance(90 * time.Minute)
	if got := TimeOfDay(f).String(); got != "03:00" {
		t.Fatalf("want 03:00, got %s", got)
	}
}
