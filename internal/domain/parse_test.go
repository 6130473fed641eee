package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseRange(t *testing.T) {
	cases := []struct {
		in         string
		start, end string
	}{
		{"09:00-17:00", "09:00", "17:00"},
		{"22:00–06:00", "22:00", "06:00"},
		{" 08:30—12:15 ", "08:30", "12:15"},
		{"9:00-17:05", "09:00", "17:05"},
	}
	for _, c := range cases {
		s, e, err := ParseRange(c.in)
		if err != nil {
			t.Fatalf("%q: %v", c.in, err)
		}
		if s.String() != c.start || e.String() != c.end {
			t.Fatalf("%q: want %s-%s, got %s-%s", c.in, c.start, c.end, s, e)
		}
	}
}

func TestParseRange_Invalid(t *testing.T) {
	for _, in := range []string{"", "09:00", "9-17", "24:00-01:00", "09:60-10:00", "09:00-10:00-11:00", "ab:cd-10:00",
		"+9:00-17:+5", "09:00-17:+5", "-1:00-02:00", "009:00-10:00", "9:0-10:00", "09: 0-10:00"} {
		if _, _, err := ParseRange(in); !errors.Is(err, ErrValidation) {
			t.Fatalf("%q: want validation error, got %v", in, err)
		}
	}
}

func TestClockOf(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	ts := time.Date(2025, time.March, 3, 23, 45, 10, 0, loc)
	if got := ClockOf(ts).String(); got != "23:45" {
		t.Fatalf("want 23:45, got %s", got)
	}
}

func TestParseDurationHuman(t *testing.T) {
	cases := map[string]time.Duration{
		"30m":   30 * time.Minute,
		"1h30m": 90 * time.Minute,
		"90":    90 * time.Minute,
		"2H":    2 * time.Hour,
	}
	for in, want := range cases {
		got, err := ParseDurationHuman(in)
		if err != nil || got != want {
			t.Fatalf("%q: want %s, got %s err=%v", in, want, got, err)
		}
	}
	if got, err := ParseDurationHuman("4320"); err != nil || got != 72*time.Hour {
		t.Fatalf("4320: want 72h, got %s err=%v", got, err)
	}
	for _, in := range []string{"", "10s", "100h", "soon", "4321", "9007199254741052", "99999999999999999999"} {
		if _, err := ParseDurationHuman(in); !errors.Is(err, ErrInvalidDuration) {
			t.Fatalf("%q: want invalid duration, got %v", in, err)
		}
	}
}

func TestFormatRemaining(t *testing.T) {
	cases := map[time.Duration]string{
		-time.Second:                 "0s",
		45 * time.Second:             "45s",
		10 * time.Minute:             "10m",
		2 * time.Hour:                "2h",
		2*time.Hour + 30*time.Minute: "2h 30m",
	}
	for in, want := range cases {
		if got := FormatRemaining(in); got != want {
			t.Fatalf("%s: want %s, got %s", in, want, got)
		}
	}
}
