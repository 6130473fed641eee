package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay bounds ClockTime values.
const MinutesPerDay = 24 * 60

// ClockTime is a wall-clock time of day with minute resolution,
// stored as minutes since midnight (0..1439).
type ClockTime int

// NewClockTime builds a ClockTime from hour and minute.
func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, hour, minute)
	}
	return ClockTime(hour*60 + minute), nil
}

// ClockOf returns the time of day of t in t's own location.
func ClockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

// String returns HH:MM.
func (c ClockTime) String() string {
	m := int(c)
	if m < 0 {
		m = 0
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ParseClockTime parses a 24-hour "HH:MM" value.
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) < 1 || len(parts[0]) > 2 || len(parts[1]) != 2 ||
		!isAllDigits(parts[0]) || !isAllDigits(parts[1]) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return NewClockTime(h, m)
}

var rangeSep = regexp.MustCompile(`[-–—]`)

// ParseRange parses "HH:MM-HH:MM" (hyphen, en dash or em dash).
// start > end denotes a window that wraps past midnight.
func ParseRange(s string) (start, end ClockTime, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("%w: empty", ErrInvalidRange)
	}
	parts := rangeSep.Split(s, -1)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	start, err = ParseClockTime(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("start: %w", err)
	}
	end, err = ParseClockTime(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("end: %w", err)
	}
	return start, end, nil
}

// FormatRange returns "HH:MM-HH:MM".
func FormatRange(start, end ClockTime) string {
	return start.String() + "-" + end.String()
}

const maxDurationMinutes = 72 * 60

// ParseDurationHuman parses human-friendly durations like "30m", "1h30m", "90m", "2h".
// A plain number means minutes. Constraints: 1m <= d <= 72h.
func ParseDurationHuman(s string) (time.Duration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidDuration)
	}
	var total time.Duration

	if isAllDigits(s) {
		mins, err := strconv.Atoi(s)
		if err != nil || mins > maxDurationMinutes {
			return 0, fmt.Errorf("%w: max 72h", ErrInvalidDuration)
		}
		total = time.Duration(mins) * time.Minute
	} else {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidDuration, s)
		}
		total = d
	}

	if total < time.Minute {
		return 0, fmt.Errorf("%w: min 1m", ErrInvalidDuration)
	}
	if total > maxDurationMinutes*time.Minute {
		return 0, fmt.Errorf("%w: max 72h", ErrInvalidDuration)
	}
	return total, nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// FormatRemaining renders a duration as "2h 30m", "45m" or "30s".
func FormatRemaining(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 60 {
		if secs < 0 {
			secs = 0
		}
		return fmt.Sprintf("%ds", secs)
	}
	mins := secs / 60
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins%60 > 0 {
		return fmt.Sprintf("%dh %dm", mins/60, mins%60)
	}
	return fmt.Sprintf("%dh", mins/60)
}
