package queue

import (
	"fmt"
	"time"
)

// Weekday indices used throughout the engine: 0 = Monday … 6 = Sunday.
// Callers localize wall-clock time before calling in; the engine itself
// performs no timezone handling.

// IsOpen decides whether a location currently accepts new entries.
// operatingDays is a bitmask with bit 0 = Monday; openMinute and
// closeMinute are minutes since midnight. The window is half-open:
// exactly at closing time the location is closed.
func IsOpen(weekday int, minuteOfDay int, operatingDays uint8, openMinute, closeMinute int) bool {
	if weekday < 0 || weekday > 6 {
		return false
	}
	if operatingDays&(1<<uint(weekday)) == 0 {
		return false
	}
	return openMinute <= minuteOfDay && minuteOfDay < closeMinute
}

// MondayWeekday converts time.Time's Sunday-based weekday to the
// Monday-based index the engine uses.
func MondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// MinuteOfDay returns the minutes elapsed since midnight of t's day.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ParseClock converts an "HH:MM" string into minutes since midnight.
// Used by the plumbing layers when reading location settings.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("queue: invalid clock %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("queue: clock %q out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
