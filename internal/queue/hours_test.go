package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mon-Fri bitmask: bits 0..4.
const weekdays = uint8(0x1F)

func TestIsOpen(t *testing.T) {
	open, _ := ParseClock("09:00")
	closeAt, _ := ParseClock("18:00")

	cases := []struct {
		name    string
		weekday int
		minute  int
		want    bool
	}{
		{"monday mid-morning", 0, 10 * 60, true},
		{"friday exactly at opening", 4, open, true},
		{"exactly at closing is closed", 2, closeAt, false},
		{"one minute before closing", 2, closeAt - 1, true},
		{"before opening", 1, 8 * 60, false},
		{"saturday closed regardless of time", 5, 11 * 60, false},
		{"sunday closed regardless of time", 6, 11 * 60, false},
		{"weekday out of range", 7, 11 * 60, false},
		{"negative weekday", -1, 11 * 60, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsOpen(tc.weekday, tc.minute, weekdays, open, closeAt))
		})
	}
}

func TestMondayWeekday(t *testing.T) {
	// 2026-03-02 is a Monday.
	mon := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, MondayWeekday(mon))
	assert.Equal(t, 5, MondayWeekday(mon.AddDate(0, 0, 5))) // Saturday
	assert.Equal(t, 6, MondayWeekday(mon.AddDate(0, 0, 6))) // Sunday
}

func TestMinuteOfDay(t *testing.T) {
	tm := time.Date(2026, 3, 2, 9, 41, 59, 0, time.UTC)
	assert.Equal(t, 9*60+41, MinuteOfDay(tm))
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	m, err = ParseClock("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, m)

	_, err = ParseClock("24:00")
	assert.Error(t, err)
	_, err = ParseClock("12:60")
	assert.Error(t, err)
	_, err = ParseClock("noon")
	assert.Error(t, err)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:05", FormatClock(545))
	assert.Equal(t, "18:00", FormatClock(1080))
}
