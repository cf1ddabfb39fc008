package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateMinutes(t *testing.T) {
	cases := []struct {
		name      string
		durations []int
		agents    int
		want      int
	}{
		{"empty queue, no agents", nil, 0, 0},
		{"empty queue, many agents", []int{}, 5, 0},
		{"zero agents treated as one", []int{30, 15, 45, 30}, 0, 90},
		{"two agents halve the wait", []int{30, 15, 45, 30}, 2, 60},
		{"single entry single agent", []int{30}, 1, 30},
		{"floor division", []int{25}, 2, 12},
		{"negative agent count degenerates to one", []int{10, 10}, -3, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EstimateMinutes(tc.durations, tc.agents))
		})
	}
}

func TestFormatWait(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "no wait"},
		{45, "45 minutes"},
		{59, "59 minutes"},
		{60, "1 hour"},
		{120, "2 hours"},
		{125, "2h 5min"},
		{75, "1h 15min"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatWait(tc.minutes), "minutes=%d", tc.minutes)
	}
}

// Three waiting entries with durations [30,15,30] and one active agent:
// the last entry waits 75 minutes, shown as "1h 15min".
func TestScenarioSingleAgentQueue(t *testing.T) {
	est := EstimateMinutes([]int{30, 15, 30}, 1)
	assert.Equal(t, 75, est)
	assert.Equal(t, "1h 15min", FormatWait(est))
}
