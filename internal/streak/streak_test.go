package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var refNow = time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

// daysAgo returns the YYYY-MM-DD dates offset days before refNow.
func daysAgo(offsets ...int) []string {
	out := make([]string, len(offsets))
	for i, off := range offsets {
		out[i] = refNow.AddDate(0, 0, -off).Format("2006-01-02")
	}
	return out
}

func TestCalculate_EmptyHistory(t *testing.T) {
	res := Calculate(refNow, nil, nil, DefaultRestDaysPerWeek)

	assert.Equal(t, 0, res.CurrentStreak)
	assert.False(t, res.HasTradedToday)
	assert.False(t, res.HasCheckedInToday)
	assert.Equal(t, 1, res.RestDaysUsedThisWeek)
	assert.Equal(t, 0, res.RestDaysAvailable)
}

func TestCalculate_SingleTradeToday(t *testing.T) {
	res := Calculate(refNow, daysAgo(0), nil, DefaultRestDaysPerWeek)

	assert.Equal(t, 1, res.CurrentStreak)
	assert.True(t, res.HasTradedToday)
	assert.True(t, res.HasCheckedInToday)
}

func TestCalculate_CheckinOnlyToday(t *testing.T) {
	res := Calculate(refNow, nil, daysAgo(0), DefaultRestDaysPerWeek)

	assert.Equal(t, 1, res.CurrentStreak)
	assert.False(t, res.HasTradedToday)
	assert.True(t, res.HasCheckedInToday)
}

func TestCalculate_IsolatedGapForgivenOnce(t *testing.T) {
	// gap at -2 is forgiven; gap at -5 would be the second rest day in its week
	res := Calculate(refNow, daysAgo(0, 1, 3, 4), nil, 1)
	assert.Equal(t, 5, res.CurrentStreak)
}

func TestCalculate_TwoConsecutiveGapsBreakWithFullAllowance(t *testing.T) {
	res := Calculate(refNow, daysAgo(0, 1, 4, 5, 6, 7), nil, 7)
	assert.Equal(t, 2, res.CurrentStreak)
}

func TestCalculate_ZeroAllowanceBreaksOnFirstGap(t *testing.T) {
	res := Calculate(refNow, daysAgo(0, 1, 3, 4), nil, 0)

	assert.Equal(t, 2, res.CurrentStreak)
	assert.Equal(t, 0, res.RestDaysAvailable)
}

func TestCalculate_TodayInProgressKeepsStreak(t *testing.T) {
	res := Calculate(refNow, daysAgo(1, 2), nil, 1)

	assert.Equal(t, 2, res.CurrentStreak)
	assert.False(t, res.HasCheckedInToday)
}

func TestCalculate_MissedYesterdayNotLoggedToday(t *testing.T) {
	// today pending, -1 forgiven, -2 and -3 active
	res := Calculate(refNow, daysAgo(2, 3), nil, 1)
	assert.Equal(t, 3, res.CurrentStreak)
}

func TestCalculate_TrailingRestDayNotCounted(t *testing.T) {
	// -2 is a gap followed by another gap; the streak is just today and -1
	res := Calculate(refNow, daysAgo(0, 1), nil, 3)
	assert.Equal(t, 2, res.CurrentStreak)
}

func TestCalculate_CheckinsBridgeGaps(t *testing.T) {
	res := Calculate(refNow, daysAgo(0, 2, 3), daysAgo(1), 0)

	assert.Equal(t, 4, res.CurrentStreak)
	assert.True(t, res.HasTradedToday)
}

func TestCalculate_RestDaysUsedThisWeek(t *testing.T) {
	res := Calculate(refNow, daysAgo(0, 1, 2, 4, 5, 6), nil, 2)

	assert.Equal(t, 1, res.RestDaysUsedThisWeek)
	assert.Equal(t, 1, res.RestDaysAvailable)
	// -3 forgiven, -7 forgiven (two gaps in its window), -8 consecutive gap
	assert.Equal(t, 7, res.CurrentStreak)
}

func TestCalculate_RestDaysUsedExcludesTodayInProgress(t *testing.T) {
	res := Calculate(refNow, daysAgo(1, 2, 3, 4, 5, 6), nil, 1)

	assert.Equal(t, 0, res.RestDaysUsedThisWeek)
	assert.Equal(t, 1, res.RestDaysAvailable)
}

func TestCalculate_DuplicatesAndTimestamps(t *testing.T) {
	dates := []string{
		"2026-03-15T09:00:00Z",
		"2026-03-15",
		"2026-03-15 18:45:00",
		"2026-03-14",
		"2026-03-14",
		"not-a-date",
		"",
	}
	res := Calculate(refNow, dates, nil, 1)

	assert.Equal(t, 2, res.CurrentStreak)
	assert.True(t, res.HasTradedToday)
}

func TestCalculate_NegativeAllowanceIsZero(t *testing.T) {
	res := Calculate(refNow, daysAgo(0, 2), nil, -3)

	assert.Equal(t, 1, res.CurrentStreak)
	assert.Equal(t, 0, res.RestDaysUsedThisWeek)
	assert.Equal(t, 0, res.RestDaysAvailable)
}

func TestCalculate_LookbackCap(t *testing.T) {
	offsets := make([]int, 400)
	for i := range offsets {
		offsets[i] = i
	}
	res := Calculate(refNow, daysAgo(offsets...), nil, 1)
	assert.Equal(t, MaxLookbackDays, res.CurrentStreak)
}

func TestCalculator_UsesClockAndLocation(t *testing.T) {
	// 23:30 UTC on the 15th is already the 16th at UTC+9
	clock := ClockFunc(func() time.Time {
		return time.Date(2026, 3, 15, 23, 30, 0, 0, time.UTC)
	})
	calc := NewCalculator(clock, time.FixedZone("UTC+9", 9*3600))

	assert.Equal(t, "2026-03-16", calc.Today())

	res := calc.Calculate([]string{"2026-03-16"}, nil, DefaultRestDaysPerWeek)
	assert.True(t, res.HasTradedToday)
	assert.Equal(t, 1, res.CurrentStreak)

	res = calc.Calculate([]string{"2026-03-15"}, nil, DefaultRestDaysPerWeek)
	assert.False(t, res.HasTradedToday)
	assert.Equal(t, 1, res.CurrentStreak)
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2026-01-02", "2026-01-02", true},
		{"2026-01-02T15:04:05+02:00", "2026-01-02", true},
		{"2026-13-02", "", false},
		{"2026-1-2", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeDate(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
