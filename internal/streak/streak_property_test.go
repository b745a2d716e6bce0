package streak

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// offsetsGen generates day offsets (0 = today) within the last two months.
func offsetsGen() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, 60))
}

func without(offsets []int, drop ...int) []int {
	skip := make(map[int]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	var out []int
	for _, o := range offsets {
		if !skip[o] {
			out = append(out, o)
		}
	}
	return out
}

// Property: streak results stay within their documented bounds and the rest
// day accounting always adds up to the allowance.
func TestProperty_StreakBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("streak is non-negative and capped by the lookback", prop.ForAll(
		func(trades, checkins []int, allowance int) bool {
			res := Calculate(refNow, daysAgo(trades...), daysAgo(checkins...), allowance)
			return res.CurrentStreak >= 0 && res.CurrentStreak <= MaxLookbackDays
		},
		offsetsGen(), offsetsGen(), gen.IntRange(0, 7),
	))

	properties.Property("rest days available + used == allowance", prop.ForAll(
		func(trades, checkins []int, allowance int) bool {
			res := Calculate(refNow, daysAgo(trades...), daysAgo(checkins...), allowance)
			if res.RestDaysUsedThisWeek < 0 || res.RestDaysUsedThisWeek > allowance {
				return false
			}
			return res.RestDaysAvailable+res.RestDaysUsedThisWeek == allowance
		},
		offsetsGen(), offsetsGen(), gen.IntRange(0, 7),
	))

	properties.TestingRun(t)
}

// Property: trading today always marks the day and starts a streak.
func TestProperty_TradingTodayCounts(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("today in trade dates sets both flags and streak >= 1", prop.ForAll(
		func(trades, checkins []int, allowance int) bool {
			trades = append(trades, 0)
			res := Calculate(refNow, daysAgo(trades...), daysAgo(checkins...), allowance)
			return res.HasTradedToday && res.HasCheckedInToday && res.CurrentStreak >= 1
		},
		offsetsGen(), offsetsGen(), gen.IntRange(0, 7),
	))

	properties.TestingRun(t)
}

// Property: two missed days in a row end the streak even with a full week of allowance.
func TestProperty_ConsecutiveGapsBreak(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("streak never reaches past two consecutive gaps", prop.ForAll(
		func(history []int, gapStart int) bool {
			// everything up to gapStart-1 is active, gapStart and gapStart+1 are missed
			active := without(history, gapStart, gapStart+1)
			for d := 0; d < gapStart; d++ {
				active = append(active, d)
			}
			res := Calculate(refNow, daysAgo(active...), nil, 7)
			return res.CurrentStreak <= gapStart
		},
		offsetsGen(), gen.IntRange(1, 30),
	))

	properties.TestingRun(t)
}

// Property: the result depends on the set of dates only, and inputs are not mutated.
func TestProperty_SetSemantics(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("duplicating and reversing inputs changes nothing", prop.ForAll(
		func(trades, checkins []int, allowance int) bool {
			tradeDates := daysAgo(trades...)
			checkinDates := daysAgo(checkins...)
			snapshot := make([]string, len(tradeDates))
			copy(snapshot, tradeDates)

			base := Calculate(refNow, tradeDates, checkinDates, allowance)

			doubled := append(append([]string(nil), tradeDates...), tradeDates...)
			reversed := make([]string, len(doubled))
			for i, d := range doubled {
				reversed[len(doubled)-1-i] = d
			}
			other := Calculate(refNow, reversed, append(checkinDates, checkinDates...), allowance)

			return base == other && reflect.DeepEqual(snapshot, tradeDates)
		},
		offsetsGen(), offsetsGen(), gen.IntRange(0, 7),
	))

	properties.Property("a check-in on a trade date adds nothing", prop.ForAll(
		func(trades []int, allowance int) bool {
			dates := daysAgo(trades...)
			return Calculate(refNow, dates, nil, allowance).CurrentStreak ==
				Calculate(refNow, dates, dates, allowance).CurrentStreak
		},
		offsetsGen(), gen.IntRange(0, 7),
	))

	properties.TestingRun(t)
}
