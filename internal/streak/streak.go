// Package streak computes trading-habit streaks that tolerate a bounded
// number of rest days per rolling week.
//
// A day is active when the user journaled a trade or submitted a check-in on
// it. Walking backward from today, an isolated missed day is forgiven while
// the rolling seven-day window it opens holds no more gaps than the weekly
// allowance; two missed days in a row always end the streak.
package streak

import (
	"time"

	"trading-journal/internal/models"
)

const (
	// DefaultRestDaysPerWeek is the rest-day allowance used when none is configured.
	DefaultRestDaysPerWeek = 1
	// MaxLookbackDays caps the backward walk.
	MaxLookbackDays = 365
	// WindowDays is the length of the rolling rest-day window.
	WindowDays = 7
)

// Result is the outcome of a streak calculation. It is computed fresh on
// every call and never persisted here.
type Result struct {
	CurrentStreak        int  `json:"current_streak"`
	RestDaysUsedThisWeek int  `json:"rest_days_used_this_week"`
	RestDaysAvailable    int  `json:"rest_days_available"`
	HasCheckedInToday    bool `json:"has_checked_in_today"`
	HasTradedToday       bool `json:"has_traded_today"`
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Calculator binds the streak rules to a clock and the journal time zone.
type Calculator struct {
	clock Clock
	loc   *time.Location
}

// NewCalculator creates a Calculator. A nil clock uses the system clock and a
// nil location uses UTC.
func NewCalculator(clock Clock, loc *time.Location) *Calculator {
	if clock == nil {
		clock = SystemClock
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Calculator{clock: clock, loc: loc}
}

// Today returns the current civil date in the calculator's time zone.
func (c *Calculator) Today() string {
	return c.clock.Now().In(c.loc).Format(models.DateLayout)
}

// Calculate computes the streak as of the calculator's current day.
func (c *Calculator) Calculate(tradeDates, checkinDates []string, allowedRestDaysPerWeek int) Result {
	return Calculate(c.clock.Now().In(c.loc), tradeDates, checkinDates, allowedRestDaysPerWeek)
}

// Calculate computes the streak for the civil day of now. Dates are
// YYYY-MM-DD strings; anything after the first ten characters is ignored and
// unparseable entries are skipped. Duplicates collapse. A negative allowance
// counts as zero.
func Calculate(now time.Time, tradeDates, checkinDates []string, allowedRestDaysPerWeek int) Result {
	allowance := allowedRestDaysPerWeek
	if allowance < 0 {
		allowance = 0
	}

	traded := newDaySet(tradeDates)
	active := newDaySet(tradeDates)
	active.addAll(checkinDates)

	today := civilDay(now)
	todayActive := active.has(today)

	res := Result{
		HasTradedToday:    traded.has(today),
		HasCheckedInToday: todayActive,
	}
	res.CurrentStreak = walk(active, today, allowance)
	res.RestDaysUsedThisWeek = restDaysUsed(active, today, allowance)
	res.RestDaysAvailable = allowance - res.RestDaysUsedThisWeek
	if res.RestDaysAvailable < 0 {
		res.RestDaysAvailable = 0
	}
	return res
}

// walk counts the streak ending today. Forgiven rest days are held as
// pending and only join the streak once an earlier active day bridges them,
// so a streak never starts or ends on a rest day.
func walk(active daySet, today time.Time, allowance int) int {
	streak, pending, gaps := 0, 0, 0

	for i := 0; i < MaxLookbackDays; i++ {
		day := today.AddDate(0, 0, -i)
		if active.has(day) {
			streak += pending + 1
			pending = 0
			gaps = 0
			continue
		}
		if i == 0 {
			// today is still in progress
			continue
		}

		gaps++
		if gaps > 1 || restDaysInWindow(active, day, today) > allowance {
			break
		}
		pending++
	}

	return streak
}

// restDaysInWindow counts gap days in the seven-day window starting at
// checkDate, limited to days the walk has already covered. An inactive today
// is in progress and does not count.
func restDaysInWindow(active daySet, checkDate, today time.Time) int {
	count := 0
	for j := 0; j < WindowDays; j++ {
		day := checkDate.AddDate(0, 0, j)
		if day.After(today) {
			break
		}
		if day.Equal(today) {
			continue
		}
		if !active.has(day) {
			count++
		}
	}
	return count
}

// restDaysUsed counts inactive days among today and the six days before it.
// An inactive today is provisionally excluded. The result is clamped to the
// allowance.
func restDaysUsed(active daySet, today time.Time, allowance int) int {
	used := 0
	for i := 0; i < WindowDays; i++ {
		if !active.has(today.AddDate(0, 0, -i)) {
			used++
		}
	}
	if !active.has(today) && used > 0 {
		used--
	}
	if used > allowance {
		used = allowance
	}
	return used
}
