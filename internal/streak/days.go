package streak

import (
	"time"

	"trading-journal/internal/models"
)

// daySet is a set of civil dates keyed by their YYYY-MM-DD form.
type daySet map[string]struct{}

func newDaySet(dates []string) daySet {
	s := make(daySet, len(dates))
	s.addAll(dates)
	return s
}

func (s daySet) addAll(dates []string) {
	for _, d := range dates {
		if key, ok := NormalizeDate(d); ok {
			s[key] = struct{}{}
		}
	}
}

func (s daySet) has(day time.Time) bool {
	_, ok := s[day.Format(models.DateLayout)]
	return ok
}

// NormalizeDate returns the YYYY-MM-DD key of s, accepting full timestamps
// by their date portion.
func NormalizeDate(s string) (string, bool) {
	if len(s) < len(models.DateLayout) {
		return "", false
	}
	s = s[:len(models.DateLayout)]
	if _, err := time.Parse(models.DateLayout, s); err != nil {
		return "", false
	}
	return s, true
}

// civilDay returns midnight UTC of t's calendar date in t's own location.
// Day arithmetic on the result is free of DST shifts.
func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
