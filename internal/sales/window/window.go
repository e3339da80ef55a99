package window

import (
	"time"

	"github.com/agencyops/salesboard/internal/sales/domain"
)

// Week returns the calendar week containing now: Monday 00:00:00 through
// Sunday 23:59:59 in now's location.
func Week(now time.Time) domain.TimeWindow {
	weekday := int(now.Weekday())
	// time.Weekday counts Sunday as 0; the board week starts Monday.
	offset := (weekday + 6) % 7
	day := now.AddDate(0, 0, -offset)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())
	// Build the end civilly so a DST transition inside the week still lands
	// on Sunday 23:59:59 wall time.
	last := start.AddDate(0, 0, 6)
	end := time.Date(last.Year(), last.Month(), last.Day(), 23, 59, 59, 0, now.Location())
	return domain.TimeWindow{Start: start, End: end}
}

// Month returns the month-to-date window: first of now's month at midnight
// through now itself.
func Month(now time.Time) domain.TimeWindow {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return domain.TimeWindow{Start: start, End: now}
}

// Lookback returns the trailing window of the given number of days ending
// at now, used to pick up recently active salespeople for filler rows.
func Lookback(now time.Time, days int) domain.TimeWindow {
	return domain.TimeWindow{Start: now.AddDate(0, 0, -days), End: now}
}

// ForTimeframe maps a timeframe onto its display window.
func ForTimeframe(now time.Time, tf domain.Timeframe) domain.TimeWindow {
	if tf == domain.TimeframeMonthly {
		return Month(now)
	}
	return Week(now)
}
