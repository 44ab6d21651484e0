package rewards

import "time"

// Calendar decides which calendar day "now" falls on for daily resets.
type Calendar struct {
	Location *time.Location
	Now      func() time.Time
}

func NewCalendar(loc *time.Location, now func() time.Time) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return Calendar{Location: loc, Now: now}
}

// Today returns the current local date as midnight UTC.
func (c Calendar) Today() time.Time {
	return DayOf(c.Now(), c.Location)
}

// StartOfTomorrow is the instant the next calendar day begins in the calendar's location.
func (c Calendar) StartOfTomorrow() time.Time {
	now := c.Now().In(c.Location)
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, c.Location)
}

// DayOf normalizes t to its calendar date in loc, expressed as midnight UTC.
func DayOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay compares two normalized days.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func previousDay(day time.Time) time.Time {
	return day.AddDate(0, 0, -1)
}

func formatDay(day time.Time) string {
	return day.Format(time.DateOnly)
}
