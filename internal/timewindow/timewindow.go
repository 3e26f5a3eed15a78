// Package timewindow computes calendar ranges relative to a reference "now".
//
// Every range is half-open: Start is included, End is not. All arithmetic happens
// in the Windows' location so month and week boundaries follow local midnight.
package timewindow

import (
	"time"
)

// Clock supplies the reference time. Tests inject a FixedClock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return c.T }

// Range is a half-open interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Last returns the latest instant still inside the range, for inclusive comparisons.
func (r Range) Last() time.Time {
	return r.End.Add(-time.Nanosecond)
}

// Days returns the number of calendar days the range spans.
func (r Range) Days() int {
	return DaysBetween(r.Start, r.End)
}

// Windows computes ranges relative to a fixed "now".
type Windows struct {
	now       time.Time
	loc       *time.Location
	weekStart time.Weekday
}

// Option configures Windows.
type Option func(*Windows)

// WithLocation sets the location used for calendar boundaries.
func WithLocation(loc *time.Location) Option {
	return func(w *Windows) {
		if loc != nil {
			w.loc = loc
		}
	}
}

// WithWeekStart sets the first day of the week. The default is Sunday.
func WithWeekStart(day time.Weekday) Option {
	return func(w *Windows) {
		w.weekStart = day
	}
}

// New returns Windows anchored at now.
func New(now time.Time, opts ...Option) Windows {
	w := Windows{
		now:       now,
		loc:       now.Location(),
		weekStart: time.Sunday,
	}
	for _, opt := range opts {
		opt(&w)
	}
	w.now = w.now.In(w.loc)
	return w
}

// FromClock returns Windows anchored at the clock's current time.
func FromClock(c Clock, opts ...Option) Windows {
	return New(c.Now(), opts...)
}

// Now returns the reference instant.
func (w Windows) Now() time.Time { return w.now }

// Location returns the location used for calendar boundaries.
func (w Windows) Location() *time.Location { return w.loc }

// WeekStart returns the configured first day of the week.
func (w Windows) WeekStart() time.Weekday { return w.weekStart }

// Today returns local midnight of the reference day.
func (w Windows) Today() time.Time {
	return StartOfDay(w.now, w.loc)
}

// Day returns the calendar day containing t.
func (w Windows) Day(t time.Time) Range {
	start := StartOfDay(t, w.loc)
	return Range{Start: start, End: start.AddDate(0, 0, 1)}
}

// Month returns the calendar month monthsAgo months before the current one.
// Month(0) is the current month.
func (w Windows) Month(monthsAgo int) Range {
	start := time.Date(w.now.Year(), w.now.Month()-time.Month(monthsAgo), 1, 0, 0, 0, 0, w.loc)
	return Range{Start: start, End: start.AddDate(0, 1, 0)}
}

// CurrentMonth returns the month containing now.
func (w Windows) CurrentMonth() Range {
	return w.Month(0)
}

// PreviousMonth returns the month before the current one.
func (w Windows) PreviousMonth() Range {
	return w.Month(1)
}

// Year returns the calendar year yearsAgo years before the current one.
func (w Windows) Year(yearsAgo int) Range {
	start := time.Date(w.now.Year()-yearsAgo, time.January, 1, 0, 0, 0, 0, w.loc)
	return Range{Start: start, End: start.AddDate(1, 0, 0)}
}

// Week returns the seven-day week weeksAgo weeks before the one containing now.
func (w Windows) Week(weeksAgo int) Range {
	today := w.Today()
	offset := (int(today.Weekday()) - int(w.weekStart) + 7) % 7
	start := today.AddDate(0, 0, -offset-7*weeksAgo)
	return Range{Start: start, End: start.AddDate(0, 0, 7)}
}

// TrailingDays returns the n calendar days ending with today. n below 1 is treated as 1.
func (w Windows) TrailingDays(n int) Range {
	if n < 1 {
		n = 1
	}
	today := w.Today()
	return Range{Start: today.AddDate(0, 0, -(n - 1)), End: today.AddDate(0, 0, 1)}
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayKey returns t's calendar date in loc as YYYY-MM-DD.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// DaysBetween returns the number of calendar days from a to b, ignoring time of day.
// It is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
