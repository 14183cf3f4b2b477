// Package calday answers "which business day is this" for the CRM. All day
// semantics (today, rollover, streaks, workdays) use the Europe/Istanbul
// civil calendar, never the server's zone.
//
// A day is represented as a time.Time at 00:00 Istanbul. In Postgres it is
// stored as a date column and crosses the wire as its Key ("2006-01-02").
package calday

import (
	"time"
	_ "time/tzdata" // containers often ship without zoneinfo
)

// Layout is the day key format
const Layout = "2006-01-02"

// Istanbul is the business location. Turkey has been fixed at UTC+3 since
// 2016; the fixed zone is only used if the tz database is missing.
var Istanbul = loadIstanbul()

func loadIstanbul() *time.Location {
	if loc, err := time.LoadLocation("Europe/Istanbul"); err == nil {
		return loc
	}
	return time.FixedZone("+03", 3*60*60)
}

// Clock is the time source. Services take one so tests can pin "now".
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns time.Now
func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a func to Clock
type ClockFunc func() time.Time

// Now calls f
func (f ClockFunc) Now() time.Time { return f() }

// Now returns c.Now() expressed in Istanbul
func Now(c Clock) time.Time { return c.Now().In(Istanbul) }

// Floor truncates t to 00:00 of its Istanbul day
func Floor(t time.Time) time.Time {
	l := t.In(Istanbul)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, Istanbul)
}

// SameDay reports whether a and b fall on the same Istanbul day. A zero time
// never matches, so a user who never called is always on a new day.
func SameDay(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	return Floor(a).Equal(Floor(b))
}

// IsWorkday reports Monday through Friday in Istanbul
func IsWorkday(t time.Time) bool {
	switch t.In(Istanbul).Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return true
}

// Key formats the Istanbul day of t as YYYY-MM-DD
func Key(t time.Time) string { return t.In(Istanbul).Format(Layout) }

// Parse reads a YYYY-MM-DD key as an Istanbul day
func Parse(s string) (time.Time, error) { return time.ParseInLocation(Layout, s, Istanbul) }

// Date builds an Istanbul day from its parts; out-of-range parts normalise like time.Date
func Date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, Istanbul) }

// FromDate converts a scanned Postgres date (midnight UTC) to the Istanbul day
// with the same calendar parts
func FromDate(t time.Time) time.Time { return Date(t.Year(), t.Month(), t.Day()) }

// AddDays moves a day by n calendar days
func AddDays(day time.Time, n int) time.Time {
	l := day.In(Istanbul)
	return Date(l.Year(), l.Month(), l.Day()+n)
}

// Between counts calendar days from a's day to b's day; negative if b is earlier
func Between(a, b time.Time) int {
	fa, fb := a.In(Istanbul), b.In(Istanbul)
	ua := time.Date(fa.Year(), fa.Month(), fa.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(fb.Year(), fb.Month(), fb.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / (24 * time.Hour))
}

// MonthRange returns the first and last day of a month
func MonthRange(y int, m time.Month) (first, last time.Time) {
	first = Date(y, m, 1)
	return first, Date(y, m+1, 0)
}

// NextAt returns the first instant strictly after t whose Istanbul wall
// clock reads hour:min. NextAt(t, 0, 0) is the next midnight.
func NextAt(t time.Time, hour, min int) time.Time {
	l := t.In(Istanbul)
	next := time.Date(l.Year(), l.Month(), l.Day(), hour, min, 0, 0, Istanbul)
	if !next.After(t) {
		next = time.Date(l.Year(), l.Month(), l.Day()+1, hour, min, 0, 0, Istanbul)
	}
	return next
}
