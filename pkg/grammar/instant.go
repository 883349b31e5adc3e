package grammar

import "time"

// Instant is a parsed point in time together with the width of its
// precision window. A second-precision timestamp like "13:23:15" stands
// for the whole window [13:23:15.000, 13:23:16.000); the window width is
// what lets boundaries of different precision compare without false
// exclusions.
type Instant struct {
	Time   time.Time
	Window time.Duration
}

// windowEnd returns the last representable nanosecond of the instant's
// precision window.
func (i Instant) windowEnd() time.Time {
	if i.Window <= time.Nanosecond {
		return i.Time
	}
	return i.Time.Add(i.Window - time.Nanosecond)
}

// AtOrAfter reports whether the instant is at or after the target, with
// the target treated as the start of its precision window. This is the
// start-boundary predicate: a line at 13:23:15.500 is AtOrAfter a
// second-precision target of 13:23:15.
func (i Instant) AtOrAfter(target Instant) bool {
	return !i.windowEnd().Before(target.Time)
}

// After reports whether the instant is strictly after the target, with
// the target treated as the end of its precision window. This is the
// end-boundary predicate: a line at 13:23:15.500 is not After a
// second-precision target of 13:23:15.
func (i Instant) After(target Instant) bool {
	return i.Time.After(target.windowEnd())
}

// Compare orders two instants by their window start. Used for
// inversion detection, where window semantics do not apply.
func (i Instant) Compare(other Instant) int {
	return i.Time.Compare(other.Time)
}

// AnchorDate is the calendar date used to complete time-only timestamps.
// The zero value means no anchor has been established.
type AnchorDate struct {
	Year  int
	Month time.Month
	Day   int
}

// IsZero reports whether no anchor date has been established.
func (a AnchorDate) IsZero() bool {
	return a == AnchorDate{}
}

// AnchorFromTime extracts the calendar date of t.
func AnchorFromTime(t time.Time) AnchorDate {
	y, m, d := t.Date()
	return AnchorDate{Year: y, Month: m, Day: d}
}

// combine places the clock part of t on the anchor date.
func (a AnchorDate) combine(t time.Time) time.Time {
	return time.Date(a.Year, a.Month, a.Day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// String formats the anchor as an ISO calendar date.
func (a AnchorDate) String() string {
	return time.Date(a.Year, a.Month, a.Day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}
