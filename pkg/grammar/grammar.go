// Package grammar defines the timestamp formats tfind recognizes and the
// total order over the instants they parse to.
package grammar

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind selects the parsing strategy for a grammar's captured text.
type Kind int

const (
	// KindLayout parses the capture with a single Go time layout.
	KindLayout Kind = iota
	// KindEpoch parses the capture as a raw Unix epoch integer,
	// disambiguating seconds/millis/micros by digit count.
	KindEpoch
	// KindFlexible parses the capture against a cascade of common
	// layouts. Used by exemplar-derived grammars, whose regex is
	// synthesized from a sample rather than tied to one layout.
	KindFlexible
)

// EpochThresholds gives the maximum digit counts interpreted as each
// epoch magnitude. A raw integer up to Seconds digits long is read as
// epoch seconds, up to Millis as milliseconds, up to Micros as
// microseconds. Longer runs of digits are rejected.
type EpochThresholds struct {
	Seconds int
	Millis  int
	Micros  int
}

// DefaultEpochThresholds covers the common encodings: 10-digit seconds,
// 13-digit milliseconds, 16-digit microseconds.
var DefaultEpochThresholds = EpochThresholds{Seconds: 10, Millis: 13, Micros: 16}

// epochMaxSeconds bounds epoch values to year 2100, rejecting integers
// that happen to look like timestamps.
const epochMaxSeconds = 4102444800

// Grammar describes how to extract a timestamp substring from a line and
// parse it into an Instant. Grammars are immutable once built.
type Grammar struct {
	Name       string
	Pattern    *regexp.Regexp // first capture group is the timestamp
	PatternStr string
	Layout     string // Go time layout (KindLayout only)
	Kind       Kind

	// HasDate is false for time-only formats, which need an AnchorDate
	// before their instants are comparable across lines.
	HasDate bool
	// HasYear is false for formats like BSD syslog that carry a month
	// and day but no year.
	HasYear bool

	// Window is the precision of the format when the input carries no
	// fractional seconds. Fractional digits in the input narrow it.
	Window time.Duration

	// Epoch holds the digit-count thresholds for KindEpoch grammars.
	Epoch EpochThresholds
}

// TryParse extracts and parses a timestamp from line. Absence of a match
// is a normal outcome, reported as ok=false; TryParse never fails
// otherwise. The anchor, when set, completes formats missing a date or
// year. It may be the zero AnchorDate during detection, in which case
// incomplete timestamps parse relative to year zero.
func (g *Grammar) TryParse(line string, anchor AnchorDate) (Instant, bool) {
	m := g.Pattern.FindStringSubmatch(line)
	if len(m) < 2 || m[1] == "" {
		return Instant{}, false
	}
	return g.parseCapture(m[1], anchor)
}

func (g *Grammar) parseCapture(ts string, anchor AnchorDate) (Instant, bool) {
	switch g.Kind {
	case KindEpoch:
		return parseEpoch(ts, g.Epoch)
	case KindFlexible:
		t, window, ok := parseLayoutCascade(ts)
		if !ok && !g.HasDate {
			for _, cl := range clockLayouts {
				if ct, err := time.Parse(cl.layout, ts); err == nil {
					t, window, ok = ct, cl.window, true
					break
				}
			}
		}
		if !ok && g.HasDate && !g.HasYear {
			if ct, err := time.Parse("Jan _2 15:04:05", ts); err == nil {
				t, window, ok = ct, time.Second, true
			}
		}
		if !ok {
			return Instant{}, false
		}
		return g.complete(t, ts, window, anchor), true
	default:
		t, err := time.Parse(g.Layout, ts)
		if err != nil {
			return Instant{}, false
		}
		return g.complete(t, ts, g.Window, anchor), true
	}
}

// complete fills in date parts the format does not carry and narrows the
// precision window when the input had fractional seconds.
func (g *Grammar) complete(t time.Time, ts string, window time.Duration, anchor AnchorDate) Instant {
	switch {
	case !g.HasDate:
		if !anchor.IsZero() {
			t = anchor.combine(t)
		}
	case !g.HasYear && t.Year() == 0:
		year := anchor.Year
		if year == 0 {
			year = time.Now().Year()
		}
		t = time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}
	return Instant{Time: t, Window: fractionWindow(ts, window)}
}

// parseEpoch reads a digit run as a Unix timestamp, choosing the
// magnitude by digit count.
func parseEpoch(ts string, th EpochThresholds) (Instant, bool) {
	if th == (EpochThresholds{}) {
		th = DefaultEpochThresholds
	}
	v, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return Instant{}, false
	}
	var t time.Time
	var window time.Duration
	switch n := len(ts); {
	case n <= th.Seconds:
		t, window = time.Unix(v, 0), time.Second
	case n <= th.Millis:
		t, window = time.UnixMilli(v), time.Millisecond
	case n <= th.Micros:
		t, window = time.UnixMicro(v), time.Microsecond
	default:
		return Instant{}, false
	}
	if secs := t.Unix(); secs < 0 || secs > epochMaxSeconds {
		return Instant{}, false
	}
	return Instant{Time: t, Window: window}, true
}

// fractionWindow narrows the precision window according to the number of
// fractional-second digits present in the timestamp text.
func fractionWindow(ts string, window time.Duration) time.Duration {
	i := strings.IndexAny(ts, ".,")
	if i < 0 || i+1 >= len(ts) {
		return window
	}
	digits := 0
	for _, r := range ts[i+1:] {
		if r < '0' || r > '9' {
			break
		}
		digits++
	}
	if digits == 0 {
		return window
	}
	w := time.Second
	for ; digits > 0 && w > time.Nanosecond; digits-- {
		w /= 10
	}
	if w < window {
		return w
	}
	return window
}

var (
	clockRE    = regexp.MustCompile(`\d{1,2}:\d{2}`)
	yearRE     = regexp.MustCompile(`\b\d{4}\b`)
	monthDayRE = regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}\b`)
	monthRE    = regexp.MustCompile(`(?i)(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*`)
)

// IsTimeOnly reports whether s carries a clock time but nothing that
// identifies a calendar date. Such inputs need an AnchorDate before they
// can be compared against full timestamps.
func IsTimeOnly(s string) bool {
	if !clockRE.MatchString(s) {
		return false
	}
	return !yearRE.MatchString(s) && !monthDayRE.MatchString(s) && !monthRE.MatchString(s)
}
