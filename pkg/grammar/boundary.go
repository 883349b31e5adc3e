package grammar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnparseableBoundary is returned when a boundary argument cannot be
// parsed under the selected grammar's date-completion rules.
var ErrUnparseableBoundary = errors.New("unparseable boundary")

// boundaryLayouts are the layouts accepted for boundary arguments that
// carry a full date, tried in order. Fractional seconds are accepted
// after any seconds field.
var boundaryLayouts = []struct {
	layout string
	window time.Duration
}{
	{"2006-01-02T15:04:05-07:00", time.Second},
	{"2006-01-02T15:04:05Z07:00", time.Second},
	{"2006-01-02T15:04:05", time.Second},
	{"2006-01-02 15:04:05", time.Second},
	{"2006-01-02 15:04", time.Minute},
	{"2006-01-02", 24 * time.Hour},
	{"02/Jan/2006:15:04:05 -0700", time.Second},
	{"Mon Jan 02 15:04:05 2006", time.Second},
	{"Jan _2 2006 15:04:05", time.Second},
	{"2006/01/02 15:04:05", time.Second},
}

// clockLayouts are the layouts accepted for time-only boundaries.
var clockLayouts = []struct {
	layout string
	window time.Duration
}{
	{"15:04:05", time.Second},
	{"15:04", time.Minute},
}

// ParseBoundary parses a raw boundary argument under grammar g. A full
// date-time string stands on its own; a time-only string is completed
// with the anchor date; a bare integer of plausible magnitude is read as
// a Unix epoch. Failure is reported as ErrUnparseableBoundary.
func ParseBoundary(raw string, g *Grammar, anchor AnchorDate) (Instant, error) {
	return ParseBoundaryWith(raw, g, anchor, EpochThresholds{})
}

// ParseBoundaryWith is ParseBoundary with explicit epoch digit
// thresholds for bare-integer boundaries. The zero value falls back to
// the grammar's own thresholds, then the defaults.
func ParseBoundaryWith(raw string, g *Grammar, anchor AnchorDate, epoch EpochThresholds) (Instant, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Instant{}, fmt.Errorf("%w: empty boundary", ErrUnparseableBoundary)
	}

	if isDigits(s) {
		th := epoch
		if th == (EpochThresholds{}) {
			th = DefaultEpochThresholds
			if g != nil && g.Kind == KindEpoch {
				th = g.Epoch
			}
		}
		if inst, ok := parseEpoch(s, th); ok {
			return inst, nil
		}
		return Instant{}, fmt.Errorf("%w: %q is not a plausible epoch timestamp", ErrUnparseableBoundary, raw)
	}

	if IsTimeOnly(s) {
		for _, cl := range clockLayouts {
			t, err := time.Parse(cl.layout, s)
			if err != nil {
				continue
			}
			if anchor.IsZero() {
				return Instant{}, fmt.Errorf("%w: time-only boundary %q needs an anchor date", ErrUnparseableBoundary, raw)
			}
			return Instant{Time: anchor.combine(t), Window: fractionWindow(s, cl.window)}, nil
		}
		return Instant{}, fmt.Errorf("%w: %q", ErrUnparseableBoundary, raw)
	}

	// The selected grammar's own layout gets first claim, so a boundary
	// written exactly like the file's timestamps always parses.
	if g != nil && g.Kind == KindLayout {
		if t, err := time.Parse(g.Layout, s); err == nil {
			inst := g.complete(t, s, g.Window, anchor)
			return inst, nil
		}
	}

	if t, window, ok := parseLayoutCascade(s); ok {
		return Instant{Time: t, Window: fractionWindow(s, window)}, nil
	}
	return Instant{}, fmt.Errorf("%w: %q", ErrUnparseableBoundary, raw)
}

// parseLayoutCascade tries the full-date boundary layouts in order.
func parseLayoutCascade(s string) (time.Time, time.Duration, bool) {
	for _, bl := range boundaryLayouts {
		if t, err := time.Parse(bl.layout, s); err == nil {
			return t, bl.window, true
		}
	}
	return time.Time{}, 0, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
