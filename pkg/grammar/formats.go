package grammar

import (
	"regexp"
	"time"
)

// Builtin returns the built-in grammars in detection priority order:
// the most specific, least ambiguous formats come first so that a
// format is never misclassified as a more permissive one that happens
// to match the same text. Bare epoch integers come last for the same
// reason. The returned slice is freshly allocated; callers may reorder
// or extend it.
func Builtin() []*Grammar {
	grammars := []*Grammar{
		{
			Name:       "ISO 8601 with offset",
			PatternStr: `^\[?(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:[.,]\d{1,9})?[+-]\d{2}:\d{2})\]?`,
			Layout:     "2006-01-02T15:04:05-07:00",
			HasDate:    true,
			HasYear:    true,
			Window:     time.Second,
		},
		{
			Name:       "ISO 8601 UTC",
			PatternStr: `^\[?(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:[.,]\d{1,9})?Z)\]?`,
			Layout:     "2006-01-02T15:04:05Z07:00",
			HasDate:    true,
			HasYear:    true,
			Window:     time.Second,
		},
		{
			Name:       "ISO 8601",
			PatternStr: `^\[?(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:[.,]\d{1,9})?)\]?`,
			Layout:     "2006-01-02T15:04:05",
			HasDate:    true,
			HasYear:    true,
			Window:     time.Second,
		},
		{
			Name:       "Bracketed datetime",
			PatternStr: `^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(?:[.,]\d{1,9})?)\]`,
			Layout:     "2006-01-02 15:04:05",
			HasDate:    true,
			HasYear:    true,
			Window:     time.Second,
		},
		{
			Name:       "Datetime (space-separated)",
			PatternStr: `^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(?:[.,]\d{1,9})?)`,
			Layout:     "2006-01-02 15:04:05",
			HasDate:    true,
			HasYear:    true,
			Window:     time.Second,
		},
		{
			Name:       "Apache/NGINX CLF",
			PatternStr: `\[(\d{2}/\w{3}/\d{4}:\d{2}:\d{2}:\d{2}\s+[+-]\d{4})\]`,
			Layout:     "02/Jan/2006:15:04:05 -0700",
			HasDate:    true,
			HasYear:    true,
			Window:     time.Second,
		},
		{
			Name:       "Apache error log",
			PatternStr: `^\[(\w{3} \w{3} \d{2} \d{2}:\d{2}:\d{2}(?:[.,]\d{1,9})? \d{4})\]`,
			Layout:     "Mon Jan 02 15:04:05 2006",
			HasDate:    true,
			HasYear:    true,
			Window:     time.Second,
		},
		{
			Name:       "Syslog with year",
			PatternStr: `^(\w{3}\s+\d{1,2}\s+\d{4}\s+\d{2}:\d{2}:\d{2})`,
			Layout:     "Jan _2 2006 15:04:05",
			HasDate:    true,
			HasYear:    true,
			Window:     time.Second,
		},
		{
			Name:       "Syslog (BSD)",
			PatternStr: `^(\w{3}\s+\d{1,2}\s+\d{2}:\d{2}:\d{2})`,
			Layout:     "Jan _2 15:04:05",
			HasDate:    true,
			HasYear:    false,
			Window:     time.Second,
		},
		{
			Name:       "Time only",
			PatternStr: `^\[?(\d{1,2}:\d{2}:\d{2}(?:[.,]\d{1,9})?)\]?`,
			Layout:     "15:04:05",
			HasDate:    false,
			HasYear:    false,
			Window:     time.Second,
		},
		{
			Name:       "Unix epoch",
			PatternStr: `^\[?(\d{10,16})(?:\s|\]|$)`,
			Kind:       KindEpoch,
			HasDate:    true,
			HasYear:    true,
			Window:     time.Second,
			Epoch:      DefaultEpochThresholds,
		},
	}

	for _, g := range grammars {
		g.Pattern = regexp.MustCompile(g.PatternStr)
	}
	return grammars
}

// BuiltinWithEpoch returns the built-in table with the epoch grammar's
// digit thresholds replaced, so configured digit counts take effect in
// both detection and timestamp parsing.
func BuiltinWithEpoch(th EpochThresholds) []*Grammar {
	grammars := Builtin()
	for _, g := range grammars {
		if g.Kind == KindEpoch {
			g.Epoch = th
		}
	}
	return grammars
}

// FullDate reports whether the grammar produces timestamps with a
// complete calendar date, making it usable for anchor discovery.
func (g *Grammar) FullDate() bool {
	return g.HasDate && g.HasYear
}

// FromPattern builds a grammar from a user-supplied regex and Go time
// layout, the escape hatch for formats the built-in table does not
// cover. The pattern's first capture group must select the timestamp.
func FromPattern(pattern, layout string) (*Grammar, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	probe := time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC).Format(layout)
	hasDate := !IsTimeOnly(probe)
	return &Grammar{
		Name:       "User pattern",
		Pattern:    re,
		PatternStr: pattern,
		Layout:     layout,
		HasDate:    hasDate,
		HasYear:    hasDate && yearRE.MatchString(probe),
		Window:     time.Second,
	}, nil
}
