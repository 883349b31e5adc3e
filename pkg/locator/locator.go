package locator

import (
	"io"

	"github.com/domgalati/tfind/pkg/grammar"
)

// Bias selects which line boundary a search resolves to.
type Bias int

const (
	// LowerBound finds the first line at or after the target. Used for
	// the start boundary.
	LowerBound Bias = iota
	// UpperBound finds the first line strictly after the target. Used
	// for the end boundary.
	UpperBound
)

// DefaultScanCap bounds the forward scan for a timestamped line when a
// probe lands on continuation lines.
const DefaultScanCap = 20

// Locator binary-searches a file's byte-offset space for the line
// boundary matching a target instant. The file must be sorted by
// timestamp for the result to be exact; on unsorted input the located
// offset is correct for some sorted subsequence but the streamed range
// may be incomplete. Inversions seen during the confirmation scan are
// recorded and reported through ObservedInversion, never fixed up.
type Locator struct {
	r        io.ReaderAt
	size     int64
	g        *grammar.Grammar
	anchor   grammar.AnchorDate
	scanCap  int
	inverted bool
}

// Option configures a Locator.
type Option func(*Locator)

// WithScanCap bounds the per-probe forward scan over continuation lines
// (default 20). Past the cap a probe region counts as equal to the
// target, which widens the final linear confirmation instead of
// looping.
func WithScanCap(n int) Option {
	return func(l *Locator) {
		if n > 0 {
			l.scanCap = n
		}
	}
}

// New creates a Locator over a file of the given size.
func New(r io.ReaderAt, size int64, g *grammar.Grammar, anchor grammar.AnchorDate, opts ...Option) *Locator {
	l := &Locator{r: r, size: size, g: g, anchor: anchor, scanCap: DefaultScanCap}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ObservedInversion reports whether any scan saw timestamps out of
// ascending order. Advisory only; results remain best-effort.
func (l *Locator) ObservedInversion() bool { return l.inverted }

// Locate returns the byte offset of the first line at (LowerBound) or
// strictly after (UpperBound) the target instant. A target before the
// first parseable timestamp yields offset 0; a target after the last
// yields the file size.
func (l *Locator) Locate(target grammar.Instant, bias Bias) (int64, error) {
	lo, hi := int64(0), l.size
	for lo < hi {
		mid := lo + (hi-lo)/2
		span, err := ResolveSpan(l.r, l.size, mid)
		if err != nil {
			return 0, err
		}

		inst, found, ok, err := l.probe(span)
		if err != nil {
			return 0, err
		}

		var atOrPast bool
		if ok {
			atOrPast = pastTarget(inst, target, bias)
		} else {
			// No timestamp within the scan cap: the region counts as
			// equal to the target, so it is at-or-past for LowerBound
			// and not past for UpperBound.
			atOrPast = bias == LowerBound
		}

		if atOrPast {
			hi = span.Start
		} else if ok {
			// Everything through the found line is before the target.
			lo = found.End
		} else {
			lo = span.End
		}
	}

	return l.confirm(lo, target, bias)
}

// probe looks for the first timestamped line at or after span,
// scanning forward at most scanCap lines. ok is false when the cap or
// end of file is hit first.
func (l *Locator) probe(start Span) (grammar.Instant, Span, bool, error) {
	span := start
	for i := 0; i < l.scanCap; i++ {
		if span.Start >= l.size {
			break
		}
		sp, text, err := readLine(l.r, l.size, span.Start)
		if err != nil {
			return grammar.Instant{}, Span{}, false, err
		}
		if inst, ok := l.g.TryParse(text, l.anchor); ok {
			return inst, sp, true, nil
		}
		span = Span{Start: sp.End, End: sp.End}
	}
	return grammar.Instant{}, Span{}, false, nil
}

// confirm walks forward from the converged offset to the exact line
// boundary, skipping continuation lines and widening past any region
// the capped probes mistook for equal-to-target. It also watches for
// ordering inversions along the way.
func (l *Locator) confirm(off int64, target grammar.Instant, bias Bias) (int64, error) {
	atFileStart := off == 0
	var prev grammar.Instant
	havePrev := false

	pos := off
	for pos < l.size {
		span, text, err := readLine(l.r, l.size, pos)
		if err != nil {
			return 0, err
		}
		inst, ok := l.g.TryParse(text, l.anchor)
		if ok {
			if havePrev && inst.Compare(prev) < 0 {
				l.inverted = true
			}
			prev, havePrev = inst, true

			if pastTarget(inst, target, bias) {
				// Leading lines with no preceding timestamp belong to
				// the start of the file.
				if atFileStart {
					return 0, nil
				}
				return span.Start, nil
			}
			atFileStart = false
		}
		pos = span.End
	}
	return l.size, nil
}

// pastTarget evaluates the bias predicate for a line instant.
func pastTarget(inst, target grammar.Instant, bias Bias) bool {
	if bias == LowerBound {
		return inst.AtOrAfter(target)
	}
	return inst.After(target)
}
