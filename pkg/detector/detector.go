// Package detector infers the timestamp grammar of a log file from a
// bounded prefix sample and establishes the anchor date that completes
// time-only timestamps.
package detector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/domgalati/tfind/pkg/grammar"
)

// Detection failure classifications. All three abort the whole
// operation before any output is produced.
var (
	// ErrFormatUndetected means some lines parsed under some grammar,
	// but no single grammar cleared the selection threshold.
	ErrFormatUndetected = errors.New("no timestamp format cleared the detection threshold")

	// ErrNoTimestampFound means zero sample lines parsed at all.
	ErrNoTimestampFound = errors.New("no parseable timestamps found")

	// ErrNoAnchorDate means an anchor date was required but no
	// full-date line exists to supply it.
	ErrNoAnchorDate = errors.New("no full-date line found to anchor time-only timestamps")
)

// Result holds the outcome of detection: the selected grammar, the
// anchor date (zero if none was discoverable), and per-grammar match
// statistics for reporting.
type Result struct {
	Grammar      *grammar.Grammar
	Anchor       grammar.AnchorDate
	Matches      []Match // all grammars that matched, best first
	SampledLines int     // non-empty lines considered
	ParsedLines  int     // lines matched by the selected grammar
}

// Match records how one grammar fared against the sample.
type Match struct {
	Grammar    *grammar.Grammar
	Count      int
	Rate       float64 // Count over non-empty sampled lines
	SampleLine string  // first line that matched
	SampleTime time.Time
}

// Detector samples a file prefix and selects a grammar.
type Detector struct {
	grammars       []*grammar.Grammar
	explicit       *grammar.Grammar
	sampleLines    int
	sampleBytes    int64
	threshold      float64
	anchorRequired bool
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleLines caps the number of lines sampled (default 2000).
func WithSampleLines(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleLines = n
		}
	}
}

// WithSampleBytes caps the number of bytes sampled (default 256 KiB).
func WithSampleBytes(n int64) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleBytes = n
		}
	}
}

// WithThreshold sets the minimum fraction of sampled lines a grammar
// must parse to be selected (default 0.6).
func WithThreshold(f float64) Option {
	return func(d *Detector) {
		if f > 0 && f <= 1 {
			d.threshold = f
		}
	}
}

// WithGrammars replaces the built-in grammar table. Order is priority.
func WithGrammars(gs []*grammar.Grammar) Option {
	return func(d *Detector) {
		if len(gs) > 0 {
			d.grammars = gs
		}
	}
}

// WithExplicitGrammar skips selection and uses g unconditionally.
// Detection still fails with ErrNoTimestampFound if g matches zero
// sample lines.
func WithExplicitGrammar(g *grammar.Grammar) Option {
	return func(d *Detector) { d.explicit = g }
}

// WithAnchorRequired forces anchor discovery even when the selected
// grammar carries full dates. Set when a boundary argument is
// time-only and must be completed with a date from the file.
func WithAnchorRequired(required bool) Option {
	return func(d *Detector) { d.anchorRequired = required }
}

// New creates a Detector over the built-in grammars.
func New(opts ...Option) *Detector {
	d := &Detector{
		grammars:    grammar.Builtin(),
		sampleLines: 2000,
		sampleBytes: 256 << 10,
		threshold:   0.6,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect samples a prefix of r, selects a grammar, and establishes the
// anchor date. When the anchor is required but absent from the sample,
// the scan continues forward on r until a full-date line or EOF; r is
// otherwise read only up to the sample caps.
func (d *Detector) Detect(ctx context.Context, r io.Reader) (*Result, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	lines, err := d.sample(ctx, br)
	if err != nil {
		return nil, err
	}

	result, err := d.selectGrammar(lines)
	if err != nil {
		return nil, err
	}

	if err := d.findAnchor(ctx, result, lines, br); err != nil {
		return nil, err
	}
	return result, nil
}

// sample reads non-empty lines up to the line and byte caps.
func (d *Detector) sample(ctx context.Context, br *bufio.Reader) ([]string, error) {
	var lines []string
	var read int64
	for len(lines) < d.sampleLines && read < d.sampleBytes {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		line, err := br.ReadString('\n')
		read += int64(len(line))
		if trimmed := strings.TrimRight(line, "\r\n"); strings.TrimSpace(trimmed) != "" {
			lines = append(lines, trimmed)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sampling log prefix: %w", err)
		}
	}
	return lines, nil
}

func (d *Detector) selectGrammar(lines []string) (*Result, error) {
	result := &Result{SampledLines: len(lines)}

	candidates := d.grammars
	if d.explicit != nil {
		candidates = []*grammar.Grammar{d.explicit}
	}

	totalMatched := 0
	for _, g := range candidates {
		m := Match{Grammar: g}
		for _, line := range lines {
			inst, ok := g.TryParse(line, grammar.AnchorDate{})
			if !ok {
				continue
			}
			if m.Count == 0 {
				m.SampleLine = line
				m.SampleTime = inst.Time
			}
			m.Count++
		}
		if m.Count == 0 {
			continue
		}
		if len(lines) > 0 {
			m.Rate = float64(m.Count) / float64(len(lines))
		}
		totalMatched += m.Count
		result.Matches = append(result.Matches, m)

		// Priority order: the first grammar to clear the threshold wins.
		if result.Grammar == nil && m.Rate >= d.threshold {
			result.Grammar = g
			result.ParsedLines = m.Count
		}
	}

	// Best match first for reporting; selection already honored priority.
	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].Rate > result.Matches[j].Rate
	})

	if result.Grammar == nil {
		if totalMatched == 0 {
			if d.explicit != nil {
				return nil, fmt.Errorf("%w: explicit grammar %q matched no sampled lines", ErrNoTimestampFound, candidates[0].Name)
			}
			return nil, ErrNoTimestampFound
		}
		return nil, fmt.Errorf("%w (best %q at %.0f%%, need %.0f%%)",
			ErrFormatUndetected, result.Matches[0].Grammar.Name,
			result.Matches[0].Rate*100, d.threshold*100)
	}
	return result, nil
}

// findAnchor establishes the anchor date: from the sample when possible,
// continuing forward on the reader when the anchor is required but the
// sample held no full-date line.
func (d *Detector) findAnchor(ctx context.Context, result *Result, lines []string, br *bufio.Reader) error {
	anchorGrammars := d.anchorGrammars(result.Grammar)

	for _, line := range lines {
		if a, ok := anchorFromLine(line, anchorGrammars); ok {
			result.Anchor = a
			return nil
		}
	}

	needed := d.anchorRequired || !result.Grammar.HasDate
	if !needed {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line, err := br.ReadString('\n')
		if a, ok := anchorFromLine(strings.TrimRight(line, "\r\n"), anchorGrammars); ok {
			result.Anchor = a
			return nil
		}
		if err == io.EOF {
			return ErrNoAnchorDate
		}
		if err != nil {
			return fmt.Errorf("scanning for anchor date: %w", err)
		}
	}
}

// anchorGrammars returns the full-date-capable grammars, with the
// selected grammar first so the anchor comes from the file's own format
// whenever it carries dates.
func (d *Detector) anchorGrammars(selected *grammar.Grammar) []*grammar.Grammar {
	var gs []*grammar.Grammar
	if selected.FullDate() {
		gs = append(gs, selected)
	}
	for _, g := range d.grammars {
		if g != selected && g.FullDate() {
			gs = append(gs, g)
		}
	}
	return gs
}

func anchorFromLine(line string, gs []*grammar.Grammar) (grammar.AnchorDate, bool) {
	if strings.TrimSpace(line) == "" {
		return grammar.AnchorDate{}, false
	}
	for _, g := range gs {
		if inst, ok := g.TryParse(line, grammar.AnchorDate{}); ok {
			return grammar.AnchorFromTime(inst.Time), true
		}
	}
	return grammar.AnchorDate{}, false
}
