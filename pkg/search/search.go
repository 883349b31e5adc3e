// Package search ties detection, boundary location, and range streaming
// together behind the three operations callers use.
package search

import (
	"context"
	"fmt"
	"os"

	"github.com/domgalati/tfind/pkg/detector"
	"github.com/domgalati/tfind/pkg/grammar"
	"github.com/domgalati/tfind/pkg/locator"
	"github.com/domgalati/tfind/pkg/stream"
)

// Context is the immutable detection outcome threaded through every
// locate and stream call. Computing it once per invocation keeps reuse
// across multiple ranges safe without any global state.
type Context struct {
	Grammar *grammar.Grammar
	Anchor  grammar.AnchorDate
	// Epoch carries the configured digit thresholds for bare-integer
	// boundary arguments; the zero value means the defaults.
	Epoch grammar.EpochThresholds
}

// DetectOptions configure format detection.
type DetectOptions struct {
	// Explicit, when set, is used unconditionally instead of sampling
	// for a format.
	Explicit *grammar.Grammar
	// Grammars overrides the built-in grammar table (priority order).
	Grammars []*grammar.Grammar
	// SampleLines and SampleBytes cap the detection sample; zero means
	// the detector defaults.
	SampleLines int
	SampleBytes int64
	// Threshold is the minimum fraction of sampled lines the selected
	// grammar must parse; zero means the detector default.
	Threshold float64
	// AnchorRequired forces anchor-date discovery, set when a boundary
	// argument is time-only.
	AnchorRequired bool
	// Epoch, when non-zero, sets the digit thresholds used for
	// bare-integer boundary arguments.
	Epoch grammar.EpochThresholds
}

// DetectFormat samples the file's prefix and returns the grammar and
// anchor date for this invocation. It fails with
// detector.ErrFormatUndetected, detector.ErrNoTimestampFound, or
// detector.ErrNoAnchorDate. The file's read position is consumed;
// later operations use offset-addressed reads and are unaffected.
func DetectFormat(ctx context.Context, f *os.File, opts DetectOptions) (Context, error) {
	var dopts []detector.Option
	if opts.Explicit != nil {
		dopts = append(dopts, detector.WithExplicitGrammar(opts.Explicit))
	}
	if opts.Grammars != nil {
		dopts = append(dopts, detector.WithGrammars(opts.Grammars))
	}
	if opts.SampleLines > 0 {
		dopts = append(dopts, detector.WithSampleLines(opts.SampleLines))
	}
	if opts.SampleBytes > 0 {
		dopts = append(dopts, detector.WithSampleBytes(opts.SampleBytes))
	}
	if opts.Threshold > 0 {
		dopts = append(dopts, detector.WithThreshold(opts.Threshold))
	}
	if opts.AnchorRequired {
		dopts = append(dopts, detector.WithAnchorRequired(true))
	}

	result, err := detector.New(dopts...).Detect(ctx, f)
	if err != nil {
		return Context{}, err
	}
	return Context{Grammar: result.Grammar, Anchor: result.Anchor, Epoch: opts.Epoch}, nil
}

// ParseBoundary parses a raw boundary argument under the detection
// context. Fails with grammar.ErrUnparseableBoundary.
func ParseBoundary(sc Context, raw string) (grammar.Instant, error) {
	return grammar.ParseBoundaryWith(raw, sc.Grammar, sc.Anchor, sc.Epoch)
}

// LocateBoundary parses a raw boundary argument and binary-searches the
// file for its line boundary: the first line at or after the
// boundary for LowerBound, the first line strictly after it for
// UpperBound. The returned inverted flag reports whether the scan saw
// timestamps out of order; it is advisory, surfaced once per
// invocation by the caller.
func LocateBoundary(f *os.File, sc Context, raw string, bias locator.Bias, scanCap int) (offset int64, inverted bool, err error) {
	inst, err := ParseBoundary(sc, raw)
	if err != nil {
		return 0, false, err
	}
	return LocateInstant(f, sc, inst, bias, scanCap)
}

// LocateInstant is LocateBoundary for an already-parsed instant.
func LocateInstant(f *os.File, sc Context, inst grammar.Instant, bias locator.Bias, scanCap int) (offset int64, inverted bool, err error) {
	size, err := fileSize(f)
	if err != nil {
		return 0, false, err
	}

	var opts []locator.Option
	if scanCap > 0 {
		opts = append(opts, locator.WithScanCap(scanCap))
	}
	l := locator.New(f, size, sc.Grammar, sc.Anchor, opts...)
	offset, err = l.Locate(inst, bias)
	if err != nil {
		return 0, false, err
	}
	return offset, l.ObservedInversion(), nil
}

// StreamRange returns a pull iterator over the lines from startOffset
// to the first line past end. It never fails to construct; an empty
// range yields an iterator that reports io.EOF immediately.
func StreamRange(f *os.File, startOffset int64, end grammar.Instant, sc Context) (*stream.Streamer, error) {
	size, err := fileSize(f)
	if err != nil {
		return nil, err
	}
	return stream.New(f, size, startOffset, end, sc.Grammar, sc.Anchor), nil
}

func fileSize(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", f.Name(), err)
	}
	return info.Size(), nil
}
