// Package stream emits log lines forward from a byte offset until the
// first line whose timestamp exceeds the end boundary.
package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/domgalati/tfind/pkg/grammar"
	"github.com/domgalati/tfind/pkg/locator"
)

// Line is one emitted log line. Continuation lines carry no Instant and
// inherit the inclusion decision of the nearest preceding timestamped
// line.
type Line struct {
	Span        locator.Span
	Text        string // without the trailing newline
	Instant     grammar.Instant
	Timestamped bool
}

// Streamer is a pull-based iterator over the lines of one matched
// range. It reads one line at a time and never buffers more; memory use
// is independent of range and file size. A Streamer is not restartable;
// create a new one to re-scan.
type Streamer struct {
	br     *bufio.Reader
	g      *grammar.Grammar
	anchor grammar.AnchorDate
	end    grammar.Instant

	offset   int64
	done     bool
	prev     grammar.Instant
	havePrev bool
	inverted bool
}

// New creates a Streamer over file bytes [start, size), stopping at the
// first line whose instant is strictly after end.
func New(r io.ReaderAt, size, start int64, end grammar.Instant, g *grammar.Grammar, anchor grammar.AnchorDate) *Streamer {
	length := size - start
	if length < 0 {
		length = 0
	}
	return &Streamer{
		br:     bufio.NewReaderSize(io.NewSectionReader(r, start, length), 64*1024),
		g:      g,
		anchor: anchor,
		end:    end,
		offset: start,
	}
}

// Next returns the next line of the range. It returns io.EOF once the
// range is exhausted, either at end of file or at the first line past
// the end boundary; that line and everything after it are excluded.
func (s *Streamer) Next(ctx context.Context) (*Line, error) {
	if s.done {
		return nil, io.EOF
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	raw, err := s.br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading line at offset %d: %w", s.offset, err)
	}
	if len(raw) == 0 {
		s.done = true
		return nil, io.EOF
	}

	line := &Line{
		Span: locator.Span{Start: s.offset, End: s.offset + int64(len(raw))},
		Text: strings.TrimRight(raw, "\r\n"),
	}
	s.offset = line.Span.End

	if inst, ok := s.g.TryParse(line.Text, s.anchor); ok {
		if inst.After(s.end) {
			s.done = true
			return nil, io.EOF
		}
		if s.havePrev && inst.Compare(s.prev) < 0 {
			s.inverted = true
		}
		s.prev, s.havePrev = inst, true
		line.Instant = inst
		line.Timestamped = true
	}
	return line, nil
}

// ObservedInversion reports whether the emitted lines' timestamps were
// ever out of ascending order.
func (s *Streamer) ObservedInversion() bool { return s.inverted }
