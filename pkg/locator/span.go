// Package locator finds line boundaries in a log file by byte offset
// and binary-searches them for a target timestamp.
package locator

import (
	"bytes"
	"fmt"
	"io"
)

// chunkSize is the read granularity for newline scans around a probe.
const chunkSize = 4096

// Span is a newline-delimited byte range [Start, End) within the file.
// End is one past the line's terminating newline, or the file size for
// an unterminated final line. Spans never overlap.
type Span struct {
	Start int64
	End   int64
}

// Len returns the span's length in bytes, including the newline.
func (s Span) Len() int64 { return s.End - s.Start }

// ResolveSpan returns the span of the line containing byte offset off,
// scanning backward to the previous newline and forward to the next.
// A newline byte belongs to the line it terminates, so every offset in
// [0, size) resolves to exactly one span. off == size resolves to the
// empty span at end of file.
func ResolveSpan(r io.ReaderAt, size, off int64) (Span, error) {
	if off < 0 || off > size {
		return Span{}, fmt.Errorf("offset %d outside file of %d bytes", off, size)
	}
	if off == size {
		return Span{Start: size, End: size}, nil
	}

	start, err := scanBack(r, off)
	if err != nil {
		return Span{}, err
	}
	end, err := scanForward(r, size, off)
	if err != nil {
		return Span{}, err
	}
	return Span{Start: start, End: end}, nil
}

// scanBack finds the start of the line containing off: one past the
// last newline strictly before off.
func scanBack(r io.ReaderAt, off int64) (int64, error) {
	buf := make([]byte, chunkSize)
	pos := off
	for pos > 0 {
		n := int64(chunkSize)
		if n > pos {
			n = pos
		}
		chunk := buf[:n]
		if _, err := r.ReadAt(chunk, pos-n); err != nil && err != io.EOF {
			return 0, fmt.Errorf("reading backward at %d: %w", pos-n, err)
		}
		if i := bytes.LastIndexByte(chunk, '\n'); i >= 0 {
			return pos - n + int64(i) + 1, nil
		}
		pos -= n
	}
	return 0, nil
}

// scanForward finds one past the newline terminating the line that
// contains off, or size when the final line is unterminated.
func scanForward(r io.ReaderAt, size, off int64) (int64, error) {
	buf := make([]byte, chunkSize)
	pos := off
	for pos < size {
		n := int64(chunkSize)
		if n > size-pos {
			n = size - pos
		}
		chunk := buf[:n]
		if _, err := r.ReadAt(chunk, pos); err != nil && err != io.EOF {
			return 0, fmt.Errorf("reading forward at %d: %w", pos, err)
		}
		if i := bytes.IndexByte(chunk, '\n'); i >= 0 {
			return pos + int64(i) + 1, nil
		}
		pos += n
	}
	return size, nil
}

// readLine reads the full line starting at the line boundary start,
// returning its span and text without the trailing newline.
func readLine(r io.ReaderAt, size, start int64) (Span, string, error) {
	end, err := scanForward(r, size, start)
	if err != nil {
		return Span{}, "", err
	}
	span := Span{Start: start, End: end}
	buf := make([]byte, span.Len())
	if _, err := r.ReadAt(buf, start); err != nil && err != io.EOF {
		return Span{}, "", fmt.Errorf("reading line at %d: %w", start, err)
	}
	return span, string(bytes.TrimRight(buf, "\r\n")), nil
}
