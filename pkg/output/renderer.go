// Package output renders matched log lines, optionally highlighting the
// timestamp substring.
package output

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/domgalati/tfind/pkg/grammar"
	"github.com/domgalati/tfind/pkg/stream"
)

// ColorMode controls when highlighting is applied.
type ColorMode int

const (
	// ColorAuto highlights only when writing to a terminal and NO_COLOR
	// is unset.
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode maps the CLI words to a ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("invalid color mode %q (want auto, always, or never)", s)
}

var colorsByName = map[string]color.Attribute{
	"cyan":    color.FgCyan,
	"yellow":  color.FgYellow,
	"green":   color.FgGreen,
	"red":     color.FgRed,
	"magenta": color.FgMagenta,
	"blue":    color.FgBlue,
}

// ColorNames lists the accepted highlight color names.
func ColorNames() []string {
	names := make([]string, 0, len(colorsByName))
	for name := range colorsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Renderer writes streamed lines to a writer, wrapping the timestamp
// substring of timestamped lines in ANSI color when enabled. It
// receives the grammar so it can re-find the substring; continuation
// lines pass through untouched.
type Renderer struct {
	w  io.Writer
	g  *grammar.Grammar
	c  *color.Color
	on bool
}

// NewRenderer creates a Renderer. colorName selects the highlight color
// (empty means cyan); an unknown name is an error so typos fail fast
// rather than silently printing plain.
func NewRenderer(w io.Writer, g *grammar.Grammar, colorName string, enabled bool) (*Renderer, error) {
	if colorName == "" {
		colorName = "cyan"
	}
	attr, ok := colorsByName[colorName]
	if !ok {
		return nil, fmt.Errorf("unknown highlight color %q (want one of %v)", colorName, ColorNames())
	}
	c := color.New(attr)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return &Renderer{w: w, g: g, c: c, on: enabled}, nil
}

// Enabled resolves a ColorMode against the destination file.
func Enabled(mode ColorMode, f *os.File) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Render writes one line, highlighting its timestamp when the line has
// one and highlighting is on.
func (r *Renderer) Render(line *stream.Line) error {
	text := line.Text
	if r.on && line.Timestamped {
		if loc := r.g.Pattern.FindStringSubmatchIndex(text); len(loc) >= 4 && loc[2] >= 0 {
			text = text[:loc[2]] + r.c.Sprint(text[loc[2]:loc[3]]) + text[loc[3]:]
		}
	}
	_, err := fmt.Fprintln(r.w, text)
	return err
}
