package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/domgalati/tfind/pkg/grammar"
	"github.com/domgalati/tfind/pkg/stream"
)

func isoGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	for _, g := range grammar.Builtin() {
		if g.Name == "Datetime (space-separated)" {
			return g
		}
	}
	t.Fatal("missing builtin grammar")
	return nil
}

func TestRenderer_HighlightsTimestampSubstring(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewRenderer(&buf, isoGrammar(t), "cyan", true)
	if err != nil {
		t.Fatal(err)
	}

	line := &stream.Line{Text: "2025-08-08 13:00:00.000 event", Timestamped: true}
	if err := r.Render(line); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "\x1b[36m2025-08-08 13:00:00.000\x1b[0m") {
		t.Errorf("timestamp not wrapped in cyan: %q", out)
	}
	if !strings.HasSuffix(out, " event\n") {
		t.Errorf("message body altered: %q", out)
	}
}

func TestRenderer_ContinuationLinesUntouched(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewRenderer(&buf, isoGrammar(t), "cyan", true)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Render(&stream.Line{Text: "  stack frame", Timestamped: false}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "  stack frame\n" {
		t.Errorf("continuation line altered: %q", got)
	}
}

func TestRenderer_Disabled(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewRenderer(&buf, isoGrammar(t), "cyan", false)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Render(&stream.Line{Text: "2025-08-08 13:00:00.000 event", Timestamped: true}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "2025-08-08 13:00:00.000 event\n" {
		t.Errorf("expected plain output, got %q", got)
	}
}

func TestRenderer_UnknownColor(t *testing.T) {
	if _, err := NewRenderer(&bytes.Buffer{}, isoGrammar(t), "chartreuse", true); err == nil {
		t.Error("expected unknown color to fail")
	}
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorMode
		wantErr bool
	}{
		{"", ColorAuto, false},
		{"auto", ColorAuto, false},
		{"always", ColorAlways, false},
		{"never", ColorNever, false},
		{"sometimes", ColorAuto, true},
	}
	for _, tt := range tests {
		got, err := ParseColorMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColorMode(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseColorMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
