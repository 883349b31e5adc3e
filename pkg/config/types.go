// Package config provides configuration loading and validation for tfind.
package config

import (
	"github.com/domgalati/tfind/pkg/grammar"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Detect DetectConfig `yaml:"detect"`
	Search SearchConfig `yaml:"search"`
	Epoch  EpochConfig  `yaml:"epoch"`
	Format FormatConfig `yaml:"format"`
	Output OutputConfig `yaml:"output"`
}

// DetectConfig tunes format detection.
type DetectConfig struct {
	// SampleLines caps the number of lines sampled from the file prefix.
	SampleLines int `yaml:"sample_lines"`

	// SampleBytes caps the number of bytes sampled.
	SampleBytes int64 `yaml:"sample_bytes"`

	// Threshold is the minimum fraction of sampled lines a format must
	// parse to be selected.
	Threshold float64 `yaml:"threshold"`
}

// SearchConfig tunes the binary search.
type SearchConfig struct {
	// ScanCap bounds the forward scan for a timestamped line when a
	// probe lands on continuation lines.
	ScanCap int `yaml:"scan_cap"`
}

// EpochConfig sets the digit-count thresholds for reading bare integers
// as Unix timestamps.
type EpochConfig struct {
	SecondsDigits int `yaml:"seconds_digits"`
	MillisDigits  int `yaml:"millis_digits"`
	MicrosDigits  int `yaml:"micros_digits"`
}

// FormatConfig pins the timestamp format instead of auto-detecting.
type FormatConfig struct {
	// Pattern is a regex whose first capture group selects the
	// timestamp portion of a line. Requires Layout.
	Pattern string `yaml:"pattern,omitempty"`

	// Layout is the Go time layout for parsing the captured timestamp.
	Layout string `yaml:"layout,omitempty"`

	// Example is a sample timestamp to derive a format from, an
	// alternative to Pattern/Layout.
	Example string `yaml:"example,omitempty"`
}

// OutputConfig controls rendering of matched lines.
type OutputConfig struct {
	// Highlight is the color used for the timestamp substring.
	Highlight string `yaml:"highlight"`

	// Color is one of auto, always, never.
	Color string `yaml:"color"`
}

// Thresholds returns the epoch digit thresholds as a grammar value.
func (e EpochConfig) Thresholds() grammar.EpochThresholds {
	return grammar.EpochThresholds{Seconds: e.SecondsDigits, Millis: e.MillisDigits, Micros: e.MicrosDigits}
}

// Explicit builds the explicit grammar requested by the format section,
// or nil when the section asks for auto-detection. Validate must have
// run first.
func (f *FormatConfig) Explicit() (*grammar.Grammar, error) {
	switch {
	case f.Pattern != "":
		return grammar.FromPattern(f.Pattern, f.Layout)
	case f.Example != "":
		return grammar.FromExample(f.Example)
	}
	return nil, nil
}
