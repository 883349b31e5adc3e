package config

import "os"

// Default values for configuration.
const (
	DefaultSampleLines   = 2000
	DefaultSampleBytes   = 256 << 10
	DefaultThreshold     = 0.6
	DefaultScanCap       = 20
	DefaultSecondsDigits = 10
	DefaultMillisDigits  = 13
	DefaultMicrosDigits  = 16
	DefaultHighlight     = "cyan"
	DefaultColor         = "auto"
)

// Environment variable names.
const (
	EnvHighlight = "TFIND_HIGHLIGHT"
	EnvColor     = "TFIND_COLOR"
)

// DefaultConfig returns a configuration with the conservative defaults.
func DefaultConfig() *Config {
	return &Config{
		Detect: DetectConfig{
			SampleLines: DefaultSampleLines,
			SampleBytes: DefaultSampleBytes,
			Threshold:   DefaultThreshold,
		},
		Search: SearchConfig{
			ScanCap: DefaultScanCap,
		},
		Epoch: EpochConfig{
			SecondsDigits: DefaultSecondsDigits,
			MillisDigits:  DefaultMillisDigits,
			MicrosDigits:  DefaultMicrosDigits,
		},
		Output: OutputConfig{
			Highlight: DefaultHighlight,
			Color:     DefaultColor,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides.
func (c *Config) applyEnvironmentOverrides() {
	if v := os.Getenv(EnvHighlight); v != "" {
		c.Output.Highlight = v
	}
	if v := os.Getenv(EnvColor); v != "" {
		c.Output.Color = v
	}
}
