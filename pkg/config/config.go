package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the per-user config file consulted when no --config
// flag is given.
const DefaultPath = ".tfind.yaml"

// Load reads and validates a configuration file. An empty path loads
// the per-user default file when it exists, otherwise plain defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return defaultValidated()
		}
		path = filepath.Join(home, DefaultPath)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return defaultValidated()
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func defaultValidated() (*Config, error) {
	cfg := DefaultConfig()
	cfg.applyEnvironmentOverrides()
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks a configuration for errors and compiles the format
// pattern when one is given.
func Validate(cfg *Config) error {
	if cfg.Detect.SampleLines <= 0 {
		return errors.New("detect.sample_lines: must be positive")
	}
	if cfg.Detect.SampleBytes <= 0 {
		return errors.New("detect.sample_bytes: must be positive")
	}
	if cfg.Detect.Threshold <= 0 || cfg.Detect.Threshold > 1 {
		return errors.New("detect.threshold: must be in (0, 1]")
	}
	if cfg.Search.ScanCap <= 0 {
		return errors.New("search.scan_cap: must be positive")
	}

	e := cfg.Epoch
	if e.SecondsDigits <= 0 || e.MillisDigits <= e.SecondsDigits || e.MicrosDigits <= e.MillisDigits {
		return errors.New("epoch: digit thresholds must be positive and strictly ascending")
	}

	if err := validateFormat(&cfg.Format); err != nil {
		return fmt.Errorf("format: %w", err)
	}

	switch cfg.Output.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("output.color: %q is not auto, always, or never", cfg.Output.Color)
	}
	return nil
}

func validateFormat(f *FormatConfig) error {
	if f.Pattern == "" {
		if f.Layout != "" {
			return errors.New("layout requires pattern")
		}
		return nil
	}
	if f.Example != "" {
		return errors.New("pattern and example are mutually exclusive")
	}

	re, err := regexp.Compile(f.Pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return errors.New("pattern must have a capture group for the timestamp")
	}

	if f.Layout == "" {
		return errors.New("pattern requires layout")
	}
	return nil
}
