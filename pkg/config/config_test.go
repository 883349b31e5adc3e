package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/domgalati/tfind/pkg/grammar"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
detect:
  sample_lines: 500
  threshold: 0.8
search:
  scan_cap: 40
output:
  highlight: yellow
  color: never
`
	path := writeTempFile(t, "config.yaml", content)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Detect.SampleLines != 500 {
		t.Errorf("SampleLines = %d, want 500", cfg.Detect.SampleLines)
	}
	if cfg.Detect.Threshold != 0.8 {
		t.Errorf("Threshold = %v, want 0.8", cfg.Detect.Threshold)
	}
	if cfg.Detect.SampleBytes != DefaultSampleBytes {
		t.Errorf("SampleBytes = %d, want default %d", cfg.Detect.SampleBytes, DefaultSampleBytes)
	}
	if cfg.Search.ScanCap != 40 {
		t.Errorf("ScanCap = %d, want 40", cfg.Search.ScanCap)
	}
	if cfg.Output.Highlight != "yellow" {
		t.Errorf("Highlight = %q, want yellow", cfg.Output.Highlight)
	}
	if cfg.Output.Color != "never" {
		t.Errorf("Color = %q, want never", cfg.Output.Color)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing explicit path")
	}
}

func TestLoad_NoPathUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Detect.SampleLines != DefaultSampleLines {
		t.Errorf("SampleLines = %d, want default %d", cfg.Detect.SampleLines, DefaultSampleLines)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTempFile(t, "bad.yaml", "detect: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for invalid YAML")
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvHighlight, "red")
	t.Setenv(EnvColor, "always")
	path := writeTempFile(t, "config.yaml", "output:\n  highlight: green\n  color: never\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output.Highlight != "red" {
		t.Errorf("Highlight = %q, want env override red", cfg.Output.Highlight)
	}
	if cfg.Output.Color != "always" {
		t.Errorf("Color = %q, want env override always", cfg.Output.Color)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}, wantErr: false},
		{name: "zero threshold", mutate: func(c *Config) { c.Detect.Threshold = 0 }, wantErr: true},
		{name: "threshold above one", mutate: func(c *Config) { c.Detect.Threshold = 1.5 }, wantErr: true},
		{name: "zero scan cap", mutate: func(c *Config) { c.Search.ScanCap = 0 }, wantErr: true},
		{name: "epoch digits not ascending", mutate: func(c *Config) { c.Epoch.MillisDigits = 9 }, wantErr: true},
		{name: "bad color mode", mutate: func(c *Config) { c.Output.Color = "sometimes" }, wantErr: true},
		{
			name: "pattern with layout",
			mutate: func(c *Config) {
				c.Format.Pattern = `^(\d{4}-\d{2}-\d{2})`
				c.Format.Layout = "2006-01-02"
			},
			wantErr: false,
		},
		{
			name:    "pattern without layout",
			mutate:  func(c *Config) { c.Format.Pattern = `^(\d{4})` },
			wantErr: true,
		},
		{
			name:    "layout without pattern",
			mutate:  func(c *Config) { c.Format.Layout = "2006-01-02" },
			wantErr: true,
		},
		{
			name: "pattern without capture group",
			mutate: func(c *Config) {
				c.Format.Pattern = `^\d{4}`
				c.Format.Layout = "2006"
			},
			wantErr: true,
		},
		{
			name:    "invalid regex",
			mutate:  func(c *Config) { c.Format.Pattern = `([` },
			wantErr: true,
		},
		{
			name: "pattern and example together",
			mutate: func(c *Config) {
				c.Format.Pattern = `^(\d{4})`
				c.Format.Layout = "2006"
				c.Format.Example = "2025-01-01 00:00:00"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFormatExplicit(t *testing.T) {
	t.Run("empty section means auto-detect", func(t *testing.T) {
		cfg := DefaultConfig()
		g, err := cfg.Format.Explicit()
		if err != nil {
			t.Fatalf("Explicit() error = %v", err)
		}
		if g != nil {
			t.Fatal("Explicit() = non-nil grammar for empty section")
		}
	})

	t.Run("pattern and layout", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Format.Pattern = `^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\]`
		cfg.Format.Layout = "2006-01-02 15:04:05"
		if err := Validate(cfg); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		g, err := cfg.Format.Explicit()
		if err != nil {
			t.Fatalf("Explicit() error = %v", err)
		}
		if g == nil {
			t.Fatal("Explicit() = nil grammar")
		}
		if _, ok := g.TryParse("[2025-08-08 13:23:00] started", grammar.AnchorDate{}); !ok {
			t.Error("explicit grammar did not parse a matching line")
		}
	})

	t.Run("example", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Format.Example = "2025-08-08 13:23:00"
		if err := Validate(cfg); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		g, err := cfg.Format.Explicit()
		if err != nil {
			t.Fatalf("Explicit() error = %v", err)
		}
		if g == nil {
			t.Fatal("Explicit() = nil grammar")
		}
	})
}
