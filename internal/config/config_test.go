package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSplitIsValid(t *testing.T) {
	if err := DefaultSplit().Validate(); err != nil {
		t.Fatalf("default split config rejected: %v", err)
	}
}

func TestSplitValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *SplitConfig)
	}{
		{"negative variance threshold", func(c *SplitConfig) { c.VarianceThreshold = -1 }},
		{"zero gap", func(c *SplitConfig) { c.MinGapHeight = 0 }},
		{"negative min height", func(c *SplitConfig) { c.MinSectionHeight = -5 }},
		{"negative max height", func(c *SplitConfig) { c.MaxSectionHeight = -5 }},
		{"min equals max", func(c *SplitConfig) { c.MinSectionHeight, c.MaxSectionHeight = 600, 600 }},
		{"min above max", func(c *SplitConfig) { c.MinSectionHeight, c.MaxSectionHeight = 700, 600 }},
		{"negative line variance", func(c *SplitConfig) { c.Divider.LineVarianceThreshold = -0.1 }},
		{"zero margin check", func(c *SplitConfig) { c.Divider.MarginCheck = 0 }},
		{"negative transition diff", func(c *SplitConfig) { c.Transition.ColorDiffThreshold = -3 }},
		{"zero uniform height", func(c *SplitConfig) { c.Transition.MinUniformHeight = 0 }},
		{"negative cluster threshold", func(c *SplitConfig) { c.ClusterThreshold = -1 }},
		{"zero window", func(c *SplitConfig) { c.SmoothingWindow = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSplit()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name             string
		min, max, width  int
		wantMin, wantMax int
		wantErr          bool
	}{
		{"derived", 0, 0, 900, 600, 1350, false},
		{"explicit", 300, 800, 900, 300, 800, false},
		{"derived max below explicit min", 2000, 0, 900, 0, 0, true},
		{"zero width", 0, 0, 0, 1, 2, false},
		{"one pixel wide", 0, 0, 1, 1, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSplit()
			cfg.MinSectionHeight = tt.min
			cfg.MaxSectionHeight = tt.max

			got, err := cfg.Resolve(tt.width)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got min=%d max=%d", got.MinSectionHeight, got.MaxSectionHeight)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.MinSectionHeight != tt.wantMin || got.MaxSectionHeight != tt.wantMax {
				t.Errorf("got min=%d max=%d, want min=%d max=%d",
					got.MinSectionHeight, got.MaxSectionHeight, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "naiso.yaml")
	data := []byte(`
output: out/sections
workers: 2
split:
  variance_threshold: 4.5
  max_section_height: 1200
  divider:
    margin_check: 12
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := Load(path, cfg); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.OutputDir != "out/sections" {
		t.Errorf("output: got %q", cfg.OutputDir)
	}
	if cfg.Workers != 2 {
		t.Errorf("workers: got %d", cfg.Workers)
	}
	if cfg.Split.VarianceThreshold != 4.5 {
		t.Errorf("variance threshold: got %v", cfg.Split.VarianceThreshold)
	}
	if cfg.Split.MaxSectionHeight != 1200 {
		t.Errorf("max section height: got %d", cfg.Split.MaxSectionHeight)
	}
	if cfg.Split.Divider.MarginCheck != 12 {
		t.Errorf("margin check: got %d", cfg.Split.Divider.MarginCheck)
	}
	// untouched keys keep their defaults
	if cfg.Split.MinGapHeight != 50 || cfg.Split.Divider.LineVarianceThreshold != 3.0 {
		t.Errorf("defaults lost: gap=%d line=%v", cfg.Split.MinGapHeight, cfg.Split.Divider.LineVarianceThreshold)
	}
	if cfg.JPEGQuality != 95 {
		t.Errorf("jpeg quality: got %d", cfg.JPEGQuality)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("missing input should be rejected, got %v", err)
	}

	cfg.InputPath = "detail.jpg"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.JPEGQuality = 0
	if err := cfg.Validate(); err == nil {
		t.Error("quality 0 should be rejected")
	}
}
