package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the settings for one run of the splitter.
type Config struct {
	InputPath    string      `yaml:"input"`
	OutputDir    string      `yaml:"output"`
	ReportPath   string      `yaml:"report"`
	EdgeSource   string      `yaml:"edges"`
	DPI          int         `yaml:"dpi"`
	Workers      int         `yaml:"workers"`
	JPEGQuality  int         `yaml:"jpeg_quality"`
	CheckText    bool        `yaml:"check_text"`
	Languages    []string    `yaml:"languages"`
	Merge        bool        `yaml:"merge"`
	ShowStats    bool        `yaml:"show_stats"`
	BuildVersion string      `yaml:"-"`
	Split        SplitConfig `yaml:"split"`
}

// SplitConfig controls the split-point algorithm. Zero section heights are
// derived from the image width by Resolve.
type SplitConfig struct {
	VarianceThreshold float64 `yaml:"variance_threshold"`
	MinGapHeight      int     `yaml:"min_gap_height"`
	MinSectionHeight  int     `yaml:"min_section_height"`
	MaxSectionHeight  int     `yaml:"max_section_height"`

	Divider    DividerParams    `yaml:"divider"`
	Transition TransitionParams `yaml:"transition"`

	ClusterThreshold int `yaml:"cluster_threshold"`
	RangeMargin      int `yaml:"range_margin"`
	SmoothingWindow  int `yaml:"smoothing_window"`
}

// DividerParams tunes thin divider line detection.
type DividerParams struct {
	LineVarianceThreshold   float64 `yaml:"line_variance_threshold"`
	MarginCheck             int     `yaml:"margin_check"`
	MarginVarianceThreshold float64 `yaml:"margin_variance_threshold"`
	ColorDiffThreshold      float64 `yaml:"color_diff_threshold"`
}

// TransitionParams tunes background colour transition detection.
type TransitionParams struct {
	VarianceThreshold  float64 `yaml:"variance_threshold"`
	MinUniformHeight   int     `yaml:"min_uniform_height"`
	ColorDiffThreshold float64 `yaml:"color_diff_threshold"`
}

// Default returns a run configuration with the stock algorithm settings.
func Default() *Config {
	return &Config{
		EdgeSource:  "sobel",
		DPI:         150,
		Workers:     runtime.NumCPU(),
		JPEGQuality: 95,
		Languages:   []string{"kor", "eng"},
		Split:       DefaultSplit(),
	}
}

// DefaultSplit returns the stock algorithm settings.
func DefaultSplit() SplitConfig {
	return SplitConfig{
		VarianceThreshold: 10.0,
		MinGapHeight:      50,
		Divider: DividerParams{
			LineVarianceThreshold:   3.0,
			MarginCheck:             30,
			MarginVarianceThreshold: 5.0,
			ColorDiffThreshold:      10.0,
		},
		Transition: TransitionParams{
			VarianceThreshold:  5.0,
			MinUniformHeight:   20,
			ColorDiffThreshold: 15.0,
		},
		ClusterThreshold: 5,
		RangeMargin:      50,
		SmoothingWindow:  20,
	}
}

// Load reads a YAML file on top of cfg. Keys missing from the file keep
// their current values.
func Load(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the run settings and the algorithm settings.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("%w: input path is required", ErrInvalidConfig)
	}
	if c.DPI <= 0 {
		return fmt.Errorf("%w: dpi must be positive, got %d", ErrInvalidConfig, c.DPI)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("%w: jpeg quality must be in 1..100, got %d", ErrInvalidConfig, c.JPEGQuality)
	}
	if c.CheckText && len(c.Languages) == 0 {
		return fmt.Errorf("%w: text check needs at least one language", ErrInvalidConfig)
	}
	return c.Split.Validate()
}

// Validate rejects negative thresholds, empty windows and inverted
// section bounds. Zero section heights are accepted as "derive from width".
func (c SplitConfig) Validate() error {
	switch {
	case c.VarianceThreshold < 0:
		return invalid("variance_threshold must be >= 0, got %v", c.VarianceThreshold)
	case c.MinGapHeight < 1:
		return invalid("min_gap_height must be >= 1, got %d", c.MinGapHeight)
	case c.MinSectionHeight < 0:
		return invalid("min_section_height must be >= 0, got %d", c.MinSectionHeight)
	case c.MaxSectionHeight < 0:
		return invalid("max_section_height must be >= 0, got %d", c.MaxSectionHeight)
	case c.MinSectionHeight > 0 && c.MaxSectionHeight > 0 && c.MinSectionHeight >= c.MaxSectionHeight:
		return invalid("min_section_height (%d) must be below max_section_height (%d)",
			c.MinSectionHeight, c.MaxSectionHeight)
	case c.Divider.LineVarianceThreshold < 0:
		return invalid("divider.line_variance_threshold must be >= 0, got %v", c.Divider.LineVarianceThreshold)
	case c.Divider.MarginCheck < 1:
		return invalid("divider.margin_check must be >= 1, got %d", c.Divider.MarginCheck)
	case c.Divider.MarginVarianceThreshold < 0:
		return invalid("divider.margin_variance_threshold must be >= 0, got %v", c.Divider.MarginVarianceThreshold)
	case c.Divider.ColorDiffThreshold < 0:
		return invalid("divider.color_diff_threshold must be >= 0, got %v", c.Divider.ColorDiffThreshold)
	case c.Transition.VarianceThreshold < 0:
		return invalid("transition.variance_threshold must be >= 0, got %v", c.Transition.VarianceThreshold)
	case c.Transition.MinUniformHeight < 1:
		return invalid("transition.min_uniform_height must be >= 1, got %d", c.Transition.MinUniformHeight)
	case c.Transition.ColorDiffThreshold < 0:
		return invalid("transition.color_diff_threshold must be >= 0, got %v", c.Transition.ColorDiffThreshold)
	case c.ClusterThreshold < 0:
		return invalid("cluster_threshold must be >= 0, got %d", c.ClusterThreshold)
	case c.RangeMargin < 0:
		return invalid("range_margin must be >= 0, got %d", c.RangeMargin)
	case c.SmoothingWindow < 1:
		return invalid("smoothing_window must be >= 1, got %d", c.SmoothingWindow)
	}
	return nil
}

// Resolve fills in section heights derived from the image width
// (min = 2/3 width, max = 1.5 width) and validates the result.
func (c SplitConfig) Resolve(width int) (SplitConfig, error) {
	r := c
	if r.MinSectionHeight == 0 {
		r.MinSectionHeight = max(1, width*2/3)
	}
	if r.MaxSectionHeight == 0 {
		r.MaxSectionHeight = max(2, int(float64(width)*1.5))
	}
	if err := r.Validate(); err != nil {
		return r, fmt.Errorf("resolve for width %d: %w", width, err)
	}
	return r, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}
