package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/ivlev/naiso/internal/config"
)

func TestApplyFlagsOverridesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "naiso.yaml")
	data := "dpi: 200\nsplit:\n  min_gap_height: 80\n  max_section_height: 900\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	fs := pflag.NewFlagSet("naiso", pflag.ContinueOnError)
	o := defineFlags(fs)
	if err := fs.Parse([]string{"-g", "60", "-c", "--merge", "detail.jpg"}); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	if err := config.Load(path, cfg); err != nil {
		t.Fatal(err)
	}
	applyFlags(fs, o, cfg)

	if cfg.Split.MinGapHeight != 60 {
		t.Errorf("flag should win: gap=%d", cfg.Split.MinGapHeight)
	}
	if cfg.Split.MaxSectionHeight != 900 || cfg.DPI != 200 {
		t.Errorf("file values lost: max=%d dpi=%d", cfg.Split.MaxSectionHeight, cfg.DPI)
	}
	if !cfg.CheckText || !cfg.Merge {
		t.Errorf("bool flags not applied: %+v", cfg)
	}
	if fs.Arg(0) != "detail.jpg" {
		t.Errorf("positional input %q", fs.Arg(0))
	}
}
