package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/ivlev/naiso/internal/analyzer"
	"github.com/ivlev/naiso/internal/config"
	"github.com/ivlev/naiso/internal/engine"
	"github.com/ivlev/naiso/internal/export"
	"github.com/ivlev/naiso/internal/logger"
	"github.com/ivlev/naiso/internal/source"
	"github.com/ivlev/naiso/internal/system"
)

// BuildVersion is set with -ldflags "-X main.BuildVersion=...".
var BuildVersion = "dev"

const defaultInputDir = "input"

type options struct {
	configPath  string
	threshold   float64
	gap         int
	minHeight   int
	maxHeight   int
	output      string
	checkText   bool
	languages   []string
	reportPath  string
	merge       bool
	mergeOnly   string
	edges       string
	workers     int
	dpi         int
	quality     int
	stats       bool
	quiet       bool
	debug       bool
	showVersion bool
}

func main() {
	fs := pflag.NewFlagSet("naiso", pflag.ExitOnError)
	opts := defineFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: naiso [options] <image|pdf|dir>\n\nSplits a product detail image into sections.\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n  naiso detail.jpg\n  naiso -m 400 -M 1200 -o out/ detail.jpg\n  naiso --merge-only sections/\n")
	}
	fs.Parse(os.Args[1:])

	if opts.showVersion {
		fmt.Printf("naiso %s\n", BuildVersion)
		return
	}

	level := zerolog.InfoLevel
	switch {
	case opts.debug:
		level = zerolog.DebugLevel
	case opts.quiet:
		level = zerolog.WarnLevel
	}
	log := logger.NewConsole(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, fs, opts, log); err != nil {
		log.Error().Err(err).Msg("naiso failed")
		if errors.Is(err, config.ErrInvalidConfig) {
			fs.Usage()
		}
		os.Exit(1)
	}
}

func defineFlags(fs *pflag.FlagSet) *options {
	d := config.Default()
	o := &options{}

	fs.StringVar(&o.configPath, "config", "", "YAML config file; flags override its values")
	fs.Float64VarP(&o.threshold, "threshold", "t", d.Split.VarianceThreshold, "row variance threshold for uniform regions")
	fs.IntVarP(&o.gap, "gap", "g", d.Split.MinGapHeight, "minimum uniform region height in px")
	fs.IntVarP(&o.minHeight, "min-height", "m", 0, "minimum section height in px (default 2/3 of the width)")
	fs.IntVarP(&o.maxHeight, "max-height", "M", 0, "maximum section height in px (default 1.5x the width)")
	fs.StringVarP(&o.output, "output", "o", "", "output directory (default sections/ next to the input)")
	fs.BoolVarP(&o.checkText, "check-text", "c", false, "run OCR on every section")
	fs.StringSliceVar(&o.languages, "languages", d.Languages, "OCR languages")
	fs.StringVarP(&o.reportPath, "report", "j", "", "write a report (.json or .yaml)")
	fs.BoolVar(&o.merge, "merge", false, "merge the sections back into one image after splitting")
	fs.StringVar(&o.mergeOnly, "merge-only", "", "only merge the *_section_*.jpg files in `DIR`")
	fs.StringVar(&o.edges, "edges", d.EdgeSource, "edge source: sobel or gocv")
	fs.IntVar(&o.workers, "workers", runtime.NumCPU(), "parallel workers for export")
	fs.IntVar(&o.dpi, "dpi", d.DPI, "PDF render resolution")
	fs.IntVar(&o.quality, "quality", d.JPEGQuality, "JPEG quality of exported sections")
	fs.BoolVar(&o.stats, "stats", false, "log a timing report at the end")
	fs.BoolVarP(&o.quiet, "quiet", "q", false, "only log warnings and errors")
	fs.BoolVar(&o.debug, "debug", false, "log every candidate point")
	fs.BoolVarP(&o.showVersion, "version", "v", false, "print the version and exit")
	return o
}

func run(ctx context.Context, fs *pflag.FlagSet, o *options, log zerolog.Logger) error {
	cfg := config.Default()
	cfg.BuildVersion = BuildVersion
	if o.configPath != "" {
		if err := config.Load(o.configPath, cfg); err != nil {
			return err
		}
	}
	applyFlags(fs, o, cfg)

	if o.mergeOnly != "" {
		out, err := export.MergeSections(ctx, o.mergeOnly, cfg.JPEGQuality, logger.Component(log, "merge"))
		if err != nil {
			return err
		}
		log.Info().Str("output", out).Msg("done")
		return nil
	}

	switch {
	case fs.NArg() > 0:
		cfg.InputPath = fs.Arg(0)
	case cfg.InputPath == "":
		latest, err := system.FindLatestInput(defaultInputDir)
		if err != nil {
			return fmt.Errorf("%w: no input given and %v", config.ErrInvalidConfig, err)
		}
		cfg.InputPath = latest
		log.Info().Str("input", latest).Msg("using the newest input file")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	edges, err := analyzer.NewEdgeSource(cfg.EdgeSource)
	if err != nil {
		return err
	}

	src, err := source.Open(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer src.Close()

	w := export.NewJPEGExporter(cfg.JPEGQuality, cfg.Workers, logger.Component(log, "export"))
	project := engine.NewSplitProject(cfg, src, edges, w, log)

	out, err := project.Run(ctx)
	if err != nil {
		return err
	}

	ev := log.Info().Int("sections", len(out.Files))
	if len(out.Files) > 0 {
		ev = ev.Str("output", project.OutputDir())
	}
	if out.Merged != "" {
		ev = ev.Str("merged", out.Merged)
	}
	if out.ReportPath != "" {
		ev = ev.Str("report", out.ReportPath)
	}
	ev.Msg("done")
	return nil
}

// applyFlags copies the explicitly set flags onto cfg, so a config file
// only loses the keys given on the command line.
func applyFlags(fs *pflag.FlagSet, o *options, cfg *config.Config) {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("threshold", func() { cfg.Split.VarianceThreshold = o.threshold })
	set("gap", func() { cfg.Split.MinGapHeight = o.gap })
	set("min-height", func() { cfg.Split.MinSectionHeight = o.minHeight })
	set("max-height", func() { cfg.Split.MaxSectionHeight = o.maxHeight })
	set("output", func() { cfg.OutputDir = o.output })
	set("check-text", func() { cfg.CheckText = o.checkText })
	set("languages", func() { cfg.Languages = o.languages })
	set("report", func() { cfg.ReportPath = o.reportPath })
	set("merge", func() { cfg.Merge = o.merge })
	set("edges", func() { cfg.EdgeSource = o.edges })
	set("workers", func() { cfg.Workers = o.workers })
	set("dpi", func() { cfg.DPI = o.dpi })
	set("quality", func() { cfg.JPEGQuality = o.quality })
	set("stats", func() { cfg.ShowStats = o.stats })
}
