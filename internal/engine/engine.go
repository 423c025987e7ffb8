package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/ivlev/naiso/internal/analyzer"
	"github.com/ivlev/naiso/internal/config"
	"github.com/ivlev/naiso/internal/export"
	"github.com/ivlev/naiso/internal/logger"
	"github.com/ivlev/naiso/internal/report"
	"github.com/ivlev/naiso/internal/source"
	"github.com/ivlev/naiso/internal/splitter"
	"github.com/ivlev/naiso/internal/system"
	"github.com/ivlev/naiso/internal/textcheck"
)

// SplitProject runs one input through analysis, export and the optional
// text check, merge and report steps.
type SplitProject struct {
	Config *config.Config
	Source source.Source
	Edges  analyzer.EdgeSource
	Writer export.SectionWriter

	// Recognizer is used for the text check. When nil and the check is
	// enabled, a tesseract recognizer is created for the run.
	Recognizer textcheck.Recognizer

	Log zerolog.Logger
}

// Outcome lists what a run produced.
type Outcome struct {
	Result     *splitter.Result
	Files      []string
	Merged     string
	ReportPath string
	Text       []textcheck.Analysis
}

func NewSplitProject(cfg *config.Config, src source.Source, edges analyzer.EdgeSource, w export.SectionWriter, log zerolog.Logger) *SplitProject {
	return &SplitProject{
		Config: cfg,
		Source: src,
		Edges:  edges,
		Writer: w,
		Log:    log,
	}
}

// OutputDir is the configured output directory, or sections/ next to the
// input.
func (p *SplitProject) OutputDir() string {
	if p.Config.OutputDir != "" {
		return p.Config.OutputDir
	}
	return filepath.Join(filepath.Dir(p.Config.InputPath), "sections")
}

func (p *SplitProject) Run(ctx context.Context) (*Outcome, error) {
	startTime := time.Now()
	log := p.Log

	if p.Source.PageCount() == 0 {
		return nil, fmt.Errorf("source has no pages or images")
	}

	p.checkMemory()

	decodeStart := time.Now()
	img, err := source.Compose(p.Source, p.Config.DPI)
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}
	buf := analyzer.FromImage(img)
	decodeTime := time.Since(decodeStart)

	log.Info().
		Str("input", p.Config.InputPath).
		Int("pages", p.Source.PageCount()).
		Int("width", buf.Width).
		Int("height", buf.Height).
		Msg("input loaded")

	analyzeStart := time.Now()
	sp, err := splitter.New(p.Config.Split, p.Edges, logger.Component(log, "splitter"))
	if err != nil {
		return nil, err
	}
	res, err := sp.Split(ctx, buf)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	analyzeTime := time.Since(analyzeStart)

	out := &Outcome{Result: res}
	if res.NoSplits() {
		log.Warn().Ints("split_points", res.SplitPoints).Msg("no split points found, nothing to export")
		return out, nil
	}

	exportStart := time.Now()
	dir := p.OutputDir()
	base := export.BaseName(p.Config.InputPath)
	out.Files, err = p.Writer.WriteSections(ctx, img, res.Sections(), dir, base)
	if err != nil {
		return nil, fmt.Errorf("export sections: %w", err)
	}
	exportTime := time.Since(exportStart)

	if p.Config.CheckText {
		out.Text, err = p.checkText(ctx, out.Files)
		if err != nil {
			return nil, fmt.Errorf("text check: %w", err)
		}
	}

	if p.Config.Merge {
		out.Merged, err = export.MergeSections(ctx, dir, p.Config.JPEGQuality, logger.Component(log, "merge"))
		if err != nil {
			return nil, fmt.Errorf("merge sections: %w", err)
		}
	}

	if p.Config.ReportPath != "" || p.Config.CheckText {
		out.ReportPath = p.Config.ReportPath
		if out.ReportPath == "" {
			out.ReportPath = report.DefaultPath(dir, base, true)
		}
		rep := report.New(p.Config.InputPath, res, out.Files)
		rep.Build = p.Config.BuildVersion
		if out.Merged != "" {
			rep.Merged = filepath.Base(out.Merged)
		}
		if out.Text != nil {
			rep.AttachText(out.Text)
		}
		if err := report.Write(rep, out.ReportPath); err != nil {
			return nil, fmt.Errorf("write report: %w", err)
		}
		log.Info().Str("path", out.ReportPath).Msg("report saved")
	}

	if p.Config.ShowStats {
		log.Info().
			Str("build", p.Config.BuildVersion).
			Dur("total_ms", time.Since(startTime)).
			Dur("decode_ms", decodeTime).
			Dur("analyze_ms", analyzeTime).
			Dur("export_ms", exportTime).
			Int("sections", len(out.Files)).
			Msg("performance report")
	}

	return out, nil
}

func (p *SplitProject) checkMemory() {
	w, h, err := source.EstimateSize(p.Source, p.Config.DPI)
	if err != nil {
		p.Log.Debug().Err(err).Msg("cannot estimate input size")
		return
	}
	st, err := system.CheckMemory(system.EstimateAnalysisBytes(w, h))
	if err != nil {
		p.Log.Debug().Err(err).Msg("memory check skipped")
		return
	}
	if !st.Sufficient() {
		p.Log.Warn().
			Uint64("required_mib", st.Required>>20).
			Uint64("available_mib", st.Available>>20).
			Msg("image may not fit in available memory")
	}
}

func (p *SplitProject) checkText(ctx context.Context, files []string) ([]textcheck.Analysis, error) {
	rec := p.Recognizer
	if rec == nil {
		var err error
		rec, err = textcheck.NewTesseract(p.Config.Languages)
		if err != nil {
			return nil, err
		}
		defer rec.Close()
	}
	checker := textcheck.NewChecker(rec, logger.Component(p.Log, "textcheck"))
	return checker.AnalyzeFiles(ctx, files)
}
