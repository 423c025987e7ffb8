package engine

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ivlev/naiso/internal/analyzer"
	"github.com/ivlev/naiso/internal/config"
	"github.com/ivlev/naiso/internal/export"
	"github.com/ivlev/naiso/internal/fixture"
	"github.com/ivlev/naiso/internal/report"
	"github.com/ivlev/naiso/internal/source"
	"github.com/ivlev/naiso/internal/textcheck"
)

type staticRecognizer struct{}

func (staticRecognizer) Recognize(ctx context.Context, img image.Image) ([]textcheck.Word, error) {
	return []textcheck.Word{{Text: "Detail", Width: 80, Height: 18, Confidence: 90}}, nil
}

func (staticRecognizer) Close() error { return nil }

func writeFixture(t *testing.T, dir string, blocks []fixture.Block) string {
	t.Helper()
	img, err := fixture.Render(300, blocks)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "detail.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func newProject(t *testing.T, cfg *config.Config) *SplitProject {
	t.Helper()
	src, err := source.Open(cfg.InputPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { src.Close() })
	w := export.NewJPEGExporter(cfg.JPEGQuality, cfg.Workers, zerolog.Nop())
	return NewSplitProject(cfg, src, analyzer.SobelEdges{}, w, zerolog.Nop())
}

func imageHeight(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	return cfg.Height
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	blocks := fixture.DefaultPage()

	cfg := config.Default()
	cfg.InputPath = writeFixture(t, dir, blocks)
	cfg.Workers = 2
	cfg.CheckText = true
	cfg.Merge = true
	cfg.ShowStats = true

	p := newProject(t, cfg)
	p.Recognizer = staticRecognizer{}

	out, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	sections := out.Result.Sections()
	if len(sections) < 3 {
		t.Fatalf("expected at least 3 sections, got %v", out.Result.SplitPoints)
	}
	if len(out.Files) != len(sections) {
		t.Fatalf("%d files for %d sections", len(out.Files), len(sections))
	}
	for i, f := range out.Files {
		if filepath.Dir(f) != filepath.Join(dir, "sections") {
			t.Errorf("file %s outside the default output dir", f)
		}
		if h := imageHeight(t, f); h != sections[i].Height() {
			t.Errorf("%s is %dpx, want %d", filepath.Base(f), h, sections[i].Height())
		}
	}

	if out.Merged == "" || imageHeight(t, out.Merged) != fixture.Height(blocks) {
		t.Errorf("merged image %q does not restore the page height", out.Merged)
	}

	if len(out.Text) != len(out.Files) {
		t.Errorf("text results %d", len(out.Text))
	}
	want := filepath.Join(dir, "sections", "detail_text_analysis.json")
	if out.ReportPath != want {
		t.Errorf("report path %s, want %s", out.ReportPath, want)
	}
	rep, err := report.Read(out.ReportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if rep.Text == nil || rep.Text.ImagesWithText != len(out.Files) {
		t.Errorf("report text summary %+v", rep.Text)
	}
	if rep.Merged != "detail_merged.jpg" {
		t.Errorf("report merged %q", rep.Merged)
	}

	t.Logf("split points: %v", out.Result.SplitPoints)
}

func TestRunNoSplits(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.InputPath = writeFixture(t, dir, []fixture.Block{{Kind: fixture.Solid, Height: 150, Color: fixture.White}})
	cfg.OutputDir = filepath.Join(dir, "out")

	out, err := newProject(t, cfg).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !out.Result.NoSplits() || len(out.Files) != 0 {
		t.Errorf("expected no export, got %v / %v", out.Result.SplitPoints, out.Files)
	}
	if _, err := os.Stat(cfg.OutputDir); !os.IsNotExist(err) {
		t.Errorf("output dir should not be created")
	}
}

func TestRunReportPath(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.InputPath = writeFixture(t, dir, fixture.DefaultPage())
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.ReportPath = filepath.Join(dir, "run.yaml")

	out, err := newProject(t, cfg).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	rep, err := report.Read(cfg.ReportPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Sections) != len(out.Files) || rep.Text != nil {
		t.Errorf("report %+v", rep)
	}
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.InputPath = writeFixture(t, dir, fixture.DefaultPage())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newProject(t, cfg).Run(ctx); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}
