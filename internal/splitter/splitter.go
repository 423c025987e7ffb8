// Package splitter turns row statistics into the final list of cut rows.
package splitter

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/naiso/internal/analyzer"
	"github.com/ivlev/naiso/internal/config"
)

// Splitter runs candidate detection, merging and max-height enforcement.
type Splitter struct {
	cfg   config.SplitConfig
	edges analyzer.EdgeSource
	log   zerolog.Logger
}

// New validates cfg and returns a Splitter. Section heights left at zero
// are derived per image in Split.
func New(cfg config.SplitConfig, edges analyzer.EdgeSource, log zerolog.Logger) (*Splitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Splitter{cfg: cfg, edges: edges, log: log}, nil
}

// Split computes the cut list for buf.
func (s *Splitter) Split(ctx context.Context, buf *analyzer.PixelBuffer) (*Result, error) {
	cfg, err := s.cfg.Resolve(buf.Width)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("width", buf.Width).
		Int("height", buf.Height).
		Int("min_section_height", cfg.MinSectionHeight).
		Int("max_section_height", cfg.MaxSectionHeight).
		Msg("analysing image")

	rows := analyzer.NewRowAnalyzer(buf, s.edges)
	detector := analyzer.NewSplitPointDetector(rows, cfg)

	res := &Result{
		Width:            buf.Width,
		Height:           buf.Height,
		MinSectionHeight: cfg.MinSectionHeight,
		MaxSectionHeight: cfg.MaxSectionHeight,
		rows:             rows,
	}

	// The three detectors only read the shared signals.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.UniformRegions = detector.FindUniformRegions()
		return gctx.Err()
	})
	g.Go(func() error {
		res.DividerLines = detector.FindDividerLines(cfg.Divider)
		return gctx.Err()
	})
	g.Go(func() error {
		res.BackgroundTransitions = detector.FindBackgroundTransitions(cfg.Transition)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("detect candidates: %w", err)
	}
	s.logCandidates(res)

	points := MergeSplitPoints(res.UniformRegions, res.DividerLines, res.BackgroundTransitions,
		buf.Height, cfg.MinSectionHeight)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	points, inserted, err := ApplyMaxHeight(points, cfg.MaxSectionHeight, cfg.MinSectionHeight, cfg.RangeMargin, detector)
	if err != nil {
		return nil, fmt.Errorf("max height split: %w", err)
	}
	for _, y := range inserted {
		s.log.Debug().Int("row", y).Msg("complexity split")
	}

	res.ComplexitySplits = inserted
	res.SplitPoints = points

	s.log.Info().
		Ints("split_points", points).
		Int("sections", len(res.Sections())).
		Msg("split points decided")

	return res, nil
}

func (s *Splitter) logCandidates(res *Result) {
	s.log.Info().
		Int("uniform_regions", len(res.UniformRegions)).
		Int("divider_lines", len(res.DividerLines)).
		Int("background_transitions", len(res.BackgroundTransitions)).
		Msg("candidates found")

	if s.log.GetLevel() <= zerolog.DebugLevel {
		for i, r := range res.UniformRegions {
			s.log.Debug().Int("n", i+1).Int("start", r.Start).Int("end", r.End).Int("height", r.Height()).Msg("uniform region")
		}
		for i, y := range res.DividerLines {
			s.log.Debug().Int("n", i+1).Int("row", y).Msg("divider line")
		}
		for i, y := range res.BackgroundTransitions {
			s.log.Debug().Int("n", i+1).Int("row", y).Msg("background transition")
		}
	}
}
