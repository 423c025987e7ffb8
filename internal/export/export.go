// Package export writes the cut sections to disk and joins them back.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/naiso/internal/imaging"
	"github.com/ivlev/naiso/internal/splitter"
)

const DefaultQuality = 95

var ErrNoSections = errors.New("no section files found")

// SectionWriter stores the sections of img and returns the written paths in
// section order.
type SectionWriter interface {
	WriteSections(ctx context.Context, img image.Image, sections []splitter.Section, dir, base string) ([]string, error)
}

// JPEGExporter encodes sections as JPEG files named <base>_section_NN.jpg.
type JPEGExporter struct {
	Quality int
	Workers int
	Log     zerolog.Logger
}

func NewJPEGExporter(quality, workers int, log zerolog.Logger) *JPEGExporter {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	if workers < 1 {
		workers = 1
	}
	return &JPEGExporter{Quality: quality, Workers: workers, Log: log}
}

// SectionName returns the file name of the section with 1-based index.
func SectionName(base string, index int) string {
	return fmt.Sprintf("%s_section_%02d.jpg", base, index)
}

// BaseName strips directory and extension from an input path.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func (e *JPEGExporter) WriteSections(ctx context.Context, img image.Image, sections []splitter.Section, dir, base string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	paths := make([]string, len(sections))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Workers)
	for i, sec := range sections {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, SectionName(base, sec.Index))
			if err := e.writeJPEG(path, imaging.Crop(img, sec.Start, sec.End)); err != nil {
				return fmt.Errorf("section %d: %w", sec.Index, err)
			}
			paths[i] = path
			e.Log.Info().
				Str("file", filepath.Base(path)).
				Int("height", sec.Height()).
				Msg("section saved")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func (e *JPEGExporter) writeJPEG(path string, img image.Image) error {
	return WriteJPEG(path, img, e.Quality)
}

// WriteJPEG encodes img to path.
func WriteJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
