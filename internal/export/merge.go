package export

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/rs/zerolog"

	"github.com/ivlev/naiso/internal/imaging"
)

const sectionPattern = "*_section_*.jpg"

var sectionSuffix = regexp.MustCompile(`_section_\d+\.jpg$`)

// FindSections returns the section files in dir sorted by name.
func FindSections(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, sectionPattern))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSections, filepath.Join(dir, sectionPattern))
	}
	sort.Strings(files)
	return files, nil
}

// MergedPath derives <base>_merged.jpg next to the first section file.
func MergedPath(firstSection string) string {
	dir := filepath.Dir(firstSection)
	base := sectionSuffix.ReplaceAllString(filepath.Base(firstSection), "")
	return filepath.Join(dir, base+"_merged.jpg")
}

// Merge stacks the images at paths top to bottom and writes the result to
// out. Images of a different width are scaled to the width of the first.
func Merge(ctx context.Context, paths []string, out string, quality int, log zerolog.Logger) (image.Rectangle, error) {
	if len(paths) == 0 {
		return image.Rectangle{}, ErrNoSections
	}

	log.Info().Int("count", len(paths)).Msg("merging images")

	images := make([]image.Image, 0, len(paths))
	widths := map[int]bool{}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return image.Rectangle{}, err
		}
		img, err := decode(p)
		if err != nil {
			return image.Rectangle{}, err
		}
		widths[img.Bounds().Dx()] = true
		images = append(images, img)
	}
	if len(widths) > 1 {
		log.Warn().
			Int("target_width", images[0].Bounds().Dx()).
			Msg("image widths differ, scaling to the first image")
	}

	merged := imaging.StackVertical(images)
	if err := WriteJPEG(out, merged, quality); err != nil {
		return image.Rectangle{}, fmt.Errorf("write merged image: %w", err)
	}

	log.Info().
		Str("output", out).
		Int("width", merged.Bounds().Dx()).
		Int("height", merged.Bounds().Dy()).
		Msg("merge finished")
	return merged.Bounds(), nil
}

// MergeSections joins every section file in dir into <base>_merged.jpg and
// returns its path.
func MergeSections(ctx context.Context, dir string, quality int, log zerolog.Logger) (string, error) {
	files, err := FindSections(dir)
	if err != nil {
		return "", err
	}
	out := MergedPath(files[0])
	if _, err := Merge(ctx, files, out, quality, log); err != nil {
		return "", err
	}
	return out, nil
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
