// Package textcheck runs OCR over exported sections and summarises the text
// found in each: whether there is any, and how tall the words are.
package textcheck

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/ivlev/naiso/internal/imaging"
)

const (
	MinTextLength = 3
	MinConfidence = 60.0
	MinWordSize   = 10
)

var ErrUnavailable = errors.New("ocr support not built in (rebuild with -tags ocr)")

// Word is one recognised word with its bounding box in pixels.
type Word struct {
	Text       string  `yaml:"text" json:"text"`
	X          int     `yaml:"x" json:"x"`
	Y          int     `yaml:"y" json:"y"`
	Width      int     `yaml:"width" json:"width"`
	Height     int     `yaml:"height" json:"height"`
	Confidence float64 `yaml:"conf" json:"conf"`
}

// Stats describes the heights of the words that passed the filter.
type Stats struct {
	MinHeight     int     `yaml:"min_height" json:"min_height"`
	MaxHeight     int     `yaml:"max_height" json:"max_height"`
	AvgHeight     float64 `yaml:"avg_height" json:"avg_height"`
	WordCount     int     `yaml:"word_count" json:"word_count"`
	FilteredCount int     `yaml:"filtered_count" json:"filtered_count"`
}

type Analysis struct {
	Filename   string `yaml:"filename" json:"filename"`
	Path       string `yaml:"-" json:"-"`
	HasText    bool   `yaml:"has_text" json:"has_text"`
	TextLength int    `yaml:"text_length" json:"text_length"`
	Text       string `yaml:"text" json:"text"`
	Inverted   bool   `yaml:"inverted,omitempty" json:"inverted,omitempty"`
	Stats      *Stats `yaml:"stats" json:"stats"`
	Words      []Word `yaml:"words" json:"words"`
	Error      string `yaml:"error,omitempty" json:"error,omitempty"`
}

// Recognizer finds words in an image.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]Word, error)
	Close() error
}

type Checker struct {
	rec           Recognizer
	MinConfidence float64
	MinWordSize   int
	log           zerolog.Logger
}

func NewChecker(rec Recognizer, log zerolog.Logger) *Checker {
	return &Checker{
		rec:           rec,
		MinConfidence: MinConfidence,
		MinWordSize:   MinWordSize,
		log:           log,
	}
}

// Analyze recognises img. When the image yields no text the colour
// negative is tried as well (light text on a dark background) and the
// result with more text wins.
func (c *Checker) Analyze(ctx context.Context, img image.Image) (Analysis, error) {
	words, err := c.rec.Recognize(ctx, img)
	if err != nil {
		return Analysis{}, err
	}
	result := c.Filter(words)
	if result.HasText {
		return result, nil
	}

	words, err = c.rec.Recognize(ctx, imaging.Invert(img))
	if err != nil {
		return Analysis{}, fmt.Errorf("inverted: %w", err)
	}
	inverted := c.Filter(words)
	if inverted.TextLength > result.TextLength {
		inverted.Inverted = true
		return inverted, nil
	}
	return result, nil
}

// Filter drops low-confidence and tiny words and computes the statistics.
func (c *Checker) Filter(words []Word) Analysis {
	var kept []Word
	var texts []string
	var heights []int
	for _, w := range words {
		w.Text = strings.TrimSpace(w.Text)
		if w.Text == "" || w.Confidence < 0 {
			continue
		}
		if w.Confidence < c.MinConfidence || w.Width < c.MinWordSize || w.Height < c.MinWordSize {
			continue
		}
		w.Confidence = math.Round(w.Confidence*10) / 10
		kept = append(kept, w)
		texts = append(texts, w.Text)
		heights = append(heights, w.Height)
	}

	text := strings.Join(texts, " ")
	n := TextLength(text)
	a := Analysis{
		HasText:    n >= MinTextLength,
		TextLength: n,
		Text:       text,
		Words:      kept,
	}

	if len(kept) > 0 {
		s := &Stats{MinHeight: heights[0], MaxHeight: heights[0], WordCount: len(kept)}
		sum := 0
		for _, h := range heights {
			s.MinHeight = min(s.MinHeight, h)
			s.MaxHeight = max(s.MaxHeight, h)
			sum += h
		}
		s.AvgHeight = math.Round(float64(sum)/float64(len(heights))*10) / 10
		s.FilteredCount = countValid(words) - len(kept)
		a.Stats = s
	}
	return a
}

func countValid(words []Word) int {
	n := 0
	for _, w := range words {
		if strings.TrimSpace(w.Text) != "" && w.Confidence >= 0 {
			n++
		}
	}
	return n
}

// TextLength counts the runes of s that are not space, punctuation or symbols.
func TextLength(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		n++
	}
	return n
}

// AnalyzeFiles checks every image file in order. A file that cannot be read
// or recognised is recorded with its error instead of failing the batch.
func (c *Checker) AnalyzeFiles(ctx context.Context, paths []string) ([]Analysis, error) {
	results := make([]Analysis, 0, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		a, err := c.analyzeFile(ctx, path)
		if err != nil {
			a = Analysis{Error: err.Error()}
		}
		a.Filename = filepath.Base(path)
		a.Path = path
		results = append(results, a)

		ev := c.log.Info().Int("n", i+1).Str("file", a.Filename).Bool("has_text", a.HasText)
		if a.HasText && a.Stats != nil {
			ev = ev.Int("text_length", a.TextLength).
				Int("words", a.Stats.WordCount).
				Int("min_height", a.Stats.MinHeight).
				Int("max_height", a.Stats.MaxHeight).
				Float64("avg_height", a.Stats.AvgHeight)
		}
		if a.Error != "" {
			ev = ev.Str("error", a.Error)
		}
		ev.Msg("text check")
	}

	for _, a := range results {
		if !a.HasText {
			c.log.Info().Str("file", a.Filename).Msg("no text")
		}
	}
	return results, nil
}

func (c *Checker) analyzeFile(ctx context.Context, path string) (Analysis, error) {
	f, err := os.Open(path)
	if err != nil {
		return Analysis{}, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Analysis{}, fmt.Errorf("decode: %w", err)
	}
	return c.Analyze(ctx, img)
}

// Summary counts sections with and without text.
type Summary struct {
	TotalImages       int `yaml:"total_images" json:"total_images"`
	ImagesWithText    int `yaml:"images_with_text" json:"images_with_text"`
	ImagesWithoutText int `yaml:"images_without_text" json:"images_without_text"`
}

func Summarize(results []Analysis) Summary {
	s := Summary{TotalImages: len(results)}
	for _, r := range results {
		if r.HasText {
			s.ImagesWithText++
		} else {
			s.ImagesWithoutText++
		}
	}
	return s
}
