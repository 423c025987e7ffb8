// Package report records the outcome of a split run.
package report

import (
	"path/filepath"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ivlev/naiso/internal/splitter"
	"github.com/ivlev/naiso/internal/textcheck"
)

const Version = "1.0"

type Report struct {
	Version          string      `yaml:"version" json:"version"`
	Build            string      `yaml:"build,omitempty" json:"build,omitempty"`
	GeneratedAt      time.Time   `yaml:"generated_at" json:"generated_at"`
	Input            string      `yaml:"input" json:"input"`
	Width            int         `yaml:"width" json:"width"`
	Height           int         `yaml:"height" json:"height"`
	MinSectionHeight int         `yaml:"min_section_height" json:"min_section_height"`
	MaxSectionHeight int         `yaml:"max_section_height" json:"max_section_height"`
	SplitPoints      []int       `yaml:"split_points" json:"split_points"`
	Candidates       []Candidate `yaml:"candidates" json:"candidates"`
	Sections         []Section   `yaml:"sections" json:"sections"`
	Merged           string      `yaml:"merged,omitempty" json:"merged,omitempty"`
	Text             *Text       `yaml:"text,omitempty" json:"text,omitempty"`
}

type Candidate struct {
	Row  int    `yaml:"row" json:"row"`
	Kind string `yaml:"kind" json:"kind"`
}

// Section is one exported slice with the mean colour of its first and last
// rows as hex.
type Section struct {
	Index       int    `yaml:"index" json:"index"`
	Start       int    `yaml:"start" json:"start"`
	End         int    `yaml:"end" json:"end"`
	Height      int    `yaml:"height" json:"height"`
	File        string `yaml:"file,omitempty" json:"file,omitempty"`
	TopColor    string `yaml:"top_color" json:"top_color"`
	BottomColor string `yaml:"bottom_color" json:"bottom_color"`
}

type Text struct {
	textcheck.Summary `yaml:",inline"`
	Sections          []textcheck.Analysis `yaml:"sections" json:"sections"`
}

// New builds a report from a split result. files holds the exported
// section paths in order and may be shorter than the section list.
func New(input string, res *splitter.Result, files []string) *Report {
	r := &Report{
		Version:          Version,
		GeneratedAt:      time.Now().Truncate(time.Second),
		Input:            input,
		Width:            res.Width,
		Height:           res.Height,
		MinSectionHeight: res.MinSectionHeight,
		MaxSectionHeight: res.MaxSectionHeight,
		SplitPoints:      res.SplitPoints,
	}

	for _, c := range res.Candidates() {
		r.Candidates = append(r.Candidates, Candidate{Row: c.Row, Kind: string(c.Kind)})
	}

	for i, sec := range res.Sections() {
		s := Section{
			Index:       sec.Index,
			Start:       sec.Start,
			End:         sec.End,
			Height:      sec.Height(),
			TopColor:    Hex(res.RowColor(sec.Start)),
			BottomColor: Hex(res.RowColor(sec.End - 1)),
		}
		if i < len(files) {
			s.File = filepath.Base(files[i])
		}
		r.Sections = append(r.Sections, s)
	}
	return r
}

// AttachText adds OCR results and their summary.
func (r *Report) AttachText(results []textcheck.Analysis) {
	r.Text = &Text{Summary: textcheck.Summarize(results), Sections: results}
}

// Hex formats 0..255 channel means as #rrggbb.
func Hex(c [3]float64) string {
	return colorful.Color{R: c[0] / 255, G: c[1] / 255, B: c[2] / 255}.Clamped().Hex()
}
