package splitter

import (
	"slices"

	"github.com/ivlev/naiso/internal/analyzer"
)

// Result is the outcome of one split, with the intermediate candidate sets
// kept for diagnostics.
type Result struct {
	Width            int
	Height           int
	MinSectionHeight int
	MaxSectionHeight int

	UniformRegions        []analyzer.Region
	DividerLines          []int
	BackgroundTransitions []int
	ComplexitySplits      []int

	// SplitPoints is strictly increasing, starts at 0 and ends at Height.
	SplitPoints []int

	rows *analyzer.RowAnalyzer
}

// Section is one horizontal slice [Start, End) of the image.
type Section struct {
	Index int
	Start int
	End   int
}

func (s Section) Height() int {
	return s.End - s.Start
}

// NoSplits reports whether no cut other than the image borders was found.
func (r *Result) NoSplits() bool {
	return len(r.SplitPoints) <= 2
}

// Sections pairs consecutive split points.
func (r *Result) Sections() []Section {
	if len(r.SplitPoints) < 2 {
		return nil
	}
	sections := make([]Section, 0, len(r.SplitPoints)-1)
	for i := 0; i+1 < len(r.SplitPoints); i++ {
		sections = append(sections, Section{Index: i + 1, Start: r.SplitPoints[i], End: r.SplitPoints[i+1]})
	}
	return sections
}

// Candidates lists every detected cut candidate with its provenance,
// ordered by row.
func (r *Result) Candidates() []analyzer.CandidatePoint {
	var out []analyzer.CandidatePoint
	for _, reg := range r.UniformRegions {
		out = append(out, analyzer.CandidatePoint{Row: reg.Mid(), Kind: analyzer.KindUniformRegion})
	}
	for _, y := range r.DividerLines {
		out = append(out, analyzer.CandidatePoint{Row: y, Kind: analyzer.KindDividerLine})
	}
	for _, y := range r.BackgroundTransitions {
		out = append(out, analyzer.CandidatePoint{Row: y, Kind: analyzer.KindBackgroundTransition})
	}
	for _, y := range r.ComplexitySplits {
		out = append(out, analyzer.CandidatePoint{Row: y, Kind: analyzer.KindComplexitySplit})
	}
	slices.SortStableFunc(out, func(a, b analyzer.CandidatePoint) int {
		return a.Row - b.Row
	})
	return out
}

// RowColor returns the mean colour of row y as channel values in 0..255.
// Grayscale rows repeat their single value.
func (r *Result) RowColor(y int) [3]float64 {
	if r.rows == nil || y < 0 || y >= r.Height {
		return [3]float64{}
	}
	m := r.rows.RowMeans()[y]
	if len(m) < 3 {
		return [3]float64{m[0], m[0], m[0]}
	}
	return [3]float64{m[0], m[1], m[2]}
}
