package analyzer

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ivlev/naiso/internal/config"
)

// SplitPointDetector finds candidate cut rows from the signals of a
// RowAnalyzer. All methods are read-only and may run concurrently.
type SplitPointDetector struct {
	analyzer *RowAnalyzer
	cfg      config.SplitConfig
}

// NewSplitPointDetector creates a detector. cfg is expected to be valid.
func NewSplitPointDetector(a *RowAnalyzer, cfg config.SplitConfig) *SplitPointDetector {
	return &SplitPointDetector{analyzer: a, cfg: cfg}
}

// FindUniformRegions returns the maximal runs of rows with variance below
// the threshold that are at least MinGapHeight rows tall.
func (d *SplitPointDetector) FindUniformRegions() []Region {
	variance := d.analyzer.Variance()
	threshold := d.cfg.VarianceThreshold

	var regions []Region
	inRegion := false
	start := 0

	for y, v := range variance {
		uniform := v < threshold
		switch {
		case uniform && !inRegion:
			inRegion = true
			start = y
		case !uniform && inRegion:
			inRegion = false
			if y-start >= d.cfg.MinGapHeight {
				regions = append(regions, Region{Start: start, End: y})
			}
		}
	}

	if inRegion {
		end := len(variance)
		if end-start >= d.cfg.MinGapHeight {
			regions = append(regions, Region{Start: start, End: end})
		}
	}

	return regions
}

// FindDividerLines returns thin near-uniform rows whose colour stands out
// against the uniform bands directly above and below.
func (d *SplitPointDetector) FindDividerLines(p config.DividerParams) []int {
	variance := d.analyzer.Variance()
	means := d.analyzer.RowMeans()
	h := len(variance)
	m := p.MarginCheck

	var dividers []int
	for y := m; y < h-m; y++ {
		if variance[y] > p.LineVarianceThreshold {
			continue
		}

		// the band below starts after the line itself
		if stat.Mean(variance[y-m:y], nil) > p.MarginVarianceThreshold {
			continue
		}
		if stat.Mean(variance[y+1:y+1+m], nil) > p.MarginVarianceThreshold {
			continue
		}

		above := bandLevel(means[y-m : y])
		below := bandLevel(means[y+1 : y+1+m])
		line := stat.Mean(means[y], nil)

		if math.Abs(line-(above+below)/2) > p.ColorDiffThreshold {
			dividers = append(dividers, y)
		}
	}

	return MergeNearbyPoints(dividers, d.cfg.ClusterThreshold)
}

// FindBackgroundTransitions returns rows where two adjacent uniform bands
// have clearly different mean colours.
func (d *SplitPointDetector) FindBackgroundTransitions(p config.TransitionParams) []int {
	variance := d.analyzer.Variance()
	means := d.analyzer.RowMeans()
	h := len(variance)
	n := p.MinUniformHeight

	var transitions []int
	for y := n; y < h-n; y++ {
		if !allBelow(variance[y-n:y], p.VarianceThreshold) || !allBelow(variance[y:y+n], p.VarianceThreshold) {
			continue
		}

		above := bandColor(means[y-n : y])
		below := bandColor(means[y : y+n])
		if floats.Distance(above, below, 2) > p.ColorDiffThreshold {
			transitions = append(transitions, y)
		}
	}

	return MergeNearbyPoints(transitions, d.cfg.ClusterThreshold)
}

// FindBestSplitInRange returns the row of lowest smoothed complexity inside
// (start+margin, end-margin). When that range is empty the midpoint of
// [start, end) is returned. Ties resolve to the first row.
func (d *SplitPointDetector) FindBestSplitInRange(start, end, margin int) (int, error) {
	searchStart := start + margin
	searchEnd := end - margin
	if searchStart >= searchEnd {
		return (start + end) / 2, nil
	}

	complexity, err := d.analyzer.Complexity()
	if err != nil {
		return 0, err
	}
	searchStart = max(searchStart, 0)
	searchEnd = min(searchEnd, len(complexity))
	if searchStart >= searchEnd {
		return (start + end) / 2, nil
	}

	region := complexity[searchStart:searchEnd]
	window := d.cfg.SmoothingWindow
	if len(region) <= window {
		return searchStart + floats.MinIdx(region), nil
	}

	smoothed := make([]float64, len(region)-window)
	for i := range smoothed {
		smoothed[i] = stat.Mean(region[i:i+window], nil)
	}
	return searchStart + floats.MinIdx(smoothed) + window/2, nil
}

// bandLevel is the mean of all samples in a band of rows.
func bandLevel(rows [][]float64) float64 {
	var sum float64
	for _, r := range rows {
		sum += stat.Mean(r, nil)
	}
	return sum / float64(len(rows))
}

// bandColor is the per-channel mean colour of a band of rows.
func bandColor(rows [][]float64) []float64 {
	color := make([]float64, len(rows[0]))
	for _, r := range rows {
		floats.Add(color, r)
	}
	floats.Scale(1/float64(len(rows)), color)
	return color
}

func allBelow(s []float64, threshold float64) bool {
	for _, v := range s {
		if v >= threshold {
			return false
		}
	}
	return true
}
