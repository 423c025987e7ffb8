package analyzer

import (
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	edgeWeight     = 0.7
	varianceWeight = 0.3
)

// RowAnalyzer derives per-row signals from a PixelBuffer. Every signal is
// computed on first use and cached for the lifetime of the analyzer; the
// accessors are safe to call concurrently.
type RowAnalyzer struct {
	buf   *PixelBuffer
	edges EdgeSource

	statsOnce sync.Once
	variance  []float64
	means     [][]float64

	complexityOnce sync.Once
	complexity     []float64
	complexityErr  error
}

// NewRowAnalyzer creates an analyzer over buf. A nil edge source falls back
// to SobelEdges.
func NewRowAnalyzer(buf *PixelBuffer, edges EdgeSource) *RowAnalyzer {
	if edges == nil {
		edges = SobelEdges{}
	}
	return &RowAnalyzer{buf: buf, edges: edges}
}

func (a *RowAnalyzer) Height() int   { return a.buf.Height }
func (a *RowAnalyzer) Width() int    { return a.buf.Width }
func (a *RowAnalyzer) Channels() int { return a.buf.Channels }

// Variance returns, for each row, the mean over channels of the population
// standard deviation of that channel's samples.
func (a *RowAnalyzer) Variance() []float64 {
	a.statsOnce.Do(a.computeRowStats)
	return a.variance
}

// RowMeans returns the per-channel sample mean of each row.
func (a *RowAnalyzer) RowMeans() [][]float64 {
	a.statsOnce.Do(a.computeRowStats)
	return a.means
}

// Complexity returns 0.7*edge_density + 0.3*variance per row, each signal
// normalised by its maximum.
func (a *RowAnalyzer) Complexity() ([]float64, error) {
	a.complexityOnce.Do(func() {
		a.complexity, a.complexityErr = a.computeComplexity()
	})
	return a.complexity, a.complexityErr
}

func (a *RowAnalyzer) computeRowStats() {
	h, w, c := a.buf.Height, a.buf.Width, a.buf.Channels
	a.variance = make([]float64, h)
	a.means = make([][]float64, h)
	for y := range a.means {
		a.means[y] = make([]float64, c)
	}
	if h == 0 || w == 0 {
		return
	}

	// Rows are independent, so disjoint chunks are filled concurrently.
	workers := min(runtime.GOMAXPROCS(0), h)
	chunk := (h + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < h; start += chunk {
		end := min(start+chunk, h)
		g.Go(func() error {
			samples := make([]float64, w)
			for y := start; y < end; y++ {
				a.rowStats(y, samples)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (a *RowAnalyzer) rowStats(y int, samples []float64) {
	row := a.buf.Row(y)
	c := a.buf.Channels

	var sum float64
	for ch := 0; ch < c; ch++ {
		for x := range samples {
			samples[x] = float64(row[x*c+ch])
		}
		mean, std := stat.PopMeanStdDev(samples, nil)
		a.means[y][ch] = mean
		sum += std
	}
	a.variance[y] = sum / float64(c)
}

func (a *RowAnalyzer) computeComplexity() ([]float64, error) {
	h, w := a.buf.Height, a.buf.Width

	edgeMap, err := a.edges.Edges(a.buf)
	if err != nil {
		return nil, fmt.Errorf("edge map: %w", err)
	}
	if edgeMap.Height != h || edgeMap.Width != w {
		return nil, fmt.Errorf("%w: edge map %dx%d, image %dx%d",
			ErrShapeMismatch, edgeMap.Width, edgeMap.Height, w, h)
	}

	density := make([]float64, h)
	if w > 0 {
		n := float64(edgeMap.Stride())
		for y := 0; y < h; y++ {
			var sum float64
			for _, v := range edgeMap.Row(y) {
				sum += float64(v)
			}
			density[y] = sum / n
		}
	}

	edgeNorm := normalize(density)
	colorNorm := normalize(a.Variance())

	complexity := make([]float64, h)
	for y := range complexity {
		complexity[y] = edgeWeight*edgeNorm[y] + varianceWeight*colorNorm[y]
	}
	return complexity, nil
}

// normalize divides s by its maximum. An all-zero (or empty) signal is
// returned unchanged.
func normalize(s []float64) []float64 {
	out := make([]float64, len(s))
	if len(s) == 0 {
		return out
	}
	m := floats.Max(s)
	if m <= 0 {
		copy(out, s)
		return out
	}
	for i, v := range s {
		out[i] = v / m
	}
	return out
}
