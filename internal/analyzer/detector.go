package analyzer

// Region is a half-open row interval [Start, End).
type Region struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

// Height returns the number of rows in the region.
func (r Region) Height() int {
	return r.End - r.Start
}

// Mid returns the integer midpoint used as a cut candidate.
func (r Region) Mid() int {
	return (r.Start + r.End) / 2
}

// PointKind records why a row was proposed as a cut.
type PointKind string

const (
	KindUniformRegion        PointKind = "uniform-region"
	KindDividerLine          PointKind = "divider-line"
	KindBackgroundTransition PointKind = "background-transition"
	KindComplexitySplit      PointKind = "complexity-split"
)

// CandidatePoint is a proposed cut row with its provenance.
type CandidatePoint struct {
	Row  int       `yaml:"row" json:"row"`
	Kind PointKind `yaml:"kind" json:"kind"`
}

// EdgeSource produces a single-channel edge-magnitude map with the same
// height and width as buf.
type EdgeSource interface {
	Edges(buf *PixelBuffer) (*PixelBuffer, error)
}
