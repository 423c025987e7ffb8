package analyzer

import (
	"reflect"
	"testing"

	"github.com/ivlev/naiso/internal/config"
)

func testConfig() config.SplitConfig {
	return config.DefaultSplit()
}

func TestMergeNearbyPoints(t *testing.T) {
	tests := []struct {
		name      string
		points    []int
		threshold int
		want      []int
	}{
		{"three clusters", []int{1, 2, 3, 50, 51, 100}, 5, []int{2, 50, 100}},
		{"empty", nil, 5, nil},
		{"single", []int{42}, 5, []int{42}},
		{"chained through running end", []int{1, 6, 11, 16}, 5, []int{8}},
		{"gap just over threshold", []int{10, 16}, 5, []int{10, 16}},
		{"zero threshold keeps duplicates together", []int{7, 7, 8}, 0, []int{7, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeNearbyPoints(tt.points, tt.threshold)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindUniformRegions(t *testing.T) {
	// uniform 0-59, noisy 60-99, short uniform 100-129, noisy 130-199,
	// uniform 200 to the bottom
	buf := fillRows(40, 280, func(x, y int) [3]uint8 {
		switch {
		case y < 60, y >= 100 && y < 130, y >= 200:
			return solid(240)
		default:
			return stripes(x)
		}
	})

	d := NewSplitPointDetector(NewRowAnalyzer(buf, nil), testConfig())
	regions := d.FindUniformRegions()

	want := []Region{{Start: 0, End: 60}, {Start: 200, End: 280}}
	if !reflect.DeepEqual(regions, want) {
		t.Fatalf("got %v, want %v", regions, want)
	}
	for i, r := range regions {
		if r.Height() < testConfig().MinGapHeight {
			t.Errorf("region %d shorter than min gap: %v", i, r)
		}
		if i > 0 && r.Start < regions[i-1].End {
			t.Errorf("regions overlap: %v %v", regions[i-1], r)
		}
	}
}

func TestFindDividerLines(t *testing.T) {
	tests := []struct {
		name  string
		lines []int
		want  []int
	}{
		{"one pixel line", []int{100}, []int{100}},
		{"three pixel line", []int{100, 101, 102}, []int{101}},
		{"two lines", []int{60, 140}, []int{60, 140}},
		{"line too close to the top", []int{10}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := fillRows(30, 200, func(x, y int) [3]uint8 {
				for _, l := range tt.lines {
					if y == l {
						return solid(128)
					}
				}
				return solid(255)
			})

			d := NewSplitPointDetector(NewRowAnalyzer(buf, nil), testConfig())
			got := d.FindDividerLines(testConfig().Divider)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindDividerLinesNeedsQuietMargins(t *testing.T) {
	// a grey line between two striped blocks is not a divider
	buf := fillRows(30, 200, func(x, y int) [3]uint8 {
		if y == 100 {
			return solid(128)
		}
		return stripes(x)
	})

	d := NewSplitPointDetector(NewRowAnalyzer(buf, nil), testConfig())
	if got := d.FindDividerLines(testConfig().Divider); len(got) != 0 {
		t.Errorf("expected no dividers, got %v", got)
	}
}

func TestFindBackgroundTransitions(t *testing.T) {
	buf := fillRows(20, 200, func(x, y int) [3]uint8 {
		if y < 100 {
			return solid(255)
		}
		return [3]uint8{20, 40, 200}
	})

	d := NewSplitPointDetector(NewRowAnalyzer(buf, nil), testConfig())
	got := d.FindBackgroundTransitions(testConfig().Transition)
	if !reflect.DeepEqual(got, []int{100}) {
		t.Errorf("got %v, want [100]", got)
	}
}

func TestFindBackgroundTransitionsIgnoresSimilarColours(t *testing.T) {
	buf := fillRows(20, 200, func(x, y int) [3]uint8 {
		if y < 100 {
			return solid(250)
		}
		return solid(244)
	})

	d := NewSplitPointDetector(NewRowAnalyzer(buf, nil), testConfig())
	if got := d.FindBackgroundTransitions(testConfig().Transition); len(got) != 0 {
		t.Errorf("expected no transitions, got %v", got)
	}
}

// dipDetector returns a detector over a flat image whose edge map is 200
// everywhere except the rows in [dipStart, dipEnd).
func dipDetector(h, dipStart, dipEnd int) *SplitPointDetector {
	values := make([]uint8, h)
	for y := range values {
		if y < dipStart || y >= dipEnd {
			values[y] = 200
		}
	}
	buf := fillRows(8, h, func(x, y int) [3]uint8 { return solid(255) })
	return NewSplitPointDetector(NewRowAnalyzer(buf, &rowEdges{values: values}), testConfig())
}

func TestFindBestSplitInRange(t *testing.T) {
	tests := []struct {
		name               string
		dipStart, dipEnd   int
		start, end, margin int
		want               int
	}{
		{"smoothed minimum", 300, 340, 0, 600, 50, 310},
		{"flat signal picks first window", 0, 0, 0, 600, 50, 60},
		{"short range uses raw minimum", 58, 59, 0, 115, 50, 58},
		{"margin swallows range", 0, 0, 100, 180, 50, 140},
		{"inverted range", 0, 0, 300, 200, 0, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dipDetector(600, tt.dipStart, tt.dipEnd)
			got, err := d.FindBestSplitInRange(tt.start, tt.end, tt.margin)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
			if tt.start < tt.end && (got < tt.start || got >= tt.end) {
				t.Errorf("split %d outside [%d, %d)", got, tt.start, tt.end)
			}
		})
	}
}
