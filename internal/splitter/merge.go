package splitter

import (
	"slices"

	"github.com/ivlev/naiso/internal/analyzer"
)

// RangeFinder locates the preferred cut inside [start, end).
type RangeFinder interface {
	FindBestSplitInRange(start, end, margin int) (int, error)
}

// MergeSplitPoints combines the candidate sets into a sorted cut list that
// starts at 0 and ends at height, dropping cuts that would leave a section
// shorter than minHeight.
//
// The filter is greedy: a candidate too close to the last kept cut replaces
// it when it is still far enough from the cut before that. The leading 0 is
// never replaced.
func MergeSplitPoints(regions []analyzer.Region, dividers, transitions []int, height, minHeight int) []int {
	candidates := make([]int, 0, len(regions)+len(dividers)+len(transitions)+2)
	candidates = append(candidates, 0)
	for _, r := range regions {
		candidates = append(candidates, r.Mid())
	}
	candidates = append(candidates, dividers...)
	candidates = append(candidates, transitions...)
	candidates = append(candidates, height)
	candidates = sortUnique(candidates)

	filtered := []int{0}
	for _, y := range candidates[1:] {
		last := filtered[len(filtered)-1]
		switch {
		case y-last >= minHeight:
			filtered = append(filtered, y)
		case len(filtered) >= 2:
			if y-filtered[len(filtered)-2] >= minHeight {
				filtered[len(filtered)-1] = y
			}
		}
		// with only the leading 0 kept, wait for a later candidate
	}

	if filtered[len(filtered)-1] != height {
		filtered = append(filtered, height)
	}
	return filtered
}

// ApplyMaxHeight subdivides every section taller than maxHeight, searching
// for low-complexity cuts with finder. It returns the new cut list and the
// inserted rows in insertion order.
func ApplyMaxHeight(points []int, maxHeight, minHeight, marginCap int, finder RangeFinder) ([]int, []int, error) {
	needsSplit := false
	for i := 0; i+1 < len(points); i++ {
		if points[i+1]-points[i] > maxHeight {
			needsSplit = true
			break
		}
	}
	if !needsSplit {
		return points, nil, nil
	}

	final := []int{points[0]}
	var inserted []int

	for i := 0; i+1 < len(points); i++ {
		sectionStart, sectionEnd := points[i], points[i+1]

		current := sectionStart
		for sectionEnd-current > maxHeight {
			limit := min(current+maxHeight, sectionEnd)
			searchStart := current + minHeight
			searchEnd := min(current+maxHeight, sectionEnd-minHeight)

			best := (current + limit) / 2
			if searchStart < searchEnd {
				margin := min(marginCap, (searchEnd-searchStart)/4)
				found, err := finder.FindBestSplitInRange(searchStart, searchEnd, margin)
				if err != nil {
					return nil, nil, err
				}
				// a finder answer outside the span keeps the midpoint
				if found > current && found < sectionEnd {
					best = found
				}
			}
			best = max(best, current+1)

			final = append(final, best)
			inserted = append(inserted, best)
			current = best
		}

		final = append(final, sectionEnd)
	}

	return sortUnique(final), inserted, nil
}

func sortUnique(points []int) []int {
	slices.Sort(points)
	return slices.Compact(points)
}
