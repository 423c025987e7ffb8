//go:build !gocv

package analyzer

import "fmt"

func newGocvEdges() (EdgeSource, error) {
	return nil, fmt.Errorf("%w: gocv (build with -tags gocv)", ErrEdgeSourceUnavailable)
}
