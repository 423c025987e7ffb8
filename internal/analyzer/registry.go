package analyzer

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownEdgeSource     = errors.New("unknown edge source")
	ErrEdgeSourceUnavailable = errors.New("edge source not compiled in")
)

// NewEdgeSource creates an edge filter based on the specified variant
func NewEdgeSource(variant string) (EdgeSource, error) {
	switch variant {
	case "sobel", "":
		return SobelEdges{}, nil
	case "gocv", "opencv":
		return newGocvEdges()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEdgeSource, variant)
	}
}
