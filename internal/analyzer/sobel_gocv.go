//go:build gocv

package analyzer

import (
	"fmt"

	"gocv.io/x/gocv"
)

// GocvEdges runs the Sobel pass through OpenCV.
type GocvEdges struct{}

func newGocvEdges() (EdgeSource, error) {
	return GocvEdges{}, nil
}

// Edges implements EdgeSource.
func (GocvEdges) Edges(buf *PixelBuffer) (*PixelBuffer, error) {
	if buf.Height == 0 || buf.Width == 0 {
		return &PixelBuffer{Height: buf.Height, Width: buf.Width, Channels: 1, Pix: []uint8{}}, nil
	}

	var matType gocv.MatType
	var code gocv.ColorConversionCode
	switch buf.Channels {
	case 1:
		matType = gocv.MatTypeCV8UC1
	case 3:
		matType, code = gocv.MatTypeCV8UC3, gocv.ColorRGBToGray
	case 4:
		matType, code = gocv.MatTypeCV8UC4, gocv.ColorRGBAToGray
	default:
		return nil, fmt.Errorf("%w: gocv cannot convert %d channels", ErrShapeMismatch, buf.Channels)
	}

	src, err := gocv.NewMatFromBytes(buf.Height, buf.Width, matType, buf.Pix)
	if err != nil {
		return nil, fmt.Errorf("gocv mat: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	if buf.Channels == 1 {
		src.CopyTo(&gray)
	} else {
		gocv.CvtColor(src, &gray, code)
	}

	gx := gocv.NewMat()
	defer gx.Close()
	gy := gocv.NewMat()
	defer gy.Close()
	gocv.Sobel(gray, &gx, gocv.MatTypeCV32F, 1, 0, 3, 1, 0, gocv.BorderDefault)
	gocv.Sobel(gray, &gy, gocv.MatTypeCV32F, 0, 1, 3, 1, 0, gocv.BorderDefault)

	mag := gocv.NewMat()
	defer mag.Close()
	gocv.Magnitude(gx, gy, &mag)

	out := gocv.NewMat()
	defer out.Close()
	mag.ConvertTo(&out, gocv.MatTypeCV8U)

	pix := make([]uint8, buf.Height*buf.Width)
	copy(pix, out.ToBytes())
	return NewPixelBuffer(buf.Height, buf.Width, 1, pix)
}
