package analyzer

import "math"

// SobelEdges computes the gradient magnitude of the luminance with 3x3
// Sobel kernels. Border pixels are zero and magnitudes saturate at 255.
type SobelEdges struct{}

var (
	sobelX = [3][3]int{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]int{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// Edges implements EdgeSource.
func (SobelEdges) Edges(buf *PixelBuffer) (*PixelBuffer, error) {
	h, w := buf.Height, buf.Width
	gray := luminance(buf)
	out := make([]uint8, h*w)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var sumX, sumY int
			for ky := -1; ky <= 1; ky++ {
				row := (y + ky) * w
				for kx := -1; kx <= 1; kx++ {
					p := int(gray[row+x+kx])
					sumX += p * sobelX[ky+1][kx+1]
					sumY += p * sobelY[ky+1][kx+1]
				}
			}

			magnitude := math.Sqrt(float64(sumX*sumX + sumY*sumY))
			if magnitude > 255 {
				magnitude = 255
			}
			out[y*w+x] = uint8(magnitude)
		}
	}

	return &PixelBuffer{Height: h, Width: w, Channels: 1, Pix: out}, nil
}

// luminance converts buf to one 8-bit channel with Rec. 601 weights.
// Alpha is ignored.
func luminance(buf *PixelBuffer) []uint8 {
	n := buf.Height * buf.Width
	if buf.Channels < 3 {
		gray := make([]uint8, n)
		for i := 0; i < n; i++ {
			gray[i] = buf.Pix[i*buf.Channels]
		}
		return gray
	}

	gray := make([]uint8, n)
	for i := 0; i < n; i++ {
		p := buf.Pix[i*buf.Channels:]
		gray[i] = uint8((299*int(p[0]) + 587*int(p[1]) + 114*int(p[2]) + 500) / 1000)
	}
	return gray
}
