package analyzer

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ErrShapeMismatch is returned when sample data does not match the declared
// dimensions, or when an edge map differs in size from its source buffer.
var ErrShapeMismatch = errors.New("buffer shape mismatch")

// PixelBuffer is an immutable row-major grid of 8-bit samples
// (row, column, channel).
type PixelBuffer struct {
	Height   int
	Width    int
	Channels int
	Pix      []uint8
}

// NewPixelBuffer wraps pix without copying it.
func NewPixelBuffer(height, width, channels int, pix []uint8) (*PixelBuffer, error) {
	if height < 0 || width < 0 {
		return nil, fmt.Errorf("%w: negative size %dx%d", ErrShapeMismatch, width, height)
	}
	if channels < 1 || channels > 4 {
		return nil, fmt.Errorf("%w: unsupported channel count %d", ErrShapeMismatch, channels)
	}
	if len(pix) != height*width*channels {
		return nil, fmt.Errorf("%w: %d samples for %dx%dx%d", ErrShapeMismatch, len(pix), width, height, channels)
	}
	return &PixelBuffer{Height: height, Width: width, Channels: channels, Pix: pix}, nil
}

// FromImage copies img into a buffer. Grayscale images keep one channel,
// opaque images get RGB and everything else non-premultiplied RGBA.
func FromImage(img image.Image) *PixelBuffer {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if gray, ok := img.(*image.Gray); ok {
		pix := make([]uint8, w*h)
		for y := 0; y < h; y++ {
			off := gray.PixOffset(b.Min.X, b.Min.Y+y)
			copy(pix[y*w:(y+1)*w], gray.Pix[off:off+w])
		}
		return &PixelBuffer{Height: h, Width: w, Channels: 1, Pix: pix}
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(nrgba.Pix[y*nrgba.Stride:(y+1)*nrgba.Stride], src.Pix[off:off+w*4])
		}
	} else {
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}

	if !isOpaque(img) {
		return &PixelBuffer{Height: h, Width: w, Channels: 4, Pix: nrgba.Pix}
	}

	pix := make([]uint8, w*h*3)
	for i, j := 0, 0; i < len(nrgba.Pix); i, j = i+4, j+3 {
		pix[j] = nrgba.Pix[i]
		pix[j+1] = nrgba.Pix[i+1]
		pix[j+2] = nrgba.Pix[i+2]
	}
	return &PixelBuffer{Height: h, Width: w, Channels: 3, Pix: pix}
}

// Stride is the number of samples in one row.
func (b *PixelBuffer) Stride() int {
	return b.Width * b.Channels
}

// Row returns the samples of row y. The slice must not be modified.
func (b *PixelBuffer) Row(y int) []uint8 {
	s := b.Stride()
	return b.Pix[y*s : (y+1)*s : (y+1)*s]
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}
