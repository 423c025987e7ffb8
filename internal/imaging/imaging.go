// Package imaging holds the small raster helpers shared by the input and
// output sides of the splitter.
package imaging

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Crop returns rows [y0, y1) of img at full width. The result shares pixels
// with img when the concrete type supports SubImage.
func Crop(img image.Image, y0, y1 int) image.Image {
	b := img.Bounds()
	r := image.Rect(b.Min.X, b.Min.Y+y0, b.Max.X, b.Min.Y+y1).Intersect(b)

	if sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(r)
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

// ScaleToWidth resizes img to the given width keeping the aspect ratio.
// Images already at that width are returned as is.
func ScaleToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() == width || b.Dx() == 0 {
		return img
	}
	height := int(float64(b.Dy())*float64(width)/float64(b.Dx()) + 0.5)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// StackVertical joins images top to bottom. Every image is scaled to the
// width of the first one.
func StackVertical(images []image.Image) *image.RGBA {
	if len(images) == 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}

	width := images[0].Bounds().Dx()
	scaled := make([]image.Image, len(images))
	total := 0
	for i, img := range images {
		scaled[i] = ScaleToWidth(img, width)
		total += scaled[i].Bounds().Dy()
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, total))
	y := 0
	for _, img := range scaled {
		b := img.Bounds()
		r := image.Rect(0, y, width, y+b.Dy())
		draw.Draw(dst, r, img, b.Min, draw.Src)
		y += b.Dy()
	}
	return dst
}

// Invert returns the colour negative of img, keeping alpha.
func Invert(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, color.NRGBA{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B, A: c.A})
		}
	}
	return dst
}
