// Package fixture draws synthetic product detail pages: stacked blocks of
// flat background, text-like content, divider lines and QR codes.
package fixture

import (
	"fmt"
	"image"
	"image/color"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
)

type BlockKind int

const (
	Solid BlockKind = iota
	Busy
	Divider
	QR
)

// Block is one horizontal band of the page. Color is the background; for
// Divider blocks it is the line colour drawn in the middle two rows.
type Block struct {
	Kind   BlockKind
	Height int
	Color  color.RGBA
	Text   string
}

var (
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Gray  = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	Navy  = color.RGBA{R: 20, G: 40, B: 120, A: 255}
	Cream = color.RGBA{R: 250, G: 240, B: 220, A: 255}
)

// DefaultPage is a typical detail page layout.
func DefaultPage() []Block {
	return []Block{
		{Kind: Solid, Height: 120, Color: White},
		{Kind: Busy, Height: 250, Color: White},
		{Kind: Solid, Height: 100, Color: White},
		{Kind: Busy, Height: 300, Color: White},
		{Kind: Solid, Height: 60, Color: White},
		{Kind: Divider, Height: 2, Color: Gray},
		{Kind: Solid, Height: 60, Color: White},
		{Kind: Busy, Height: 200, Color: White},
		{Kind: Solid, Height: 150, Color: Navy},
		{Kind: Busy, Height: 180, Color: Cream},
		{Kind: QR, Height: 250, Color: White, Text: "https://example.com/item/42"},
	}
}

// Height sums the block heights.
func Height(blocks []Block) int {
	h := 0
	for _, b := range blocks {
		h += b.Height
	}
	return h
}

// Render draws blocks top to bottom at the given width.
func Render(width int, blocks []Block) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, Height(blocks)))
	y := 0
	for i, b := range blocks {
		r := image.Rect(0, y, width, y+b.Height)
		bg := b.Color
		if b.Kind == Divider {
			bg = White
		}
		draw.Draw(img, r, &image.Uniform{C: bg}, image.Point{}, draw.Src)

		switch b.Kind {
		case Busy:
			drawText(img, r)
		case Divider:
			line := image.Rect(0, r.Min.Y+b.Height/2-1, width, r.Min.Y+b.Height/2+1).Intersect(r)
			draw.Draw(img, line, &image.Uniform{C: b.Color}, image.Point{}, draw.Src)
		case QR:
			if err := drawQR(img, r, b.Text); err != nil {
				return nil, fmt.Errorf("block %d: %w", i, err)
			}
		}
		y += b.Height
	}
	return img, nil
}

// drawText fills r with lines of dark word-like boxes.
func drawText(img *image.RGBA, r image.Rectangle) {
	ink := color.RGBA{R: 30, G: 30, B: 30, A: 255}
	const lineHeight, glyph = 14, 10
	for y := r.Min.Y + 4; y+glyph <= r.Max.Y-4; y += lineHeight {
		line := (y - r.Min.Y) / lineHeight
		for x := r.Min.X + 8 + line%3*4; x+6 <= r.Max.X-8; x += 9 {
			// a gap every few glyphs separates words
			if (x/9+line)%6 == 5 {
				continue
			}
			draw.Draw(img, image.Rect(x, y, x+6, y+glyph), &image.Uniform{C: ink}, image.Point{}, draw.Src)
		}
	}
}

func drawQR(img *image.RGBA, r image.Rectangle, text string) error {
	if text == "" {
		text = "naiso"
	}
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return err
	}
	size := min(r.Dx(), r.Dy()) * 4 / 5
	code := q.Image(size)
	cb := code.Bounds()
	off := image.Pt(r.Min.X+(r.Dx()-cb.Dx())/2, r.Min.Y+(r.Dy()-cb.Dy())/2)
	dst := image.Rectangle{Min: off, Max: off.Add(cb.Size())}.Intersect(r)
	draw.Draw(img, dst, code, cb.Min, draw.Src)
	return nil
}
