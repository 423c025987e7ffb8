// Command gendetail writes a synthetic detail page for trying out naiso.
package main

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/ivlev/naiso/internal/fixture"
)

func main() {
	width := pflag.IntP("width", "w", 860, "page width in px")
	output := pflag.StringP("output", "o", filepath.Join("input", "synthetic_detail.png"), "output PNG path")
	qr := pflag.String("qr", "https://example.com/item/42", "content of the QR block")
	pflag.Parse()

	if err := generate(*width, *output, *qr); err != nil {
		fmt.Fprintf(os.Stderr, "gendetail: %v\n", err)
		os.Exit(1)
	}
}

func generate(width int, output, qr string) error {
	if width <= 0 {
		return fmt.Errorf("width must be positive, got %d", width)
	}

	// scale the stock layout so sections keep their proportions
	blocks := fixture.DefaultPage()
	for i := range blocks {
		if blocks[i].Kind != fixture.Divider {
			blocks[i].Height = blocks[i].Height * width / 300
		}
		if blocks[i].Kind == fixture.QR {
			blocks[i].Text = qr
		}
	}

	img, err := fixture.Render(width, blocks)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return err
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("wrote %s (%dx%d)\n", output, img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}
