package source

import (
	"fmt"
	"image"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/ivlev/naiso/internal/imaging"
)

// Source yields the pages that make up one detail image.
type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height float64, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Open picks a PDF or image source for path.
func Open(path string) (Source, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return NewFitzPDFSource(path)
	}
	return NewImageSource(path)
}

// Compose renders every page and stacks them into one tall image, scaling
// later pages to the width of the first.
func Compose(src Source, dpi int) (image.Image, error) {
	n := src.PageCount()
	if n == 0 {
		return nil, fmt.Errorf("source has no pages")
	}
	if n == 1 {
		return src.RenderPage(0, dpi)
	}

	pages := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		img, err := src.RenderPage(i, dpi)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", i, err)
		}
		pages = append(pages, img)
	}
	return imaging.StackVertical(pages), nil
}

// EstimateSize returns the composed width and height in pixels without
// decoding pixel data.
func EstimateSize(src Source, dpi int) (width, height int, err error) {
	for i := 0; i < src.PageCount(); i++ {
		w, h, err := src.GetPageDimensions(i)
		if err != nil {
			return 0, 0, err
		}
		if _, ok := src.(*FitzPDFSource); ok {
			// PDF dimensions are in points
			w, h = w*float64(dpi)/72, h*float64(dpi)/72
		}
		if i == 0 {
			width = int(w)
		}
		if w > 0 {
			height += int(h * float64(width) / w)
		}
	}
	return width, height, nil
}

type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) GetPageDimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	return f.doc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
