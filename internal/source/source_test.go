package source

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestImageSourceSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.png")
	writePNG(t, path, 40, 90, color.RGBA{R: 255, A: 255})

	src, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if src.PageCount() != 1 {
		t.Fatalf("page count %d", src.PageCount())
	}
	w, h, err := src.GetPageDimensions(0)
	if err != nil || w != 40 || h != 90 {
		t.Errorf("dimensions %vx%v err=%v", w, h, err)
	}

	img, err := Compose(src, 150)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 90 {
		t.Errorf("composed bounds %v", img.Bounds())
	}
}

func TestImageSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "02.png"), 50, 20, color.RGBA{B: 255, A: 255})
	writePNG(t, filepath.Join(dir, "01.png"), 100, 30, color.RGBA{R: 255, A: 255})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if src.PageCount() != 2 {
		t.Fatalf("page count %d", src.PageCount())
	}

	w, h, err := EstimateSize(src, 150)
	if err != nil {
		t.Fatal(err)
	}
	if w != 100 || h != 70 {
		t.Errorf("estimated %dx%d, want 100x70", w, h)
	}

	img, err := Compose(src, 150)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 70 {
		t.Fatalf("composed bounds %v", img.Bounds())
	}
	// name order puts the red page on top
	if r, _, _, _ := img.At(50, 5).RGBA(); r>>8 != 255 {
		t.Errorf("top page is not red")
	}
}

func TestComposeEmptyDirectory(t *testing.T) {
	src, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Compose(src, 150); err == nil {
		t.Error("expected error for a directory without images")
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error")
	}
}

func TestIsImage(t *testing.T) {
	for name, want := range map[string]bool{
		"a.JPG": true, "b.webp": true, "c.tiff": true, "d.pdf": false, "e": false,
	} {
		if got := IsImage(name); got != want {
			t.Errorf("IsImage(%q) = %v", name, got)
		}
	}
}
