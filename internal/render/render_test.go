package render

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMatrixToImageDimensions(t *testing.T) {
	m := mat.NewDense(4, 8, nil)
	img := MatrixToImage(m, 1.0)
	if got := img.Bounds(); got.Dx() != 8 || got.Dy() != 4 {
		t.Fatalf("Image bounds %v, want 8x4", got)
	}
}

func TestMatrixToImagePolarity(t *testing.T) {
	m := mat.NewDense(1, 3, []float64{-1, 0, 1})
	img := MatrixToImage(m, 1.0)

	neg := img.NRGBAAt(0, 0)
	mid := img.NRGBAAt(1, 0)
	pos := img.NRGBAAt(2, 0)

	if neg.R <= neg.B {
		t.Errorf("Negative values should render red-ish, got %v", neg)
	}
	if pos.B <= pos.R {
		t.Errorf("Positive values should render blue-ish, got %v", pos)
	}
	if mid.R < 200 || mid.G < 200 || mid.B < 200 {
		t.Errorf("Zero should render near-white, got %v", mid)
	}
}

func TestComposeFrameLayout(t *testing.T) {
	tiles := make([][]*mat.Dense, 2)
	for i := range tiles {
		tiles[i] = make([]*mat.Dense, 3)
		for j := range tiles[i] {
			tiles[i][j] = mat.NewDense(4, 4, nil)
		}
	}

	const cellPx, margin = 10, 2
	frame := ComposeFrame(tiles, 0.4, cellPx, margin)

	wantW := 3*cellPx + 4*margin
	wantH := 2*cellPx + 3*margin
	if got := frame.Bounds(); got.Dx() != wantW || got.Dy() != wantH {
		t.Fatalf("Frame bounds %v, want %dx%d", got, wantW, wantH)
	}
}

func TestPNGSinkWritesNumberedFrames(t *testing.T) {
	dir := t.TempDir()
	sink := NewPNGSink(filepath.Join(dir, "movie"))

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < 3; i++ {
		if err := sink.Emit(i, img); err != nil {
			t.Fatalf("Emit(%d) failed: %v", i, err)
		}
	}

	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, "movie", fmt.Sprintf("bestBasis_%06d.png", i))
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Frame %d missing: %v", i, err)
		}
	}
}

func TestSavePNGCreatesParents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "img.png")
	if err := SavePNG(path, image.NewNRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Image not written: %v", err)
	}
}
