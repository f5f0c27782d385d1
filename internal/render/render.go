// Package render turns matrices into images: per-cell colormapping
// with a diverging palette, composition of per-pixel basis images into
// movie frames, and a numbered PNG frame sink.
package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"
)

// Diverging palette endpoints: deep red through near-white to deep
// blue, matching the analysis color table.
var (
	paletteLow  = colorful.Color{R: 224.0 / 255.0, G: 0, B: 42.0 / 255.0}
	paletteMid  = colorful.Color{R: 0.98, G: 0.98, B: 0.98}
	paletteHigh = colorful.Color{R: 3.0 / 255.0, G: 29.0 / 255.0, B: 66.0 / 255.0}
)

// colorAt maps t in [0,1] onto the diverging palette.
func colorAt(t float64) colorful.Color {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	if t < 0.5 {
		return paletteLow.BlendLab(paletteMid, t*2).Clamped()
	}
	return paletteMid.BlendLab(paletteHigh, (t-0.5)*2).Clamped()
}

// MatrixToImage renders a matrix with values mapped from [-zmax, zmax]
// onto the diverging palette, one pixel per cell.
func MatrixToImage(m *mat.Dense, zmax float64) *image.NRGBA {
	rows, cols := m.Dims()
	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			t := (m.At(r, c) + zmax) / (2 * zmax)
			img.Set(c, r, colorAt(t))
		}
	}
	return img
}

// ComposeFrame lays out a grid of per-pixel basis images as one frame.
// tiles is indexed [row][col]; every tile is scaled to cellPx pixels
// with margin pixels between cells.
func ComposeFrame(tiles [][]*mat.Dense, zmax float64, cellPx, margin int) *image.NRGBA {
	gridRows := len(tiles)
	gridCols := 0
	if gridRows > 0 {
		gridCols = len(tiles[0])
	}

	width := gridCols*cellPx + (gridCols+1)*margin
	height := gridRows*cellPx + (gridRows+1)*margin
	frame := image.NewNRGBA(image.Rect(0, 0, width, height))

	for i := 0; i < gridRows; i++ {
		for j := 0; j < gridCols; j++ {
			cell := MatrixToImage(tiles[i][j], zmax)
			x0 := margin + j*(cellPx+margin)
			y0 := margin + i*(cellPx+margin)
			dst := image.Rect(x0, y0, x0+cellPx, y0+cellPx)
			draw.NearestNeighbor.Scale(frame, dst, cell, cell.Bounds(), draw.Src, nil)
		}
	}
	return frame
}

// FrameSink consumes composed movie frames in order. Frame indices are
// dense from 0 regardless of any thinning upstream.
type FrameSink interface {
	Emit(index int, frame image.Image) error
}

// PNGSink writes frames as numbered PNG files in a directory.
type PNGSink struct {
	Dir     string
	Pattern string // e.g. "bestBasis_%06d.png"
}

// NewPNGSink creates a sink writing "bestBasis_%06d.png" files in dir.
func NewPNGSink(dir string) *PNGSink {
	return &PNGSink{Dir: dir, Pattern: "bestBasis_%06d.png"}
}

// Emit encodes one frame to its numbered file.
func (s *PNGSink) Emit(index int, frame image.Image) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create frame directory: %w", err)
	}
	path := filepath.Join(s.Dir, fmt.Sprintf(s.Pattern, index))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, frame); err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	return nil
}

// SavePNG writes a single image to path, creating parent directories.
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}
