package analyse

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/asogaard/wavescope/internal/render"
	"github.com/asogaard/wavescope/internal/wavenet"
)

// Frame rendering parameters.
const (
	basisZMax   = 0.40 // display range of basis-function amplitudes
	frameCellPx = 96   // rendered size of one basis tile
	frameMargin = 3    // pixels between tiles
)

// thinKeep and thinStride bound the frame count of long trajectories:
// states beyond the first/last thinKeep are kept only every
// thinStride-th.
const (
	thinKeep   = 100
	thinStride = 4
)

// RenderMovie walks the filter trajectory, synthesizes the basis
// functions of a dim x dim pixel neighborhood (clamped to the signal
// shape) for each kept state, and emits one composed frame per state.
// Frame ordering matches filter-log order and frame indices are dense
// from 0 regardless of thinning, so consumers must not assume a fixed
// stride back to the original filter-log index. Returns the number of
// frames emitted.
func RenderMovie(eng *wavenet.Wavenet, filterLog [][]float64, dim, width, height int, sink render.FrameSink) (int, error) {
	dimCols := dim
	if width < dimCols {
		dimCols = width
	}
	dimRows := dim
	if height < dimRows {
		dimRows = height
	}

	nStates := len(filterLog)
	frame := 0
	for iState, filter := range filterLog {
		if iState > thinKeep && iState < nStates-thinKeep && iState%thinStride > 0 {
			continue
		}
		if err := eng.SetFilter(filter); err != nil {
			return frame, fmt.Errorf("failed to set filter for state %d: %w", iState, err)
		}

		tiles := make([][]*mat.Dense, dimRows)
		for r := 0; r < dimRows; r++ {
			tiles[r] = make([]*mat.Dense, dimCols)
			for c := 0; c < dimCols; c++ {
				basis, err := eng.BasisFunction(width, height, r, c)
				if err != nil {
					return frame, fmt.Errorf("failed to synthesize basis (%d,%d): %w", r, c, err)
				}
				tiles[r][c] = basis
			}
		}

		img := render.ComposeFrame(tiles, basisZMax, frameCellPx, frameMargin)
		if err := sink.Emit(frame, img); err != nil {
			return frame, fmt.Errorf("failed to emit frame %d: %w", frame, err)
		}
		frame++
	}

	slog.Info("Rendered basis movie", "states", nStates, "frames", frame)
	return frame, nil
}
