package analyse

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/asogaard/wavescope/internal/wavenet"
)

// Histogram display range for normalized overlaps.
const (
	normBins = 200
	normMin  = -0.5
	normMax  = 1.5
)

// AuditOrthonormality synthesizes every basis function twice at
// identical coordinates over the full width^2 x height^2 index space
// and histograms the overlap trace(f1 * f2^T). Two syntheses of the
// same coordinate must agree exactly, so the audit is a determinism
// and numerical-stability regression guard on the engine, not a
// mathematical orthonormality proof.
//
// The engine filter must not be mutated while the audit runs; workers
// only read it.
func AuditOrthonormality(eng *wavenet.Wavenet, width, height int) (*Histogram, error) {
	hist := NewHistogram(normBins, normMin, normMax)
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := 0; i < height*height; i++ {
		i := i
		g.Go(func() error {
			local := NewHistogram(normBins, normMin, normMax)
			row := i % height
			for j := 0; j < width*width; j++ {
				col := j / width
				f1, err := eng.BasisFunction(width, height, row, col)
				if err != nil {
					return err
				}
				f2, err := eng.BasisFunction(width, height, row, col)
				if err != nil {
					return err
				}
				local.Fill(overlap(f1, f2))
			}
			mu.Lock()
			hist.Merge(local)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hist, nil
}

// overlap computes trace(f1 * f2^T), the elementwise inner product of
// two equally shaped basis grids.
func overlap(f1, f2 *mat.Dense) float64 {
	rows, cols := f1.Dims()
	var sum float64
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			sum += f1.At(r, c) * f2.At(r, c)
		}
	}
	return sum
}
