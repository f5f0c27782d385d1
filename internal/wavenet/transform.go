package wavenet

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// isDyadic reports whether n is a positive power of two.
func isDyadic(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// highPass derives the quadrature-mirror high-pass filter from the
// low-pass coefficients: g[k] = (-1)^k * a[N-1-k].
func highPass(lo []float64) []float64 {
	n := len(lo)
	hi := make([]float64, n)
	for k := 0; k < n; k++ {
		hi[k] = lo[n-1-k]
		if k%2 == 1 {
			hi[k] = -hi[k]
		}
	}
	return hi
}

// forward1D computes the full multi-level 1D wavelet pyramid of x using
// circular boundary handling. The output layout is the usual in-place
// ordering: [approx | detail] recursively on the approximation half.
func forward1D(x, lo, hi []float64) []float64 {
	n := len(x)
	buf := make([]float64, n)
	copy(buf, x)

	approx := make([]float64, n/2)
	detail := make([]float64, n/2)

	for m := n; m >= 2; m /= 2 {
		half := m / 2
		for k := 0; k < half; k++ {
			var a, d float64
			for i := range lo {
				v := buf[(2*k+i)%m]
				a += lo[i] * v
				d += hi[i] * v
			}
			approx[k] = a
			detail[k] = d
		}
		copy(buf[:half], approx[:half])
		copy(buf[half:m], detail[:half])
	}
	return buf
}

// inverse1D inverts forward1D. For an orthonormal filter this is the
// exact adjoint of the analysis step at every level.
func inverse1D(c, lo, hi []float64) []float64 {
	n := len(c)
	buf := make([]float64, n)
	copy(buf, c)

	recon := make([]float64, n)

	for m := 2; m <= n; m *= 2 {
		half := m / 2
		for i := 0; i < m; i++ {
			recon[i] = 0
		}
		for k := 0; k < half; k++ {
			a := buf[k]
			d := buf[half+k]
			for i := range lo {
				recon[(2*k+i)%m] += lo[i]*a + hi[i]*d
			}
		}
		copy(buf[:m], recon[:m])
	}
	return buf
}

// forward2D applies the separable 2D wavelet transform: full pyramid on
// every row, then on every column of the row-transformed matrix.
func forward2D(m *mat.Dense, lo, hi []float64) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(rows, cols, nil)

	row := make([]float64, cols)
	for r := 0; r < rows; r++ {
		mat.Row(row, r, m)
		out.SetRow(r, forward1D(row, lo, hi))
	}

	col := make([]float64, rows)
	for c := 0; c < cols; c++ {
		mat.Col(col, c, out)
		out.SetCol(c, forward1D(col, lo, hi))
	}
	return out
}

// inverse2D inverts forward2D (columns first, then rows).
func inverse2D(m *mat.Dense, lo, hi []float64) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(rows, cols, nil)

	col := make([]float64, rows)
	for c := 0; c < cols; c++ {
		mat.Col(col, c, m)
		out.SetCol(c, inverse1D(col, lo, hi))
	}

	row := make([]float64, cols)
	for r := 0; r < rows; r++ {
		mat.Row(row, r, out)
		out.SetRow(r, inverse1D(row, lo, hi))
	}
	return out
}

// Transform computes the 2D wavelet coefficients of signal under the
// current filter. Both signal dimensions must be powers of two.
func (w *Wavenet) Transform(signal *mat.Dense) (*mat.Dense, error) {
	rows, cols := signal.Dims()
	if !isDyadic(rows) || !isDyadic(cols) {
		return nil, fmt.Errorf("signal shape %dx%d is not dyadic", rows, cols)
	}
	return forward2D(signal, w.filter, highPass(w.filter)), nil
}

// BasisFunction synthesizes the effective 2D impulse response of the
// transform for the coefficient at (row, col), for a width x height
// signal shape. The result is deterministic for a fixed filter state.
func (w *Wavenet) BasisFunction(width, height, row, col int) (*mat.Dense, error) {
	if !isDyadic(width) || !isDyadic(height) {
		return nil, fmt.Errorf("basis shape %dx%d is not dyadic", width, height)
	}
	if row < 0 || row >= height || col < 0 || col >= width {
		return nil, fmt.Errorf("basis coordinate (%d,%d) outside %dx%d", row, col, width, height)
	}
	coeffs := mat.NewDense(height, width, nil)
	coeffs.Set(row, col, 1)
	return inverse2D(coeffs, w.filter, highPass(w.filter)), nil
}
