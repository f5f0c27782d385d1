package wavenet

import (
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// costCeiling replaces non-finite cost evaluations before they are
// stored, so every persisted grid is totally ordered under min/max.
const costCeiling = 1.0e6

// CostMapTriple holds the three cost formulations evaluated over one
// (a1, a2) coefficient grid. All three grids share dimensions.
type CostMapTriple struct {
	Combined *mat.Dense // sparsity + lambda * regularization
	Sparse   *mat.Dense // sparsity term only
	Reg      *mat.Dense // regularization term only
}

// giniSparsity measures how non-sparse a coefficient matrix is as
// 1 - Gini(|coeffs|): 0 for a single spike, 1 for a flat spectrum.
func giniSparsity(coeffs *mat.Dense) float64 {
	rows, cols := coeffs.Dims()
	n := rows * cols
	abs := make([]float64, 0, n)
	var sum float64
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := math.Abs(coeffs.At(r, c))
			abs = append(abs, v)
			sum += v
		}
	}
	if sum == 0 {
		return 1
	}
	sort.Float64s(abs)
	var weighted float64
	for k, v := range abs {
		weighted += float64(k+1) * v
	}
	gini := 2*weighted/(float64(n)*sum) - float64(n+1)/float64(n)
	return 1 - gini
}

// regularization accumulates the squared violations of the filter's
// orthonormality conditions: unit norm and shift orthogonality of the
// low-pass filter, low-pass sum sqrt(2) and high-pass zero mean.
func regularization(filter []float64) float64 {
	n := len(filter)

	var total float64
	for m := 0; m < n/2; m++ {
		var s float64
		for k := 0; k+2*m < n; k++ {
			s += filter[k] * filter[k+2*m]
		}
		if m == 0 {
			s -= 1
		}
		total += s * s
	}

	var dc, alt float64
	for k, a := range filter {
		dc += a
		if k%2 == 0 {
			alt += a
		} else {
			alt -= a
		}
	}
	dc -= math.Sqrt2
	total += dc*dc + alt*alt
	return total
}

// clampFinite maps NaN and infinities to the cost ceiling sentinel.
func clampFinite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return costCeiling
	}
	if v > costCeiling {
		return costCeiling
	}
	return v
}

// evalCosts evaluates the sparsity and regularization terms for an
// arbitrary filter setting against the example set. It is a pure
// function of its arguments and never touches engine state, so it is
// safe to call from parallel workers.
func evalCosts(filter []float64, examples []*mat.Dense) (sparse, reg float64) {
	hi := highPass(filter)
	for _, ex := range examples {
		coeffs := forward2D(ex, filter, hi)
		sparse += giniSparsity(coeffs)
	}
	if len(examples) > 0 {
		sparse /= float64(len(examples))
	}
	return sparse, regularization(filter)
}

// CostSparse returns the mean sparsity cost of the examples under the
// current filter.
func (w *Wavenet) CostSparse(examples []*mat.Dense) float64 {
	sparse, _ := evalCosts(w.filter, examples)
	return clampFinite(sparse)
}

// CostReg returns the regularization cost of the current filter.
func (w *Wavenet) CostReg() float64 {
	return clampFinite(regularization(w.filter))
}

// Cost returns the combined objective: sparsity + lambda * regularization.
func (w *Wavenet) Cost(examples []*mat.Dense) float64 {
	sparse, reg := evalCosts(w.filter, examples)
	return clampFinite(sparse + w.lambda*reg)
}

// CostAt evaluates the combined objective for an arbitrary filter
// setting without mutating the engine.
func (w *Wavenet) CostAt(filter []float64, examples []*mat.Dense) float64 {
	sparse, reg := evalCosts(filter, examples)
	return clampFinite(sparse + w.lambda*reg)
}

// CostMap sweeps the first two filter coefficients over a symmetric
// [-gridRange, +gridRange] grid with gridResolution samples per axis,
// holding all other coefficients at the currently loaded state, and
// returns the three cost grids. Cell (i, j) pins a1 to the axis value
// at i and a2 to the axis value at j. Rows are evaluated in parallel;
// workers share only the read-only examples and base filter.
func (w *Wavenet) CostMap(examples []*mat.Dense, gridRange float64, gridResolution int) *CostMapTriple {
	res := gridResolution
	triple := &CostMapTriple{
		Combined: mat.NewDense(res, res, nil),
		Sparse:   mat.NewDense(res, res, nil),
		Reg:      mat.NewDense(res, res, nil),
	}

	axis := make([]float64, res)
	for i := 0; i < res; i++ {
		if res == 1 {
			axis[i] = 0
			continue
		}
		axis[i] = -gridRange + 2*gridRange*float64(i)/float64(res-1)
	}

	base := w.Filter()
	lambda := w.lambda

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := 0; i < res; i++ {
		i := i
		g.Go(func() error {
			filter := make([]float64, len(base))
			for j := 0; j < res; j++ {
				copy(filter, base)
				filter[0] = axis[i]
				filter[1] = axis[j]
				sparse, reg := evalCosts(filter, examples)
				triple.Sparse.Set(i, j, clampFinite(sparse))
				triple.Reg.Set(i, j, clampFinite(reg))
				triple.Combined.Set(i, j, clampFinite(sparse+lambda*reg))
			}
			return nil
		})
	}
	g.Wait()

	return triple
}
