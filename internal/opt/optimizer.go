package opt

// Optimizer defines an optimization algorithm interface
type Optimizer interface {
	// Run executes the optimization
	// eval: objective function to minimize
	// lower, upper: parameter bounds
	// dim: dimensionality of parameter space
	// Returns: best parameters and best cost
	Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64)
}

// Recorder wraps an objective function and records every evaluation
// that improves on the best cost seen so far, yielding a monotone
// trajectory of (params, cost) pairs from optimizers that expose no
// per-iteration hook.
type Recorder struct {
	eval    func([]float64) float64
	Params  [][]float64
	Costs   []float64
	best    float64
	hasBest bool
}

// NewRecorder wraps eval for trajectory recording.
func NewRecorder(eval func([]float64) float64) *Recorder {
	return &Recorder{eval: eval}
}

// Eval evaluates the wrapped objective and records improvements.
func (r *Recorder) Eval(params []float64) float64 {
	cost := r.eval(params)
	if !r.hasBest || cost < r.best {
		r.best = cost
		r.hasBest = true
		r.Params = append(r.Params, append([]float64(nil), params...))
		r.Costs = append(r.Costs, cost)
	}
	return cost
}
