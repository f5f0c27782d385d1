// Package generator produces the 2D example signals the analysis runs
// on. The variant set is closed: three synthetic sources and one
// file-backed source behind a single capability interface.
package generator

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ErrExhausted is returned by Next when a file-backed generator has no
// more recorded frames. Synthetic generators never return it.
var ErrExhausted = errors.New("generator exhausted")

// Mode identifies a signal-source variant.
type Mode int

const (
	ModeUniform Mode = iota
	ModeGaussian
	ModeNeedle
	ModeFile
)

// ParseMode maps a configuration string to a Mode. Unknown modes are a
// configuration error and must abort before any output is produced.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "uniform":
		return ModeUniform, nil
	case "gaussian":
		return ModeGaussian, nil
	case "needle":
		return ModeNeedle, nil
	case "file":
		return ModeFile, nil
	}
	return 0, fmt.Errorf("unknown generator mode %q", s)
}

// String returns the project-identity spelling of the mode.
func (m Mode) String() string {
	switch m {
	case ModeUniform:
		return "Uniform"
	case ModeGaussian:
		return "Gaussian"
	case ModeNeedle:
		return "Needle"
	case ModeFile:
		return "File"
	}
	return "Unknown"
}

// Generator is the capability surface shared by all variants.
type Generator interface {
	// SetShape configures the spatial shape of produced samples.
	// Both dimensions must be powers of two.
	SetShape(rows, cols int) error

	// Shape returns the configured sample shape.
	Shape() (rows, cols int)

	// Next produces the next 2D sample.
	Next() (*mat.Dense, error)

	// Good reports whether the generator is ready to produce samples.
	Good() bool

	// Close releases any underlying resources.
	Close() error
}

// Options carries variant-specific construction parameters.
type Options struct {
	Seed      int64
	InputPath string // file mode only
}

// New constructs the generator for the given mode. File-backed
// generators that fail to open still construct; callers must check
// Good before drawing any sample and abort the run otherwise.
func New(mode Mode, opts Options) (Generator, error) {
	rng := rand.New(rand.NewSource(opts.Seed))
	switch mode {
	case ModeUniform:
		return &synthetic{rng: rng, fill: fillUniform}, nil
	case ModeGaussian:
		return &synthetic{rng: rng, fill: fillGaussian}, nil
	case ModeNeedle:
		return &synthetic{rng: rng, fill: fillNeedle}, nil
	case ModeFile:
		return newFileGenerator(opts.InputPath), nil
	}
	return nil, fmt.Errorf("unknown generator mode %d", mode)
}

func validShape(rows, cols int) error {
	if rows <= 0 || rows&(rows-1) != 0 || cols <= 0 || cols&(cols-1) != 0 {
		return fmt.Errorf("shape %dx%d must be dyadic in both dimensions", rows, cols)
	}
	return nil
}

// synthetic is the shared body of the Uniform, Gaussian and Needle
// variants; they differ only in how a sample is filled. Synthetic
// sources are effectively infinite and never exhaust.
type synthetic struct {
	rng        *rand.Rand
	fill       func(rng *rand.Rand, m *mat.Dense)
	rows, cols int
}

func (g *synthetic) SetShape(rows, cols int) error {
	if err := validShape(rows, cols); err != nil {
		return err
	}
	g.rows, g.cols = rows, cols
	return nil
}

func (g *synthetic) Shape() (int, int) { return g.rows, g.cols }

func (g *synthetic) Next() (*mat.Dense, error) {
	if g.rows == 0 || g.cols == 0 {
		return nil, fmt.Errorf("generator shape not configured")
	}
	m := mat.NewDense(g.rows, g.cols, nil)
	g.fill(g.rng, m)
	return m, nil
}

func (g *synthetic) Good() bool { return true }

func (g *synthetic) Close() error { return nil }

// fillUniform draws i.i.d. uniform noise in [-1, 1].
func fillUniform(rng *rand.Rand, m *mat.Dense) {
	rows, cols := m.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m.Set(r, c, 2*rng.Float64()-1)
		}
	}
}

// fillGaussian draws i.i.d. standard Gaussian noise.
func fillGaussian(rng *rand.Rand, m *mat.Dense) {
	rows, cols := m.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m.Set(r, c, rng.NormFloat64())
		}
	}
}

// needleDensity is the expected fraction of non-zero cells in a needle
// sample.
const needleDensity = 0.05

// fillNeedle places sparse localized unit-magnitude impulses.
func fillNeedle(rng *rand.Rand, m *mat.Dense) {
	rows, cols := m.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if rng.Float64() < needleDensity {
				if rng.Float64() < 0.5 {
					m.Set(r, c, 1)
				} else {
					m.Set(r, c, -1)
				}
			}
		}
	}
}
