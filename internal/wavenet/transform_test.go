package wavenet

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// haarEngine returns an engine with the orthonormal Haar filter padded
// to nfilter coefficients.
func haarEngine(t *testing.T, nfilter int) *Wavenet {
	t.Helper()
	w, err := New(nfilter, 0.5)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return w
}

func randomSignal(rng *rand.Rand, rows, cols int) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m.Set(r, c, rng.NormFloat64())
		}
	}
	return m
}

func TestTransformRejectsNonDyadicShape(t *testing.T) {
	w := haarEngine(t, 2)
	if _, err := w.Transform(mat.NewDense(3, 8, nil)); err == nil {
		t.Fatal("Expected error for non-dyadic rows")
	}
	if _, err := w.Transform(mat.NewDense(8, 6, nil)); err == nil {
		t.Fatal("Expected error for non-dyadic cols")
	}
}

func TestTransformRoundTrip(t *testing.T) {
	w := haarEngine(t, 2)
	rng := rand.New(rand.NewSource(7))
	signal := randomSignal(rng, 8, 8)

	coeffs, err := w.Transform(signal)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	recon := inverse2D(coeffs, w.filter, highPass(w.filter))
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if diff := math.Abs(recon.At(r, c) - signal.At(r, c)); diff > 1e-10 {
				t.Fatalf("Round trip mismatch at (%d,%d): %g", r, c, diff)
			}
		}
	}
}

func TestTransformPreservesEnergy(t *testing.T) {
	// An orthonormal transform preserves the Frobenius norm.
	w := haarEngine(t, 2)
	rng := rand.New(rand.NewSource(11))
	signal := randomSignal(rng, 16, 16)

	coeffs, err := w.Transform(signal)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	if diff := math.Abs(mat.Norm(signal, 2) - mat.Norm(coeffs, 2)); diff > 1e-10 {
		t.Fatalf("Energy not preserved: diff %g", diff)
	}
}

func TestBasisFunctionDeterministic(t *testing.T) {
	w := haarEngine(t, 4)

	f1, err := w.BasisFunction(8, 8, 3, 5)
	if err != nil {
		t.Fatalf("BasisFunction failed: %v", err)
	}
	f2, err := w.BasisFunction(8, 8, 3, 5)
	if err != nil {
		t.Fatalf("BasisFunction failed: %v", err)
	}

	if !mat.Equal(f1, f2) {
		t.Fatal("Two syntheses with identical arguments differ")
	}
}

func TestBasisFunctionUnitNorm(t *testing.T) {
	// With an orthonormal filter every basis function has unit energy.
	w := haarEngine(t, 2)

	for _, rc := range [][2]int{{0, 0}, {1, 1}, {2, 5}, {7, 7}} {
		f, err := w.BasisFunction(8, 8, rc[0], rc[1])
		if err != nil {
			t.Fatalf("BasisFunction(%v) failed: %v", rc, err)
		}
		norm := mat.Norm(f, 2)
		if math.Abs(norm-1) > 1e-10 {
			t.Errorf("Basis (%d,%d) has norm %g, want 1", rc[0], rc[1], norm)
		}
	}
}

func TestBasisFunctionBounds(t *testing.T) {
	w := haarEngine(t, 2)
	if _, err := w.BasisFunction(8, 8, 8, 0); err == nil {
		t.Fatal("Expected error for out-of-range row")
	}
	if _, err := w.BasisFunction(8, 8, 0, -1); err == nil {
		t.Fatal("Expected error for negative col")
	}
}
