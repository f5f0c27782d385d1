package wavenet

import (
	"path/filepath"
	"testing"
)

func TestNewValidatesFilterLength(t *testing.T) {
	for _, n := range []int{0, 1, 3, -2} {
		if _, err := New(n, 0.5); err == nil {
			t.Errorf("New(%d) should fail", n)
		}
	}
	if _, err := New(2, 0.5); err != nil {
		t.Errorf("New(2) failed: %v", err)
	}
}

func TestSetFilterCopies(t *testing.T) {
	w := haarEngine(t, 2)
	coeffs := []float64{0.5, 0.5}
	if err := w.SetFilter(coeffs); err != nil {
		t.Fatalf("SetFilter failed: %v", err)
	}
	coeffs[0] = 99
	if w.Filter()[0] == 99 {
		t.Fatal("SetFilter aliases caller slice")
	}
}

func TestLogStepAndFinalCost(t *testing.T) {
	w := haarEngine(t, 2)
	w.LogStep([]float64{0.1, 0.2}, 1.0)
	w.LogStep([]float64{0.3, 0.4}, 0.5)
	w.LogFinalCost(0.5)

	if got := len(w.FilterLog()); got != 2 {
		t.Errorf("Expected 2 filter entries, got %d", got)
	}
	if got := len(w.CostLog()); got != 3 {
		t.Errorf("Expected 3 cost entries (trailing final), got %d", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "run.000001.snap")

	w := haarEngine(t, 4)
	w.LogStep([]float64{0.1, 0.2, 0.3, 0.4}, 2.0)
	w.LogStep([]float64{0.2, 0.3, 0.4, 0.5}, 1.0)
	w.LogFinalCost(1.0)
	if err := w.SetFilter([]float64{0.2, 0.3, 0.4, 0.5}); err != nil {
		t.Fatalf("SetFilter failed: %v", err)
	}

	if err := w.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if got, want := loaded.Filter(), w.Filter(); len(got) != len(want) {
		t.Fatalf("Filter length mismatch: %d vs %d", len(got), len(want))
	} else {
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("Filter[%d] = %v, want %v", i, got[i], want[i])
			}
		}
	}
	if got := len(loaded.FilterLog()); got != 2 {
		t.Errorf("Expected 2 filter-log entries, got %d", got)
	}
	if got := loaded.CostLog(); len(got) != 3 || got[1] != 1.0 {
		t.Errorf("Cost log not preserved: %v", got)
	}
	if loaded.Lambda() != w.Lambda() {
		t.Errorf("Lambda not preserved: %v vs %v", loaded.Lambda(), w.Lambda())
	}
}

func TestLoadReplacesStateWholesale(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.snap")

	first := haarEngine(t, 2)
	first.LogStep([]float64{0.1, 0.2}, 1.0)
	if err := first.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := haarEngine(t, 4)
	second.LogStep([]float64{1, 2, 3, 4}, 9.0)
	second.LogStep([]float64{1, 2, 3, 4}, 8.0)

	if err := second.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := len(second.Filter()); got != 2 {
		t.Errorf("Filter not replaced, length %d", got)
	}
	if got := len(second.FilterLog()); got != 1 {
		t.Errorf("Filter log not replaced, length %d", got)
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.snap")); err == nil {
		t.Fatal("Expected error for missing snapshot")
	}
}

func TestLoadRejectsInvalidFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.snap")
	w := haarEngine(t, 2)
	w.filter = []float64{1, 2, 3} // bypass validation
	if err := w.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("Expected error for odd filter length")
	}
}
