package analyse

import (
	"path/filepath"
	"testing"

	"github.com/asogaard/wavescope/internal/wavenet"
)

func TestHistogramFillAndClamp(t *testing.T) {
	h := NewHistogram(4, 0, 4)

	h.Fill(0.5)  // bin 0
	h.Fill(3.5)  // bin 3
	h.Fill(-2.0) // clamped into bin 0
	h.Fill(9.0)  // clamped into bin 3
	h.Fill(4.0)  // upper edge, clamped into bin 3

	if h.Entries != 5 {
		t.Fatalf("Entries = %d, want 5", h.Entries)
	}
	if h.Bins[0] != 2 || h.Bins[3] != 3 {
		t.Fatalf("Unexpected bin contents: %v", h.Bins)
	}
}

func TestHistogramMerge(t *testing.T) {
	a := NewHistogram(3, 0, 3)
	b := NewHistogram(3, 0, 3)
	a.Fill(0.5)
	b.Fill(0.5)
	b.Fill(2.5)

	a.Merge(b)
	if a.Entries != 3 || a.Bins[0] != 2 || a.Bins[2] != 1 {
		t.Fatalf("Merge wrong: %+v", a)
	}
}

func TestHistogramSaveJSON(t *testing.T) {
	h := NewHistogram(2, -0.5, 1.5)
	h.Fill(1.0)
	path := filepath.Join(t.TempDir(), "norms.json")
	if err := h.SaveJSON(path); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}
}

func TestAuditOrthonormalityHaar(t *testing.T) {
	// With an orthonormal filter every self-overlap is exactly 1, so
	// the whole histogram lands in the bin containing 1.0.
	eng, err := wavenet.New(2, 0.5)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	const width, height = 4, 4
	hist, err := AuditOrthonormality(eng, width, height)
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}

	wantEntries := width * width * height * height
	if hist.Entries != wantEntries {
		t.Fatalf("Entries = %d, want %d", hist.Entries, wantEntries)
	}

	// All overlaps are 1 up to rounding, which may straddle a bin edge.
	oneBin := int(float64(normBins) * (1.0 - normMin) / (normMax - normMin))
	got := hist.Bins[oneBin-1] + hist.Bins[oneBin]
	if got != wantEntries {
		t.Fatalf("Expected all %d overlaps near bin %d, got %d (bins %v, %v)",
			wantEntries, oneBin, got, hist.Bins[oneBin-1], hist.Bins[oneBin])
	}
}
