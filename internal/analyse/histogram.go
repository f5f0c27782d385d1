package analyse

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Histogram is a fixed-range binned counter. Out-of-range fills are
// clamped into the edge bins rather than dropped, so the entry count
// always equals the number of fills.
type Histogram struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Bins    []int   `json:"bins"`
	Entries int     `json:"entries"`
}

// NewHistogram creates a histogram with the given bin count over
// [min, max).
func NewHistogram(bins int, min, max float64) *Histogram {
	return &Histogram{Min: min, Max: max, Bins: make([]int, bins)}
}

// Fill adds one value, clamping it into the display range.
func (h *Histogram) Fill(v float64) {
	n := len(h.Bins)
	idx := int(float64(n) * (v - h.Min) / (h.Max - h.Min))
	if idx < 0 {
		idx = 0
	} else if idx >= n {
		idx = n - 1
	}
	h.Bins[idx]++
	h.Entries++
}

// Merge adds the contents of other into h. Both histograms must share
// binning.
func (h *Histogram) Merge(other *Histogram) {
	for i, c := range other.Bins {
		h.Bins[i] += c
	}
	h.Entries += other.Entries
}

// SaveJSON persists the histogram for downstream plotting.
func (h *Histogram) SaveJSON(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize histogram: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write histogram: %w", err)
	}
	return nil
}
