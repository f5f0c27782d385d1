package wavenet

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"
)

// Wavenet is the wavelet engine facade: the filter state driving the
// transform plus the training history recorded by the optimizer. The
// loaded state is a single mutable resource; parallel evaluation goes
// through the pure CostAt/evalCosts entry points instead.
type Wavenet struct {
	filter    []float64
	lambda    float64
	filterLog [][]float64
	costLog   []float64
}

// New creates an engine with nfilter coefficients seeded to the Haar
// filter padded with zeros. nfilter must be even and at least 2.
func New(nfilter int, lambda float64) (*Wavenet, error) {
	if nfilter < 2 || nfilter%2 != 0 {
		return nil, fmt.Errorf("filter length must be even and >= 2, got %d", nfilter)
	}
	filter := make([]float64, nfilter)
	filter[0] = 1 / math.Sqrt2
	filter[1] = 1 / math.Sqrt2
	return &Wavenet{filter: filter, lambda: lambda}, nil
}

// SetFilter replaces the active filter coefficients.
func (w *Wavenet) SetFilter(coeffs []float64) error {
	if len(coeffs) < 2 || len(coeffs)%2 != 0 {
		return fmt.Errorf("filter length must be even and >= 2, got %d", len(coeffs))
	}
	w.filter = append([]float64(nil), coeffs...)
	return nil
}

// Filter returns a copy of the active filter coefficients.
func (w *Wavenet) Filter() []float64 {
	return append([]float64(nil), w.filter...)
}

// Lambda returns the regularization weight.
func (w *Wavenet) Lambda() float64 { return w.lambda }

// FilterLog returns the recorded filter-coefficient trajectory, one
// entry per accepted optimization step.
func (w *Wavenet) FilterLog() [][]float64 {
	return append([][]float64(nil), w.filterLog...)
}

// CostLog returns the recorded cost trajectory.
func (w *Wavenet) CostLog() []float64 {
	return append([]float64(nil), w.costLog...)
}

// LogStep records one optimization step: the given filter setting and
// the cost it achieved.
func (w *Wavenet) LogStep(filter []float64, cost float64) {
	w.filterLog = append(w.filterLog, append([]float64(nil), filter...))
	w.costLog = append(w.costLog, cost)
}

// LogFinalCost appends a trailing cost entry without a matching filter
// entry, so a completed run satisfies len(costLog) == len(filterLog)+1.
func (w *Wavenet) LogFinalCost(cost float64) {
	w.costLog = append(w.costLog, cost)
}

// Print logs a summary of the loaded state.
func (w *Wavenet) Print() {
	slog.Info("wavenet state",
		"nfilter", len(w.filter),
		"lambda", w.lambda,
		"steps", len(w.filterLog),
		"costs", len(w.costLog),
	)
}

// snapshotFile is the on-disk snapshot format. The format is owned by
// the engine; consumers treat snapshot files as opaque.
type snapshotFile struct {
	Filter    []float64   `json:"filter"`
	Lambda    float64     `json:"lambda"`
	FilterLog [][]float64 `json:"filterLog"`
	CostLog   []float64   `json:"costLog"`
	SavedAt   time.Time   `json:"savedAt"`
}

// Save persists the engine state to path. Uses temp file + rename so a
// crashed write never leaves a truncated snapshot behind.
func (w *Wavenet) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshotFile{
		Filter:    w.filter,
		Lambda:    w.lambda,
		FilterLog: w.filterLog,
		CostLog:   w.costLog,
		SavedAt:   time.Now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename snapshot: %w", err)
	}

	slog.Debug("Snapshot saved", "path", path)
	return nil
}

// Load replaces the engine state wholesale with the snapshot at path.
func (w *Wavenet) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to deserialize snapshot %s: %w", path, err)
	}
	if len(snap.Filter) < 2 || len(snap.Filter)%2 != 0 {
		return fmt.Errorf("snapshot %s has invalid filter length %d", path, len(snap.Filter))
	}

	w.filter = snap.Filter
	w.lambda = snap.Lambda
	w.filterLog = snap.FilterLog
	w.costLog = snap.CostLog

	slog.Debug("Snapshot loaded", "path", path, "steps", len(w.filterLog))
	return nil
}

// LoadFile loads a snapshot into a fresh engine instance.
func LoadFile(path string) (*Wavenet, error) {
	w := &Wavenet{}
	if err := w.Load(path); err != nil {
		return nil, err
	}
	return w, nil
}
