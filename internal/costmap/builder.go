// Package costmap builds the three cost grids for a 2D slice of the
// filter-coefficient space, with disk-backed memoization so the
// O(resolution^2) sweep runs at most once per project family.
package costmap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/asogaard/wavescope/internal/wavenet"
)

// filterCountSuffix matches the ".N<k>" filter-count suffix of a
// project identity. Cache names strip it so cost maps are shared
// across filter-count variants of the same generator mode.
var filterCountSuffix = regexp.MustCompile(`\.N\d+`)

const (
	writeAttempts = 3
	writeBackoff  = 100 * time.Millisecond
)

// Builder drives the engine over a dense coefficient grid and caches
// the resulting triple on disk.
type Builder struct {
	Engine   *wavenet.Wavenet
	CacheDir string
	Project  string // e.g. "Run.Gaussian.N4"
}

// CachePaths returns the three cache artifact paths, in the order
// combined, sparse, regularized.
func (b *Builder) CachePaths() [3]string {
	stripped := filterCountSuffix.ReplaceAllString(b.Project, "")
	return [3]string{
		filepath.Join(b.CacheDir, "costMap."+stripped+".mat"),
		filepath.Join(b.CacheDir, "costMapSparse."+stripped+".mat"),
		filepath.Join(b.CacheDir, "costMapReg."+stripped+".mat"),
	}
}

// Build returns the cost-map triple for the given grid, loading it
// from the cache when all three artifacts are present and recomputing
// (and overwriting all three) otherwise. Partial cache hits are
// treated as no cache at all, so the three grids are always from the
// same generation.
func (b *Builder) Build(examples []*mat.Dense, gridRange float64, gridResolution int) (*wavenet.CostMapTriple, error) {
	paths := b.CachePaths()

	if triple, ok := b.loadCached(paths); ok {
		return triple, nil
	}

	slog.Info("Computing cost map",
		"project", b.Project,
		"range", gridRange,
		"resolution", gridResolution,
		"examples", len(examples),
	)
	triple := b.Engine.CostMap(examples, gridRange, gridResolution)

	grids := [3]*mat.Dense{triple.Combined, triple.Sparse, triple.Reg}
	for i, path := range paths {
		if err := saveMatrix(grids[i], path); err != nil {
			return nil, fmt.Errorf("failed to save cost map artifact: %w", err)
		}
	}
	return triple, nil
}

// loadCached loads the triple iff all three artifacts are present and
// readable. Any missing or corrupt artifact invalidates the whole
// cache generation.
func (b *Builder) loadCached(paths [3]string) (*wavenet.CostMapTriple, bool) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return nil, false
		}
	}

	grids := [3]*mat.Dense{}
	for i, path := range paths {
		m, err := loadMatrix(path)
		if err != nil {
			slog.Warn("Cost map cache unreadable, recomputing", "path", path, "error", err)
			return nil, false
		}
		grids[i] = m
	}

	slog.Info("Loaded cost map from cache", "project", b.Project)
	return &wavenet.CostMapTriple{Combined: grids[0], Sparse: grids[1], Reg: grids[2]}, true
}

// saveMatrix writes one grid atomically (temp file + rename), with
// bounded retry and exponential backoff. On failure the partial
// artifact is removed rather than left to be misread as valid.
func saveMatrix(m *mat.Dense, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := m.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to serialize matrix: %w", err)
	}

	var lastErr error
	backoff := writeBackoff
	for attempt := 1; attempt <= writeAttempts; attempt++ {
		tempPath := path + ".tmp"
		if err := os.WriteFile(tempPath, data, 0644); err != nil {
			os.Remove(tempPath)
			lastErr = err
		} else if err := os.Rename(tempPath, path); err != nil {
			os.Remove(tempPath)
			lastErr = err
		} else {
			return nil
		}
		slog.Warn("Cache write failed", "path", path, "attempt", attempt, "error", lastErr)
		time.Sleep(backoff)
		backoff *= 2
	}
	os.Remove(path)
	return fmt.Errorf("failed to write %s after %d attempts: %w", path, writeAttempts, lastErr)
}

// loadMatrix reads one grid back. The binary marshalling round-trips
// bit-exactly, which the cache idempotence contract relies on.
func loadMatrix(path string) (*mat.Dense, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read matrix file: %w", err)
	}
	var m mat.Dense
	if err := m.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("failed to deserialize matrix %s: %w", path, err)
	}
	return &m, nil
}
