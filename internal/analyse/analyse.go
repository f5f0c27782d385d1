// Package analyse orchestrates the inspection of a wavelet-filter
// training run family: select a generator, draw example signals, scan
// the persisted snapshots for the best run, build or load the cost
// map, audit basis-function synthesis and render the basis movie.
package analyse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/asogaard/wavescope/internal/costmap"
	"github.com/asogaard/wavescope/internal/generator"
	"github.com/asogaard/wavescope/internal/render"
	"github.com/asogaard/wavescope/internal/snapshot"
	"github.com/asogaard/wavescope/internal/wavenet"
)

// signalZMax is the display range used for example-signal images.
const signalZMax = 3.2

// RunSummary records the outcome of the snapshot scan. Derived once,
// immutable afterwards.
type RunSummary struct {
	BestRun  int     `json:"bestRun"`
	BestCost float64 `json:"bestCost"`
}

// Run executes the full analysis. Construction-time failures (unknown
// mode, unready file generator, bad snapshot pattern) abort before any
// output is produced; per-cell numeric anomalies are clamped locally
// and never abort the sweep.
func Run(cfg Config) error {
	mode, err := generator.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}
	project, err := cfg.Project()
	if err != nil {
		return err
	}
	runDir, err := cfg.RunDir()
	if err != nil {
		return err
	}
	pattern, err := cfg.SnapshotPattern()
	if err != nil {
		return err
	}
	seq, err := snapshot.NewSequence(pattern)
	if err != nil {
		return err
	}

	gen, err := generator.New(mode, generator.Options{Seed: cfg.Seed, InputPath: cfg.InputPath})
	if err != nil {
		return err
	}
	if err := gen.SetShape(cfg.ShapeRows, cfg.ShapeCols); err != nil {
		return err
	}
	if !gen.Good() {
		return fmt.Errorf("generator %s is not ready", mode)
	}

	slog.Info("Starting analysis", "project", project, "mode", mode.String(), "runs", cfg.Runs)

	// Example signals.
	examples, err := drawExamples(gen, cfg.Examples, runDir, project)
	if err != nil {
		return err
	}
	if err := gen.Close(); err != nil {
		return fmt.Errorf("failed to close generator: %w", err)
	}

	// Snapshot scan: track the running minimum of the second-to-last
	// cost-log entry. The final entry is a trailing post-run value and
	// is deliberately excluded from the selection.
	var eng *wavenet.Wavenet
	summary := RunSummary{BestCost: math.Inf(1)}
	longest := 0
	for seq.Exists() && seq.Number() <= cfg.Runs {
		w, err := wavenet.LoadFile(seq.File())
		if err != nil {
			return fmt.Errorf("failed to load snapshot %d: %w", seq.Number(), err)
		}
		w.Print()

		costLog := w.CostLog()
		if len(costLog) > longest {
			longest = len(costLog)
		}
		if len(costLog) >= 2 && costLog[len(costLog)-2] < summary.BestCost {
			summary.BestRun = seq.Number()
			summary.BestCost = costLog[len(costLog)-2]
		}

		eng = w
		seq.Advance()
	}
	if eng == nil {
		return fmt.Errorf("no snapshots found at %s", pattern)
	}
	if summary.BestRun == 0 {
		return fmt.Errorf("no snapshot has enough cost entries to rank")
	}
	slog.Info("Snapshot scan complete",
		"scanned", seq.Number()-1,
		"longest_cost_log", longest,
		"best_run", summary.BestRun,
		"best_cost", summary.BestCost,
	)

	// Cost map over the (a1, a2) subspace, memoized on disk. The
	// non-swept coefficients come from the last scanned snapshot.
	builder := &costmap.Builder{Engine: eng, CacheDir: cfg.OutDir, Project: project}
	triple, err := builder.Build(examples, cfg.GridRange, cfg.GridResolution)
	if err != nil {
		return err
	}
	zmax := mat.Max(triple.Combined)
	if zmax <= 0 {
		zmax = 1
	}
	if err := render.SavePNG(filepath.Join(runDir, "CostMap.png"),
		render.MatrixToImage(triple.Combined, zmax)); err != nil {
		return err
	}

	// Best snapshot.
	seq.SetNumber(summary.BestRun)
	if !seq.Exists() {
		return fmt.Errorf("best snapshot %d disappeared", summary.BestRun)
	}
	best, err := wavenet.LoadFile(seq.File())
	if err != nil {
		return fmt.Errorf("failed to load best snapshot: %w", err)
	}

	// Orthonormality audit.
	rows, cols := gen.Shape()
	hist, err := AuditOrthonormality(best, cols, rows)
	if err != nil {
		return fmt.Errorf("orthonormality audit failed: %w", err)
	}
	if err := hist.SaveJSON(filepath.Join(runDir, "NormDistributions.json")); err != nil {
		return err
	}

	// Basis-function movie for the best run.
	sink := render.NewPNGSink(filepath.Join(runDir, "movie"))
	if _, err := RenderMovie(best, best.FilterLog(), cfg.Neighborhood, cols, rows, sink); err != nil {
		return err
	}

	if err := saveSummary(filepath.Join(runDir, "RunSummary.json"), summary); err != nil {
		return err
	}

	slog.Info("Analysis complete", "project", project, "best_run", summary.BestRun)
	return nil
}

// drawExamples pulls n samples from the generator and writes each as a
// reference image next to the analysis output.
func drawExamples(gen generator.Generator, n int, runDir, project string) ([]*mat.Dense, error) {
	examples := make([]*mat.Dense, 0, n)
	for i := 0; i < n; i++ {
		ex, err := gen.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to draw example %d: %w", i+1, err)
		}
		examples = append(examples, ex)

		path := filepath.Join(runDir, fmt.Sprintf("exampleSignal.%d.%s.png", i+1, project))
		if err := render.SavePNG(path, render.MatrixToImage(ex, signalZMax)); err != nil {
			return nil, err
		}
	}
	return examples, nil
}

func saveSummary(path string, summary RunSummary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize run summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}
	return nil
}
