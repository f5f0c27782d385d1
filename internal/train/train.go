// Package train produces wavelet-filter training runs: for each run it
// optimizes the filter coefficients against freshly drawn example
// signals, records the trajectory, and persists one numbered snapshot
// per run for later analysis.
package train

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/asogaard/wavescope/internal/analyse"
	"github.com/asogaard/wavescope/internal/generator"
	"github.com/asogaard/wavescope/internal/opt"
	"github.com/asogaard/wavescope/internal/snapshot"
	"github.com/asogaard/wavescope/internal/trace"
	"github.com/asogaard/wavescope/internal/wavenet"
)

// coeffBound bounds each filter coefficient during optimization. It
// matches the coefficient subspace the cost map explores.
const coeffBound = 1.2

// Config describes one training invocation. The shared fields mirror
// the analysis configuration so a train/analyse pair addresses the
// same snapshot family.
type Config struct {
	Analyse   analyse.Config
	Optimizer string // mayfly, sgd
	Iters     int
	PopSize   int
	Rate      float64 // sgd learning rate
}

// Run executes Config.Analyse.Runs training runs and saves one
// snapshot per run at the family's numbered pattern.
func Run(cfg Config) error {
	a := cfg.Analyse
	mode, err := generator.ParseMode(a.Mode)
	if err != nil {
		return err
	}
	pattern, err := a.SnapshotPattern()
	if err != nil {
		return err
	}
	seq, err := snapshot.NewSequence(pattern)
	if err != nil {
		return err
	}

	for run := 1; run <= a.Runs; run++ {
		if err := trainOne(cfg, mode, seq, run); err != nil {
			return fmt.Errorf("run %d failed: %w", run, err)
		}
	}
	return nil
}

func trainOne(cfg Config, mode generator.Mode, seq *snapshot.Sequence, run int) error {
	a := cfg.Analyse
	seed := a.Seed + int64(run)

	gen, err := generator.New(mode, generator.Options{Seed: seed, InputPath: a.InputPath})
	if err != nil {
		return err
	}
	if err := gen.SetShape(a.ShapeRows, a.ShapeCols); err != nil {
		return err
	}
	if !gen.Good() {
		return fmt.Errorf("generator %s is not ready", mode)
	}
	defer gen.Close()

	examples, err := drawExamples(gen, a.Examples)
	if err != nil {
		return err
	}

	eng, err := wavenet.New(a.NFilter, a.Lambda)
	if err != nil {
		return err
	}

	recorder := opt.NewRecorder(func(filter []float64) float64 {
		return eng.CostAt(filter, examples)
	})

	var optimizer opt.Optimizer
	switch cfg.Optimizer {
	case "mayfly":
		optimizer = opt.NewMayfly(cfg.Iters, cfg.PopSize, seed)
	case "sgd":
		optimizer = opt.NewSGD(cfg.Iters, cfg.Rate, seed)
	default:
		return fmt.Errorf("unknown optimizer %q", cfg.Optimizer)
	}

	lower := make([]float64, a.NFilter)
	upper := make([]float64, a.NFilter)
	for i := range lower {
		lower[i] = -coeffBound
		upper[i] = coeffBound
	}

	slog.Info("Training run", "run", run, "optimizer", cfg.Optimizer, "iters", cfg.Iters)
	best, bestCost := optimizer.Run(recorder.Eval, lower, upper, a.NFilter)

	seq.SetNumber(run)
	tracePath := strings.TrimSuffix(seq.File(), ".snap") + ".trace.jsonl"
	if err := writeTrace(tracePath, run, recorder); err != nil {
		return err
	}

	for i, params := range recorder.Params {
		eng.LogStep(params, recorder.Costs[i])
	}
	if err := eng.SetFilter(best); err != nil {
		return err
	}
	// Trailing cost entry: one final evaluation after the run, so the
	// cost log is one longer than the filter log.
	eng.LogFinalCost(eng.Cost(examples))

	if err := eng.Save(seq.File()); err != nil {
		return err
	}

	slog.Info("Training run complete",
		"run", run,
		"steps", len(recorder.Costs),
		"best_cost", bestCost,
		"snapshot", seq.File(),
	)
	return nil
}

func drawExamples(gen generator.Generator, n int) ([]*mat.Dense, error) {
	examples := make([]*mat.Dense, 0, n)
	for i := 0; i < n; i++ {
		ex, err := gen.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to draw example %d: %w", i+1, err)
		}
		examples = append(examples, ex)
	}
	return examples, nil
}

func writeTrace(path string, run int, recorder *opt.Recorder) error {
	writer, err := trace.NewWriter(path)
	if err != nil {
		return err
	}
	for i, cost := range recorder.Costs {
		if err := writer.Write(trace.Entry{
			Run:       run,
			Step:      i,
			Cost:      cost,
			Filter:    recorder.Params[i],
			Timestamp: time.Now(),
		}); err != nil {
			writer.Close()
			return err
		}
	}
	return writer.Close()
}
