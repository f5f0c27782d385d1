package train

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/asogaard/wavescope/internal/analyse"
	"github.com/asogaard/wavescope/internal/trace"
	"github.com/asogaard/wavescope/internal/wavenet"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	a := analyse.Default()
	a.Mode = "gaussian"
	a.ShapeRows = 4
	a.ShapeCols = 4
	a.NFilter = 2
	a.Runs = 2
	a.Examples = 2
	a.OutDir = t.TempDir()
	return Config{
		Analyse:   a,
		Optimizer: "sgd",
		Iters:     20,
		Rate:      0.05,
	}
}

func TestRunProducesSnapshotFamily(t *testing.T) {
	cfg := testConfig(t)

	if err := Run(cfg); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	pattern, err := cfg.Analyse.SnapshotPattern()
	if err != nil {
		t.Fatalf("SnapshotPattern failed: %v", err)
	}

	for run := 1; run <= cfg.Analyse.Runs; run++ {
		path := fmt.Sprintf(pattern, run)
		w, err := wavenet.LoadFile(path)
		if err != nil {
			t.Fatalf("Snapshot %d unreadable: %v", run, err)
		}

		filterLog := w.FilterLog()
		costLog := w.CostLog()
		if len(filterLog) == 0 {
			t.Fatalf("Snapshot %d has empty filter log", run)
		}
		// One trailing cost entry beyond the filter log.
		if len(costLog) != len(filterLog)+1 {
			t.Fatalf("Snapshot %d cost log length %d, want %d", run, len(costLog), len(filterLog)+1)
		}
	}
}

func TestRunWritesTraces(t *testing.T) {
	cfg := testConfig(t)
	cfg.Analyse.Runs = 1

	if err := Run(cfg); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	pattern, _ := cfg.Analyse.SnapshotPattern()
	tracePath := strings.TrimSuffix(fmt.Sprintf(pattern, 1), ".snap") + ".trace.jsonl"

	entries, err := trace.ReadAll(tracePath)
	if err != nil {
		t.Fatalf("Trace unreadable: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("Trace is empty")
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Cost >= entries[i-1].Cost {
			t.Fatalf("Recorded trajectory not monotone at step %d", i)
		}
	}
}

func TestRunRejectsUnknownOptimizer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Optimizer = "annealing"
	if err := Run(cfg); err == nil {
		t.Fatal("Run should reject unknown optimizers")
	}
}

func TestTrainThenAnalyse(t *testing.T) {
	cfg := testConfig(t)
	cfg.Analyse.GridResolution = 4
	cfg.Analyse.Neighborhood = 2

	if err := Run(cfg); err != nil {
		t.Fatalf("Training failed: %v", err)
	}
	if err := analyse.Run(cfg.Analyse); err != nil {
		t.Fatalf("Analysis of trained family failed: %v", err)
	}

	runDir, _ := cfg.Analyse.RunDir()
	if _, err := os.Stat(runDir); err != nil {
		t.Fatalf("Analysis output missing: %v", err)
	}
}
