package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/asogaard/wavescope/internal/train"
)

var trainCfg = train.Config{
	Optimizer: "sgd",
	Iters:     200,
	PopSize:   30,
	Rate:      0.01,
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a snapshot family of wavelet filters",
	Long: `Runs M independent filter optimizations against freshly drawn example
signals and saves one numbered snapshot per run, ready for analysis.`,
	RunE: runTrain,
}

func init() {
	trainCfg.Analyse = anaCfg

	f := trainCmd.Flags()
	f.StringVar(&trainCfg.Analyse.Mode, "mode", trainCfg.Analyse.Mode, "Generator mode: uniform, gaussian, needle, file")
	f.IntVar(&trainCfg.Analyse.ShapeRows, "rows", trainCfg.Analyse.ShapeRows, "Signal rows (power of two)")
	f.IntVar(&trainCfg.Analyse.ShapeCols, "cols", trainCfg.Analyse.ShapeCols, "Signal cols (power of two)")
	f.IntVar(&trainCfg.Analyse.NFilter, "nfilter", trainCfg.Analyse.NFilter, "Filter coefficient count (even)")
	f.Float64Var(&trainCfg.Analyse.Lambda, "lambda", trainCfg.Analyse.Lambda, "Regularization weight")
	f.IntVar(&trainCfg.Analyse.Runs, "runs", trainCfg.Analyse.Runs, "Number of runs to train")
	f.IntVar(&trainCfg.Analyse.Examples, "examples", trainCfg.Analyse.Examples, "Example signals per run")
	f.StringVar(&trainCfg.Analyse.OutDir, "out", trainCfg.Analyse.OutDir, "Output directory")
	f.StringVar(&trainCfg.Analyse.InputPath, "input", trainCfg.Analyse.InputPath, "Recorded signal file (file mode)")
	f.Int64Var(&trainCfg.Analyse.Seed, "seed", trainCfg.Analyse.Seed, "Random seed")
	f.StringVar(&trainCfg.Optimizer, "optimizer", trainCfg.Optimizer, "Optimizer: mayfly, sgd")
	f.IntVar(&trainCfg.Iters, "iters", trainCfg.Iters, "Optimizer iterations per run")
	f.IntVar(&trainCfg.PopSize, "pop", trainCfg.PopSize, "Population size (mayfly)")
	f.Float64Var(&trainCfg.Rate, "rate", trainCfg.Rate, "Learning rate (sgd)")

	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	slog.Info("Starting training",
		"mode", trainCfg.Analyse.Mode,
		"runs", trainCfg.Analyse.Runs,
		"optimizer", trainCfg.Optimizer,
	)
	return train.Run(trainCfg)
}
