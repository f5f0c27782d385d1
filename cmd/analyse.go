package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/asogaard/wavescope/internal/analyse"
)

var (
	configPath string
	anaCfg     = analyse.Default()
)

var analyseCmd = &cobra.Command{
	Use:   "analyse",
	Short: "Analyse a trained snapshot family",
	Long: `Scans the numbered snapshots of a run family, selects the best run,
builds (or reloads) the cost map over the (a1, a2) coefficient plane,
audits basis-function synthesis and renders the basis movie.`,
	RunE: runAnalyse,
}

func init() {
	f := analyseCmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML config file (flags override file values)")
	f.StringVar(&anaCfg.Mode, "mode", anaCfg.Mode, "Generator mode: uniform, gaussian, needle, file")
	f.IntVar(&anaCfg.ShapeRows, "rows", anaCfg.ShapeRows, "Signal rows (power of two)")
	f.IntVar(&anaCfg.ShapeCols, "cols", anaCfg.ShapeCols, "Signal cols (power of two)")
	f.IntVar(&anaCfg.NFilter, "nfilter", anaCfg.NFilter, "Filter coefficient count (even)")
	f.Float64Var(&anaCfg.Lambda, "lambda", anaCfg.Lambda, "Regularization weight")
	f.IntVar(&anaCfg.Runs, "runs", anaCfg.Runs, "Maximum run count M to scan")
	f.IntVar(&anaCfg.Examples, "examples", anaCfg.Examples, "Example signals to draw")
	f.Float64Var(&anaCfg.GridRange, "grid-range", anaCfg.GridRange, "Cost-map axis bound")
	f.IntVar(&anaCfg.GridResolution, "grid-resolution", anaCfg.GridResolution, "Cost-map samples per axis")
	f.IntVar(&anaCfg.Neighborhood, "dim", anaCfg.Neighborhood, "Basis-movie neighborhood dimension")
	f.StringVar(&anaCfg.OutDir, "out", anaCfg.OutDir, "Output directory")
	f.StringVar(&anaCfg.InputPath, "input", anaCfg.InputPath, "Recorded signal file (file mode)")
	f.Int64Var(&anaCfg.Seed, "seed", anaCfg.Seed, "Random seed")

	rootCmd.AddCommand(analyseCmd)
}

func runAnalyse(cmd *cobra.Command, args []string) error {
	cfg, err := mergeConfig(cmd, anaCfg)
	if err != nil {
		return err
	}

	slog.Info("Starting analysis", "mode", cfg.Mode, "runs", cfg.Runs, "out", cfg.OutDir)
	return analyse.Run(cfg)
}

// mergeConfig resolves the effective configuration: defaults, then the
// YAML file if given, then any flag the user set explicitly.
func mergeConfig(cmd *cobra.Command, flagCfg analyse.Config) (analyse.Config, error) {
	if configPath == "" {
		return flagCfg, nil
	}
	cfg, err := analyse.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode = flagCfg.Mode
	}
	if flags.Changed("rows") {
		cfg.ShapeRows = flagCfg.ShapeRows
	}
	if flags.Changed("cols") {
		cfg.ShapeCols = flagCfg.ShapeCols
	}
	if flags.Changed("nfilter") {
		cfg.NFilter = flagCfg.NFilter
	}
	if flags.Changed("lambda") {
		cfg.Lambda = flagCfg.Lambda
	}
	if flags.Changed("runs") {
		cfg.Runs = flagCfg.Runs
	}
	if flags.Changed("examples") {
		cfg.Examples = flagCfg.Examples
	}
	if flags.Changed("grid-range") {
		cfg.GridRange = flagCfg.GridRange
	}
	if flags.Changed("grid-resolution") {
		cfg.GridResolution = flagCfg.GridResolution
	}
	if flags.Changed("dim") {
		cfg.Neighborhood = flagCfg.Neighborhood
	}
	if flags.Changed("out") {
		cfg.OutDir = flagCfg.OutDir
	}
	if flags.Changed("input") {
		cfg.InputPath = flagCfg.InputPath
	}
	if flags.Changed("seed") {
		cfg.Seed = flagCfg.Seed
	}
	return cfg, nil
}
