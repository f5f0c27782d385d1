package analyse

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/asogaard/wavescope/internal/generator"
)

// Config describes one analysis run. Zero values are filled from
// Default; a YAML file can override any field and CLI flags override
// the file.
type Config struct {
	Mode           string  `yaml:"mode"`           // uniform, gaussian, needle, file
	ShapeRows      int     `yaml:"shapeRows"`      // signal shape, dyadic
	ShapeCols      int     `yaml:"shapeCols"`
	NFilter        int     `yaml:"nfilter"`        // filter-coefficient count
	Lambda         float64 `yaml:"lambda"`         // regularization weight
	Runs           int     `yaml:"runs"`           // snapshot scan cap M
	Examples       int     `yaml:"examples"`       // example signals to draw
	GridRange      float64 `yaml:"gridRange"`      // cost-map axis bound
	GridResolution int     `yaml:"gridResolution"` // cost-map samples per axis
	Neighborhood   int     `yaml:"neighborhood"`   // basis-movie grid dim
	OutDir         string  `yaml:"outDir"`
	InputPath      string  `yaml:"inputPath"`      // file mode only
	Seed           int64   `yaml:"seed"`
}

// Default returns the configuration the original analysis ran with.
func Default() Config {
	return Config{
		Mode:           "gaussian",
		ShapeRows:      16,
		ShapeCols:      16,
		NFilter:        4,
		Lambda:         0.5,
		Runs:           5,
		Examples:       10,
		GridRange:      1.2,
		GridResolution: 300,
		Neighborhood:   8,
		OutDir:         "./output",
		Seed:           42,
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Project returns the run-family identity, e.g. "Run.Gaussian.N4".
func (c Config) Project() (string, error) {
	mode, err := generator.ParseMode(c.Mode)
	if err != nil {
		return "", err
	}
	return "Run." + mode.String() + ".N" + strconv.Itoa(c.NFilter), nil
}

// RunDir returns the per-project output directory.
func (c Config) RunDir() (string, error) {
	project, err := c.Project()
	if err != nil {
		return "", err
	}
	return filepath.Join(c.OutDir, project), nil
}

// SnapshotPattern returns the numbered snapshot filename pattern for
// this run family.
func (c Config) SnapshotPattern() (string, error) {
	project, err := c.Project()
	if err != nil {
		return "", err
	}
	runDir, err := c.RunDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runDir, "snapshots", project+".%06d.snap"), nil
}
