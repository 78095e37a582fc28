package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModelDir    = "models/h2air"
	DefaultIntegrator  = "rk4"
	DefaultDt          = 1e-9
	DefaultDuration    = 1e-6
	DefaultTolerance   = 1e-6
	DefaultDensity     = 1.5
	DefaultTemperature = 1400.0
)

// Config describes one reactor run.
type Config struct {
	ModelDir   string  `yaml:"model_dir"`
	Integrator string  `yaml:"integrator"`
	Dt         float64 `yaml:"dt"`
	Duration   float64 `yaml:"duration"`
	Adaptive   bool    `yaml:"adaptive"`
	Tolerance  float64 `yaml:"tolerance"`
	// Strict stops the run on the first inadmissible decode.
	Strict bool `yaml:"strict"`
	// ClosureTemperature evaluates sources at the model's closure
	// temperature instead of the state temperature.
	ClosureTemperature bool          `yaml:"closure_temperature"`
	Initial            InitialConfig `yaml:"initial"`
}

// InitialConfig sets the starting state. Progress takes precedence over
// Composition when both are given.
type InitialConfig struct {
	Density     float64            `yaml:"density"`
	Temperature float64            `yaml:"temperature"`
	Progress    []float64          `yaml:"progress,omitempty"`
	Composition map[string]float64 `yaml:"composition,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		ModelDir:   DefaultModelDir,
		Integrator: DefaultIntegrator,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Tolerance:  DefaultTolerance,
		Initial: InitialConfig{
			Density:     DefaultDensity,
			Temperature: DefaultTemperature,
			Composition: partiallyBurnt(),
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	// a composition in the file replaces the default rather than merging
	cfg.Initial.Composition = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Initial.Composition == nil && len(cfg.Initial.Progress) == 0 {
		cfg.Initial.Composition = partiallyBurnt()
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
