package config

import "sort"

func partiallyBurnt() map[string]float64 {
	return map[string]float64{"H2": 0.02, "H": 0.0001, "O": 0.0011, "O2": 0.18, "OH": 0.0035, "H2O": 0.05, "N2": 0.7453}
}

func mostlyBurnt() map[string]float64 {
	return map[string]float64{"H2": 0.004, "H": 0.0003, "O": 0.0017, "O2": 0.0397, "OH": 0.009, "H2O": 0.2, "N2": 0.7453}
}

// Presets are keyed by model name, then preset name.
var Presets = map[string]map[string]*Config{
	"h2air": {
		"ignition": {
			ModelDir: DefaultModelDir, Integrator: "rk4", Dt: 1e-9, Duration: 1e-6,
			Initial: InitialConfig{Density: 1.5, Temperature: 1400, Composition: partiallyBurnt()},
		},
		"hot": {
			ModelDir: DefaultModelDir, Integrator: "rk4", Dt: 5e-10, Duration: 5e-7,
			Initial: InitialConfig{Density: 1.2, Temperature: 1800, Composition: partiallyBurnt()},
		},
		"burnout": {
			ModelDir: DefaultModelDir, Integrator: "rk45", Dt: 1e-9, Duration: 1e-5,
			Adaptive: true, Tolerance: 1e-6,
			Initial: InitialConfig{Density: 1.5, Temperature: 1800, Composition: mostlyBurnt()},
		},
		"closure": {
			ModelDir: DefaultModelDir, Integrator: "euler", Dt: 1e-9, Duration: 1e-7,
			ClosureTemperature: true,
			Initial:            InitialConfig{Density: 1.5, Temperature: 1400, Progress: []float64{0.7, 0.3}},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	c.Initial.Progress = append([]float64(nil), cfg.Initial.Progress...)
	if cfg.Initial.Composition != nil {
		c.Initial.Composition = make(map[string]float64, len(cfg.Initial.Composition))
		for k, v := range cfg.Initial.Composition {
			c.Initial.Composition[k] = v
		}
	}
	return &c
}

// ListPresets returns the preset names of model in sorted order.
func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListModels returns the models that have presets.
func ListModels() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
