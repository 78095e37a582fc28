package experiment

import (
	"fmt"
	"io"
	"sort"

	"github.com/san-kum/eostab/internal/eos"
	"github.com/san-kum/eostab/internal/integrators"
	"github.com/san-kum/eostab/internal/kinetics"
	"github.com/san-kum/eostab/internal/metrics"
	"github.com/san-kum/eostab/internal/reactor"
	"github.com/san-kum/eostab/internal/sim"
	"github.com/san-kum/eostab/internal/tabulated"
	"github.com/sirupsen/logrus"
)

// Loader builds a backend from a path: a model directory for the reduced
// backend or a mechanism file for the detailed one.
type Loader func(path string, log logrus.FieldLogger) (eos.EOS, error)

type Registry struct {
	backends    map[string]Loader
	integrators map[string]func() sim.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		backends:    make(map[string]Loader),
		integrators: make(map[string]func() sim.Integrator),
	}

	r.backends["tabulated"] = func(path string, log logrus.FieldLogger) (eos.EOS, error) {
		b, err := tabulated.Load(path, tabulated.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	r.backends["kinetics"] = func(path string, log logrus.FieldLogger) (eos.EOS, error) {
		b, err := kinetics.Load(path, kinetics.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return b, nil
	}

	r.integrators["euler"] = func() sim.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() sim.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() sim.Integrator { return integrators.NewRK45() }

	return r
}

func (r *Registry) GetBackend(name, path string, log logrus.FieldLogger) (eos.EOS, error) {
	fn, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s", name)
	}
	if log == nil {
		log = discardLogger()
	}
	return fn(path, log)
}

func (r *Registry) GetIntegrator(name string) (sim.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListBackends() []string { return sortedKeys(r.backends) }

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics are the observables recorded for every reactor run.
func (r *Registry) DefaultMetrics(rc *reactor.Reactor) []sim.Metric {
	temperature := func(x sim.State, t float64) (float64, bool) {
		T, err := rc.Temperature(x)
		return T, err == nil
	}
	heatRelease := func(x sim.State, t float64) (float64, bool) {
		q, err := rc.HeatRelease(x)
		return q, err == nil
	}
	return []sim.Metric{
		metrics.NewPeak("peak_temperature", temperature),
		metrics.NewFinal("final_temperature", temperature),
		metrics.NewIntegral("heat_released", heatRelease),
		metrics.NewMean("mean_heat_release", heatRelease),
		metrics.NewDrift("density_drift", metrics.Component(0)),
		metrics.NewBounds("temperature_in_range", temperature, 200, 5000),
		metrics.NewGauge("clamped_decodes", func() float64 { return float64(rc.ClampedDecodes()) }),
	}
}
