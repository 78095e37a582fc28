package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/eostab/internal/config"
	"github.com/san-kum/eostab/internal/eos"
	"github.com/san-kum/eostab/internal/sim"
)

const modelDir = "../../models/h2air"

func testConfig() config.Config {
	cfg := *config.DefaultConfig()
	cfg.ModelDir = modelDir
	cfg.Dt = 1e-9
	cfg.Duration = 2e-8
	return cfg
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"euler", "rk4", "rk45"} {
		if _, err := r.GetIntegrator(name); err != nil {
			t.Errorf("integrator %s: %v", name, err)
		}
	}
	if _, err := r.GetIntegrator("verlet"); err == nil {
		t.Error("expected unknown integrator error")
	}

	b, err := r.GetBackend("tabulated", modelDir, nil)
	if err != nil {
		t.Fatalf("tabulated backend: %v", err)
	}
	if len(b.Species()) != 0 {
		t.Error("tabulated backend should carry no species")
	}

	k, err := r.GetBackend("kinetics", modelDir+"/h2o2.yaml", nil)
	if err != nil {
		t.Fatalf("kinetics backend: %v", err)
	}
	if len(k.Species()) != 7 {
		t.Errorf("expected 7 species, got %d", len(k.Species()))
	}

	if _, err := r.GetBackend("tabulated", "missing", nil); !errors.Is(err, eos.ErrInvalidModel) {
		t.Errorf("expected invalid model, got %v", err)
	}
	if _, err := r.GetBackend("cantera", modelDir, nil); err == nil {
		t.Error("expected unknown backend error")
	}

	if got := r.ListIntegrators(); len(got) != 3 || got[0] != "euler" {
		t.Errorf("unexpected integrators %v", got)
	}
	if got := r.ListBackends(); len(got) != 2 || got[0] != "kinetics" {
		t.Errorf("unexpected backends %v", got)
	}
}

func TestRunBeforeSetup(t *testing.T) {
	e := New(testConfig(), nil)
	if _, err := e.Run(context.Background()); err == nil {
		t.Error("expected error before setup")
	}
	if _, err := e.InitialState(); err == nil {
		t.Error("expected error before setup")
	}
}

func TestRun(t *testing.T) {
	e := New(testConfig(), nil)
	if err := e.Setup(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 20 {
		t.Errorf("expected 20 steps, got %d", result.StepsTaken)
	}

	for _, name := range []string{"peak_temperature", "final_temperature", "heat_released", "mean_heat_release", "density_drift", "temperature_in_range", "clamped_decodes"} {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
	if result.Metrics["density_drift"] != 0 {
		t.Errorf("density should be constant, drift %g", result.Metrics["density_drift"])
	}
	if result.Metrics["peak_temperature"] < 1400 {
		t.Errorf("expected the mixture to heat up, peak %g", result.Metrics["peak_temperature"])
	}
	if result.Metrics["heat_released"] <= 0 {
		t.Errorf("expected positive heat release, got %g", result.Metrics["heat_released"])
	}
}

func TestSetupErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Integrator = "leapfrog"
	if err := New(cfg, nil).Setup(); err == nil {
		t.Error("expected unknown integrator error")
	}

	cfg = testConfig()
	cfg.ModelDir = "missing"
	if err := New(cfg, nil).Setup(); !errors.Is(err, eos.ErrInvalidModel) {
		t.Errorf("expected invalid model, got %v", err)
	}
}

func TestSweep(t *testing.T) {
	e := New(testConfig(), nil)
	if err := e.Setup(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	temps := []float64{1300, -1, 1500}
	results, errs := e.Sweep(context.Background(), temps, 2)
	if errs[0] != nil || errs[2] != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !errors.Is(errs[1], eos.ErrInvalidState) {
		t.Errorf("expected invalid state for a negative temperature, got %v", errs[1])
	}
	if results[0].Metrics["peak_temperature"] >= results[2].Metrics["peak_temperature"] {
		t.Error("a hotter start should reach a hotter peak")
	}

	var final sim.State = results[2].Final()
	if len(final) != e.Reactor().StateDim() {
		t.Errorf("unexpected final state %v", final)
	}
}
