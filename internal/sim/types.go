package sim

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	return floats.Norm(s, 2)
}

// Axpy returns s + a·d.
func (s State) Axpy(a float64, d State) State {
	out := s.Clone()
	floats.AddScaled(out, a, d)
	return out
}

func (s State) Sub(other State) State {
	out := s.Clone()
	floats.Sub(out, other)
	return out
}

// System is dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) (State, error)
	StateDim() int
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) (State, error)
}

type AdaptiveIntegrator interface {
	Integrator
	// StepAdaptive takes one step of at most dt and returns the new state,
	// the step actually taken and a proposal for the next one.
	StepAdaptive(sys System, x State, t, dt, tol float64) (next State, taken, proposed float64, err error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Config struct {
	Dt            float64 `yaml:"dt" json:"dt"`
	Duration      float64 `yaml:"duration" json:"duration"`
	Tolerance     float64 `yaml:"tolerance" json:"tolerance"`
	MaxDt         float64 `yaml:"max_dt" json:"max_dt"`
	MinDt         float64 `yaml:"min_dt" json:"min_dt"`
	Adaptive      bool    `yaml:"adaptive" json:"adaptive"`
	ValidateState bool    `yaml:"validate_state" json:"validate_state"`
	// MaxSteps bounds adaptive runs; zero means no bound.
	MaxSteps int `yaml:"max_steps" json:"max_steps"`
}

// DefaultConfig is sized for chemical time scales.
func DefaultConfig() Config {
	return Config{
		Dt:            1e-8,
		Duration:      1e-5,
		Tolerance:     1e-6,
		MaxDt:         1e-6,
		MinDt:         1e-15,
		Adaptive:      false,
		ValidateState: true,
	}
}

type Result struct {
	States     []State
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
}

// Final returns the last recorded state.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}
