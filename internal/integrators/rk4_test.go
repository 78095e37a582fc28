package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/eostab/internal/sim"
)

type simpleDynamics struct{}

func (s *simpleDynamics) Derive(x sim.State, t float64) (sim.State, error) {
	return sim.State{x[1], -x[0]}, nil
}

func (s *simpleDynamics) StateDim() int { return 2 }

type failingDynamics struct{ calls, failAt int }

func (f *failingDynamics) Derive(x sim.State, t float64) (sim.State, error) {
	f.calls++
	if f.calls >= f.failAt {
		return nil, errors.New("derive failed")
	}
	return sim.State{-x[0]}, nil
}

func (f *failingDynamics) StateDim() int { return 1 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &simpleDynamics{}
	integ := NewRK4()

	x0 := sim.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	x := x0
	for i := 0; i < steps; i++ {
		var err error
		x, err = integ.Step(dyn, x, float64(i)*dt, dt)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestEulerFirstOrder(t *testing.T) {
	x, err := NewEuler().Step(&simpleDynamics{}, sim.State{1, 0}, 0, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if x[0] != 1 || x[1] != -0.1 {
		t.Errorf("unexpected euler step: %v", x)
	}
}

func TestStepPropagatesDeriveError(t *testing.T) {
	tests := []struct {
		name   string
		integ  sim.Integrator
		stages int
	}{
		{"euler", NewEuler(), 1},
		{"rk4", NewRK4(), 4},
		{"rk45", NewRK45(), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for failAt := 1; failAt <= tt.stages; failAt++ {
				dyn := &failingDynamics{failAt: failAt}
				if _, err := tt.integ.Step(dyn, sim.State{1}, 0, 0.1); err == nil {
					t.Errorf("expected error when stage %d fails", failAt)
				}
			}
			dyn := &failingDynamics{failAt: tt.stages + 1}
			if _, err := tt.integ.Step(dyn, sim.State{1}, 0, 0.1); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
