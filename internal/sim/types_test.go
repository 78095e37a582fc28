package sim

import (
	"errors"
	"math"
	"testing"
)

func TestStateValidity(t *testing.T) {
	reactor := State{1.5, 1.8e5, 0, 0.89, 0.86}

	cases := map[string]struct {
		state State
		valid bool
	}{
		"empty":            {State{}, true},
		"reactor state":    {reactor, true},
		"nan energy":       {State{1.5, math.NaN(), 0}, false},
		"overflowed rhoC":  {State{1.5, 1.8e5, 0, math.Inf(1)}, false},
		"negative inf rho": {State{math.Inf(-1)}, false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := tc.state.IsValid(); got != tc.valid {
				t.Errorf("IsValid(%v) = %v, want %v", tc.state, got, tc.valid)
			}
		})
	}
}

func TestStateVectorOps(t *testing.T) {
	x := State{3, 4}
	if got := x.Norm(); math.Abs(got-5) > 1e-12 {
		t.Errorf("Norm = %g, want 5", got)
	}

	k := State{0.5, -1}
	next := x.Axpy(2, k)
	if next[0] != 4 || next[1] != 2 {
		t.Errorf("Axpy = %v, want [4 2]", next)
	}
	if x[0] != 3 || x[1] != 4 {
		t.Errorf("Axpy changed its receiver: %v", x)
	}

	if d := next.Sub(x); d[0] != 1 || d[1] != -2 {
		t.Errorf("Sub = %v, want [1 -2]", d)
	}

	c := x.Clone()
	c[0] = 99
	if x[0] == 99 {
		t.Error("Clone shares storage")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Dt <= 0 || cfg.Duration <= cfg.Dt || cfg.Tolerance <= 0 {
		t.Fatalf("invalid default config: %+v", cfg)
	}
	if cfg.MinDt >= cfg.Dt || cfg.Dt > cfg.MaxDt {
		t.Errorf("want MinDt < Dt <= MaxDt, got %g, %g, %g", cfg.MinDt, cfg.Dt, cfg.MaxDt)
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Time: 1.5, Step: 150, Wrapped: ErrInvalidState}
	want := "step 150 (t=1.5): sim: invalid state (NaN or Inf detected)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("SimulationError does not unwrap to its cause")
	}
}
