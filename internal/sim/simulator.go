package sim

import (
	"context"
	"fmt"
	"math"
)

type Simulator struct {
	sys        System
	integrator Integrator
	metrics    []Metric
	observers  []Observer
}

func New(sys System, integrator Integrator) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates from x0 for cfg.Duration. On failure the states recorded
// so far are returned along with the error.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	capacity := steps + 1
	if cfg.Adaptive {
		capacity = 64
	}
	result := &Result{
		States:  make([]State, 0, capacity),
		Times:   make([]float64, 0, capacity),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	finish := func(err error) (*Result, error) {
		for _, m := range s.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
		return result, err
	}

	for i := 0; ; i++ {
		if cfg.Adaptive {
			if t >= cfg.Duration*(1-1e-12) || (cfg.MaxSteps > 0 && i >= cfg.MaxSteps) {
				break
			}
		} else if i >= steps {
			break
		}

		select {
		case <-ctx.Done():
			return finish(ctx.Err())
		default:
		}

		for _, m := range s.metrics {
			m.Observe(x, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}

		var (
			newX  State
			taken = dt
			err   error
		)
		if cfg.Adaptive {
			newX, taken, dt, err = s.adaptiveStep(x, t, math.Min(dt, cfg.Duration-t), cfg)
		} else {
			newX, err = s.integrator.Step(s.sys, x, t, dt)
		}
		if err != nil {
			return finish(&SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: err})
		}
		if cfg.ValidateState && !newX.IsValid() {
			return finish(&SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: ErrInvalidState})
		}

		x = newX
		t += taken
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, t)
	}

	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	return finish(nil)
}

func (s *Simulator) validate(x0 State, cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be positive for adaptive stepping", ErrInvalidConfig)
	}
	if n := s.sys.StateDim(); len(x0) != n {
		return fmt.Errorf("%w: state has %d entries, system has %d", ErrDimensionMismatch, len(x0), n)
	}
	return nil
}

// adaptiveStep returns the new state, the step taken and the next step to
// try. Integrators without an error estimate fall back to step doubling.
func (s *Simulator) adaptiveStep(x State, t, dt float64, cfg Config) (State, float64, float64, error) {
	minDt := cfg.MinDt
	maxDt := cfg.MaxDt
	if maxDt <= 0 {
		maxDt = math.Inf(1)
	}

	if adaptive, ok := s.integrator.(AdaptiveIntegrator); ok {
		for {
			next, taken, proposed, err := adaptive.StepAdaptive(s.sys, x, t, dt, cfg.Tolerance)
			if err != nil {
				return nil, 0, 0, err
			}
			if taken > 0 {
				return next, taken, math.Min(proposed, maxDt), nil
			}
			if proposed < minDt {
				return nil, 0, 0, fmt.Errorf("%w: %g", ErrStepTooSmall, proposed)
			}
			dt = proposed
		}
	}

	for {
		x1, err := s.integrator.Step(s.sys, x, t, dt)
		if err != nil {
			return nil, 0, 0, err
		}
		xHalf, err := s.integrator.Step(s.sys, x, t, dt/2)
		if err != nil {
			return nil, 0, 0, err
		}
		x2, err := s.integrator.Step(s.sys, xHalf, t+dt/2, dt/2)
		if err != nil {
			return nil, 0, 0, err
		}

		scale := x.Norm() + 1e-30
		estimate := x1.Sub(x2).Norm() / scale
		if estimate > cfg.Tolerance {
			if dt/2 < minDt {
				return nil, 0, 0, fmt.Errorf("%w: %g", ErrStepTooSmall, dt/2)
			}
			dt /= 2
			continue
		}
		next := dt
		if estimate < cfg.Tolerance/10 {
			next = math.Min(dt*2, maxDt)
		}
		return x2, dt, next, nil
	}
}

// RunWithCallback integrates with a fixed step, handing each state to fn
// until it returns false or the duration is reached.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 State, cfg Config, fn func(State, float64) bool) error {
	if err := s.validate(x0, cfg); err != nil {
		return err
	}

	x := x0.Clone()
	t := 0.0
	for step := 0; t < cfg.Duration; step++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !fn(x, t) {
			return nil
		}

		next, err := s.integrator.Step(s.sys, x, t, cfg.Dt)
		if err != nil {
			return &SimulationError{Step: step, Time: t, State: x, Wrapped: err}
		}
		x = next
		t += cfg.Dt

		if cfg.ValidateState && !x.IsValid() {
			return &SimulationError{Step: step, Time: t, State: x, Wrapped: ErrInvalidState}
		}
	}
	return nil
}
