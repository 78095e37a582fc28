package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/eostab/internal/config"
	"github.com/san-kum/eostab/internal/reactor"
	"github.com/san-kum/eostab/internal/sim"
	"github.com/san-kum/eostab/internal/tabulated"
	"github.com/sirupsen/logrus"
)

// Experiment is one reactor run assembled from a config.
type Experiment struct {
	cfg       config.Config
	reg       *Registry
	log       logrus.FieldLogger
	model     *tabulated.Backend
	reactor   *reactor.Reactor
	simulator *sim.Simulator
}

func New(cfg config.Config, log logrus.FieldLogger) *Experiment {
	if log == nil {
		log = discardLogger()
	}
	return &Experiment{cfg: cfg, reg: NewRegistry(), log: log}
}

// Setup loads the model and builds the reactor, integrator and metrics.
func (e *Experiment) Setup() error {
	model, err := tabulated.Load(e.cfg.ModelDir, tabulated.WithLogger(e.log))
	if err != nil {
		return err
	}
	e.model = model

	rc, err := e.newReactor()
	if err != nil {
		return err
	}
	e.reactor = rc

	e.simulator, err = e.newSimulator(rc)
	return err
}

func (e *Experiment) newReactor() (*reactor.Reactor, error) {
	opts := []reactor.Option{reactor.WithLogger(e.log)}
	if e.cfg.Strict {
		opts = append(opts, reactor.Strict())
	}
	if e.cfg.ClosureTemperature {
		opts = append(opts, reactor.WithClosureTemperature())
	}
	return reactor.New(e.model, opts...)
}

func (e *Experiment) newSimulator(rc *reactor.Reactor) (*sim.Simulator, error) {
	integ, err := e.reg.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return nil, err
	}
	s := sim.New(rc, integ)
	for _, m := range e.reg.DefaultMetrics(rc) {
		s.AddMetric(m)
	}
	return s, nil
}

func (e *Experiment) simConfig() sim.Config {
	c := sim.DefaultConfig()
	c.Dt = e.cfg.Dt
	c.Duration = e.cfg.Duration
	c.Adaptive = e.cfg.Adaptive
	if e.cfg.Tolerance > 0 {
		c.Tolerance = e.cfg.Tolerance
	}
	return c
}

// initialState builds the configured starting state at temperature.
func (e *Experiment) initialState(rc *reactor.Reactor, temperature float64) (sim.State, error) {
	in := e.cfg.Initial
	if len(in.Progress) > 0 {
		return rc.InitialState(in.Progress, in.Density, temperature)
	}
	return rc.InitialStateFromComposition(in.Composition, in.Density, temperature)
}

// InitialState builds the configured starting state.
func (e *Experiment) InitialState() (sim.State, error) {
	if e.reactor == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.initialState(e.reactor, e.cfg.Initial.Temperature)
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	x0, err := e.InitialState()
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"model":      e.model.Name(),
		"integrator": e.cfg.Integrator,
		"dt":         e.cfg.Dt,
		"duration":   e.cfg.Duration,
	}).Info("starting reactor run")

	result, err := e.simulator.Run(ctx, x0, e.simConfig())
	if n := e.reactor.ClampedDecodes(); n > 0 {
		e.log.WithField("clamped_decodes", n).Warn("run left the admissible window")
	}
	return result, err
}

// Sweep runs one reactor per initial temperature in parallel. Each run has
// its own reactor, integrator and metrics.
func (e *Experiment) Sweep(ctx context.Context, temperatures []float64, workers int) ([]*sim.Result, []error) {
	results := make([]*sim.Result, len(temperatures))
	errs := make([]error, len(temperatures))
	if e.model == nil {
		for i := range errs {
			errs[i] = fmt.Errorf("experiment not setup")
		}
		return results, errs
	}

	x0s := make([]sim.State, 0, len(temperatures))
	index := make([]int, 0, len(temperatures))
	for i, T := range temperatures {
		x0, err := e.initialState(e.reactor, T)
		if err != nil {
			errs[i] = err
			continue
		}
		x0s = append(x0s, x0)
		index = append(index, i)
	}

	factory := func() (*sim.Simulator, error) {
		rc, err := e.newReactor()
		if err != nil {
			return nil, err
		}
		return e.newSimulator(rc)
	}
	rs, es := sim.NewEnsemble(factory, workers).Run(ctx, x0s, e.simConfig())
	for k, i := range index {
		results[i], errs[i] = rs[k], es[k]
	}
	return results, errs
}

func (e *Experiment) Config() config.Config       { return e.cfg }
func (e *Experiment) Model() *tabulated.Backend    { return e.model }
func (e *Experiment) Reactor() *reactor.Reactor    { return e.reactor }
func (e *Experiment) GetSimulator() *sim.Simulator { return e.simulator }
