package reactor

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync/atomic"

	"github.com/san-kum/eostab/internal/eos"
	"github.com/san-kum/eostab/internal/fields"
	"github.com/san-kum/eostab/internal/sim"
	"github.com/san-kum/eostab/internal/tabulated"
	"github.com/sirupsen/logrus"
)

// Euler block width: density, energy and one momentum component.
const eulerComponents = 3

// Reactor is a sim.System over a tabulated model. Derive is safe for
// concurrent use.
type Reactor struct {
	model   *tabulated.Backend
	layout  *fields.Layout
	nEuler  int
	nProg   int
	nRef    int
	nDetail int

	temperature eos.MassFractionFunction
	energyAt    eos.MassFractionTemperatureFunction

	strict           bool
	fixedTemperature bool
	log              logrus.FieldLogger

	clamped atomic.Int64
}

type Option func(*Reactor)

// Strict makes an inadmissible decode fail the evaluation instead of
// being clamped.
func Strict() Option {
	return func(r *Reactor) { r.strict = true }
}

// WithClosureTemperature evaluates rates at the model's closure temperature
// instead of the temperature of the state.
func WithClosureTemperature() Option {
	return func(r *Reactor) { r.fixedTemperature = true }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Reactor) { r.log = l }
}

func New(model *tabulated.Backend, opts ...Option) (*Reactor, error) {
	cpvs := model.ExtraVariables()
	names := make([]string, len(cpvs))
	for i, c := range cpvs {
		names[i] = "rho_" + c
	}

	layout, err := fields.NewLayout(
		fields.Field{Name: fields.Euler, Components: eulerComponents, ComponentNames: []string{"rho", "rhoE", "rhoU"}, Offset: 0},
		fields.Field{Name: fields.DensityExtraVariables, Components: len(cpvs), ComponentNames: names, Offset: eulerComponents},
	)
	if err != nil {
		return nil, err
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)
	r := &Reactor{
		model:   model,
		layout:  layout,
		nEuler:  eulerComponents,
		nProg:   len(cpvs),
		nRef:    len(model.ReferenceSpecies()),
		nDetail: len(model.Detailed().Species()),
		log:     discard,
	}
	for _, o := range opts {
		o(r)
	}

	detailed := model.Detailed()
	if r.temperature, err = detailed.ThermodynamicMassFractionFunction(eos.Temperature, layout); err != nil {
		return nil, err
	}
	if r.energyAt, err = detailed.ThermodynamicTemperatureMassFractionFunction(eos.InternalSensibleEnergy, layout); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reactor) Model() *tabulated.Backend { return r.model }
func (r *Reactor) Layout() *fields.Layout    { return r.layout }
func (r *Reactor) StateDim() int             { return r.nEuler + r.nProg }
func (r *Reactor) Strict() bool              { return r.strict }

// ClampedDecodes counts evaluations whose decode was clamped back into the
// admissible window.
func (r *Reactor) ClampedDecodes() int64 { return r.clamped.Load() }

// decode returns the reference and mechanism compositions of x.
func (r *Reactor) decode(x sim.State) (rho float64, ref, y []float64, err error) {
	if len(x) != r.StateDim() {
		return 0, nil, nil, fmt.Errorf("%w: state has %d entries, reactor has %d", eos.ErrDimensionMismatch, len(x), r.StateDim())
	}
	rho = x[fields.Rho]
	if !(rho > 0) {
		return 0, nil, nil, fmt.Errorf("%w: density %g", eos.ErrInvalidState, rho)
	}

	c := make([]float64, r.nProg)
	for i := range c {
		c[i] = x[r.nEuler+i] / rho
	}
	ref = make([]float64, r.nRef)
	if err := r.model.Manifold().Decode(c, ref); err != nil {
		var de *tabulated.DecodeError
		if r.strict || !errors.As(err, &de) {
			return 0, nil, nil, err
		}
		if n := r.clamped.Add(1); n == 1 {
			r.log.WithFields(logrus.Fields{"sum": de.Sum, "index": de.Index}).Warn("decoded composition clamped into admissible window")
		}
	}

	y = make([]float64, r.nDetail)
	if err := r.model.Expand(ref, y); err != nil {
		return 0, nil, nil, err
	}
	return rho, ref, y, nil
}

// Derive returns [0, Q, 0, S_C].
func (r *Reactor) Derive(x sim.State, t float64) (sim.State, error) {
	rho, ref, y, err := r.decode(x)
	if err != nil {
		return nil, err
	}

	T := r.model.ClosureTemperature()
	if !r.fixedTemperature {
		if T, err = r.temperature(x, y); err != nil {
			return nil, err
		}
	}

	dx := make(sim.State, len(x))
	q, err := r.model.SourceFromMassFractions(rho, ref, T, dx[r.nEuler:])
	if err != nil {
		return nil, err
	}
	dx[fields.RhoE] = q
	return dx, nil
}

// Temperature solves for the temperature of x.
func (r *Reactor) Temperature(x sim.State) (float64, error) {
	_, _, y, err := r.decode(x)
	if err != nil {
		return 0, err
	}
	return r.temperature(x, y)
}

// HeatRelease returns the energy source of x.
func (r *Reactor) HeatRelease(x sim.State) (float64, error) {
	dx, err := r.Derive(x, 0)
	if err != nil {
		return 0, err
	}
	return dx[fields.RhoE], nil
}

// MassFractions decodes x into reference-ordered mass fractions.
func (r *Reactor) MassFractions(x sim.State) ([]float64, error) {
	_, ref, _, err := r.decode(x)
	return ref, err
}

// InitialState builds a quiescent state from progress variables, density
// and temperature.
func (r *Reactor) InitialState(progress []float64, density, temperature float64) (sim.State, error) {
	if err := eos.CheckLength("progress variables", progress, r.nProg); err != nil {
		return nil, err
	}
	if !(density > 0) || !(temperature > 0) {
		return nil, fmt.Errorf("%w: density %g, temperature %g", eos.ErrInvalidState, density, temperature)
	}

	x := make(sim.State, r.StateDim())
	x[fields.Rho] = density
	for i, c := range progress {
		x[r.nEuler+i] = density * c
	}

	_, _, y, err := r.decode(x)
	if err != nil {
		return nil, err
	}
	e, err := r.energyAt(x, y, temperature)
	if err != nil {
		return nil, err
	}
	x[fields.RhoE] = density * e
	return x, nil
}

// InitialStateFromComposition encodes a composition given by reference
// species name. Mass fractions are normalised to sum to one.
func (r *Reactor) InitialStateFromComposition(composition map[string]float64, density, temperature float64) (sim.State, error) {
	species := r.model.ReferenceSpecies()
	index := make(map[string]int, len(species))
	for i, s := range species {
		index[s] = i
	}

	names := make([]string, 0, len(composition))
	for name := range composition {
		names = append(names, name)
	}
	sort.Strings(names)

	y := make([]float64, len(species))
	total := 0.0
	for _, name := range names {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSpecies, name)
		}
		v := composition[name]
		if v < 0 {
			return nil, fmt.Errorf("%w: %s = %g", eos.ErrInvalidState, name, v)
		}
		y[i] = v
		total += v
	}
	if !(total > 0) {
		return nil, ErrEmptyComposition
	}
	for i := range y {
		y[i] /= total
	}

	progress := make([]float64, r.nProg)
	if err := r.model.ComputeProgressVariables(y, progress); err != nil {
		return nil, err
	}
	return r.InitialState(progress, density, temperature)
}
