package kinetics

import (
	"fmt"
	"io"

	"github.com/san-kum/eostab/internal/eos"
	"github.com/san-kum/eostab/internal/mechanism"
	"github.com/sirupsen/logrus"
)

// Physical constants.
const (
	// GasConstant is the universal gas constant [J/mol/K].
	GasConstant = 8.314462618
	// ReferenceTemperature is the zero of sensible energy [K].
	ReferenceTemperature = 298.15
	// ReferencePressure is the standard-state pressure [Pa].
	ReferencePressure = 101325.0
)

// Default temperature solver settings.
const (
	DefaultMaxIterations = 100
	DefaultTolerance     = 1e-12
	DefaultInitialGuess  = 300.0
)

// Backend evaluates mixture properties and reaction rates for one
// mechanism. It is immutable after New and safe for concurrent use.
type Backend struct {
	mech *mechanism.Mechanism

	mw []float64 // molecular weight [kg/mol]
	rs []float64 // specific gas constant [J/kg/K]
	hf []float64 // formation enthalpy at the reference temperature [J/kg]

	maxIterations int
	tolerance     float64
	initialGuess  float64

	log logrus.FieldLogger
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Backend) { b.log = l }
}

// WithSolver overrides the temperature solver budget.
func WithSolver(maxIterations int, tolerance, initialGuess float64) Option {
	return func(b *Backend) {
		if maxIterations > 0 {
			b.maxIterations = maxIterations
		}
		if tolerance > 0 {
			b.tolerance = tolerance
		}
		if initialGuess > 0 {
			b.initialGuess = initialGuess
		}
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// New builds a backend for an already parsed mechanism.
func New(m *mechanism.Mechanism, opts ...Option) *Backend {
	n := m.NumSpecies()
	b := &Backend{
		mech:          m,
		mw:            make([]float64, n),
		rs:            make([]float64, n),
		hf:            make([]float64, n),
		maxIterations: DefaultMaxIterations,
		tolerance:     DefaultTolerance,
		initialGuess:  DefaultInitialGuess,
		log:           discardLogger(),
	}
	for _, o := range opts {
		o(b)
	}

	for i, s := range m.Species {
		b.mw[i] = s.MolecularWeight
		b.rs[i] = GasConstant / s.MolecularWeight
		b.hf[i] = s.Thermo.HRT(ReferenceTemperature) * ReferenceTemperature * b.rs[i]
	}

	b.log.WithFields(logrus.Fields{
		"mechanism": m.Name,
		"species":   n,
		"reactions": len(m.Reactions),
	}).Debug("kinetics backend ready")

	return b
}

// Load parses the mechanism file at path and builds a backend. Any failure
// is reported as eos.ErrInvalidModel.
func Load(path string, opts ...Option) (*Backend, error) {
	m, err := mechanism.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", eos.ErrInvalidModel, err)
	}
	return New(m, opts...), nil
}

// Mechanism returns the underlying mechanism.
func (b *Backend) Mechanism() *mechanism.Mechanism { return b.mech }

// Species returns the mechanism species, all of which this backend carries
// as transport unknowns.
func (b *Backend) Species() []string { return b.mech.SpeciesNames() }

// NumSpecies returns the length of mass-fraction vectors.
func (b *Backend) NumSpecies() int { return len(b.mw) }

// MolecularWeights returns a copy of the species molecular weights [kg/mol].
func (b *Backend) MolecularWeights() []float64 {
	return append([]float64(nil), b.mw...)
}

// FormationEnthalpies returns a copy of the species formation enthalpies
// at the reference temperature [J/kg].
func (b *Backend) FormationEnthalpies() []float64 {
	return append([]float64(nil), b.hf...)
}

var _ eos.Kinetics = (*Backend)(nil)
